package chat

import (
	"fmt"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/upload"
)

const (
	WelcomeMessage = "🌸 به ربات پیشنهاد گیاهان خوش آمدید! 🌸\n\n" +
		"🌿 کافیه یک عکس از فضای مورد نظرتون برای قرار دادن گیاه ارسال کنید\n" +
		"من بهترین پیشنهادها رو براتون آماده می‌کنم! 🪴"
	CityPrompt        = "لطفاً شهر مورد نظر خود را انتخاب کنید:"
	EnvironmentPrompt = "برای چه محیطی میخواید گلتون رو قرار بدین؟"
	PhotoPrompt       = "لطفاً یک عکس از فضای مورد نظرتون ارسال کنید."

	UploadFailedMessage = "❌ متأسفانه در آپلود تصویر مشکلی پیش آمده\n🙏 لطفاً دوباره تلاش کنید"
	GenericErrorMessage = "❌ متأسفانه خطایی رخ داده\n🙏 لطفاً دوباره تلاش کنید"
	BadImageMessage     = "📷 این عکس مربوط به فضایی برای قرار دادن گیاه نیست\n🙏 لطفاً یک عکس دیگه از فضای مورد نظرتون ارسال کنید"
	NoMatchMessage      = "🌵 متأسفانه گیاه مناسبی برای این فضا پیدا نکردم\n🙏 لطفاً یک عکس دیگه امتحان کنید"
)

var separator = strings.Repeat("➖", 20)

func Caption(p domain.PlantSuggestion) string {
	return fmt.Sprintf("🪴 اطلاعات گیاه پیشنهادی:\n📚 نام علمی: %s\n🌿 نام فارسی: %s\n📝 توضیحات: %s",
		p.ScientificName, p.CommonName, p.Description)
}

// PlantsMessage renders every suggestion under a separator line.
func PlantsMessage(plants []domain.PlantSuggestion) string {
	captions := make([]string, 0, len(plants))
	for _, p := range plants {
		captions = append(captions, Caption(p))
	}
	return separator + "\n\n" + strings.Join(captions, "\n\n")
}

// UserMessage picks the text to show for a pipeline outcome. err is the error
// returned by the pipeline, if any.
func UserMessage(err error, result domain.RecommendationResult) string {
	if err != nil {
		if upload.KindOf(err) != "" {
			return UploadFailedMessage
		}
		return GenericErrorMessage
	}
	switch result.Error {
	case domain.ErrNone:
		return PlantsMessage(result.Plants)
	case domain.ErrBadImage:
		return BadImageMessage
	case domain.ErrNoSuitablePlants:
		return NoMatchMessage
	default:
		return GenericErrorMessage
	}
}
