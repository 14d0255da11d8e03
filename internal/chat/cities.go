package chat

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCityNotFound = errors.New("city not found")

type City struct {
	English string `json:"english"`
	Persian string `json:"persian"`
}

var cities = []City{
	{"Tehran", "تهران"},
	{"Isfahan", "اصفهان"},
	{"Shiraz", "شیراز"},
	{"Mashhad", "مشهد"},
	{"Tabriz", "تبریز"},
	{"Ahvaz", "اهواز"},
	{"Kerman", "کرمان"},
	{"Rasht", "رشت"},
	{"Yazd", "یزد"},
	{"Bandar Abbas", "بندرعباس"},
	{"Kish", "کیش"},
	{"Hamedan", "همدان"},
	{"Qazvin", "قزوین"},
	{"Zahedan", "زاهدان"},
	{"Sanandaj", "سنندج"},
	{"Khorramabad", "خرم‌آباد"},
	{"Ardabil", "اردبیل"},
	{"Urmia", "ارومیه"},
	{"Gorgan", "گرگان"},
	{"Chabahar", "چابهار"},
}

// Cities returns the supported cities in display order.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

func EnglishName(persian string) (string, error) {
	persian = strings.TrimSpace(persian)
	for _, c := range cities {
		if c.Persian == persian {
			return c.English, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCityNotFound, persian)
}

func PersianName(english string) (string, error) {
	english = strings.TrimSpace(english)
	for _, c := range cities {
		if c.English == english {
			return c.Persian, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrCityNotFound, english)
}

// LookupCity accepts either the English (case-insensitive) or Persian name.
func LookupCity(name string) (City, error) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		if c.Persian == name || strings.EqualFold(c.English, name) {
			return c, nil
		}
	}
	return City{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
}
