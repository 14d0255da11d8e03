package vision

import (
	"fmt"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
)

const defaultCity = "Tehran"

const schemaInstructions = `Output in JSON format with the following structure:
{
  "plants": [
    {
      "scientificName": "Example plant name",
      "persianCommonName": "اسم فارسی",
      "description": "Detailed care instructions in Persian."
    }
  ],
  "error": null
}
If the image is not a place where a plant can be placed, return {"error": "badImage", "plants": []}.
Reply with raw JSON only. Do not wrap the reply in markdown or ` + "```json```" + ` code fences and do not add any text before or after it.`

// BuildPrompt renders the recommendation instructions for c. Missing fields
// fall back to Tehran, indoor and the current season.
func BuildPrompt(c domain.Context) string {
	city := strings.TrimSpace(c.City)
	if city == "" {
		city = defaultCity
	}
	env := domain.ParseEnvironment(string(c.Environment))

	var b strings.Builder
	fmt.Fprintf(&b, "According to the provided image's lighting conditions and available space, recommend two %s plants based on these criteria:\n", env)
	b.WriteString("1. Plants should be easy to find and not rare.\n")
	fmt.Fprintf(&b, "2. Plants should be suitable for %s environments and compatible with %s's climate.\n", env, city)
	if month := strings.TrimSpace(c.Month); month != "" {
		fmt.Fprintf(&b, "3. Plants should be appropriate to plant or keep in %s.\n", month)
	} else {
		b.WriteString("3. Plants should be appropriate for the current season.\n")
	}
	if hour := strings.TrimSpace(c.Hour); hour != "" {
		fmt.Fprintf(&b, "4. The photo was taken around %s local time; take that into account when judging the light.\n", hour)
	} else {
		b.WriteString("4. Judge the available light from the photo itself.\n")
	}
	b.WriteString("5. Avoid recommending any illegal or legally restricted plants.\n\n")
	b.WriteString(schemaInstructions)
	return b.String()
}
