package vision

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/vbonduro/roomplants/internal/domain"
)

const badImageSentinel = "badImage"

// plantSchema describes one element of the plants array. Either common name
// field is accepted; persianCommonName wins when both are present.
const plantSchema = `{
  "type": "object",
  "required": ["scientificName", "description"],
  "properties": {
    "scientificName": {"type": "string", "pattern": "\\S"},
    "description": {"type": "string", "pattern": "\\S"}
  },
  "anyOf": [
    {
      "required": ["persianCommonName"],
      "properties": {"persianCommonName": {"type": "string", "pattern": "\\S"}}
    },
    {
      "required": ["commonName"],
      "properties": {"commonName": {"type": "string", "pattern": "\\S"}}
    }
  ]
}`

var plantValidator = mustCompile(plantSchema)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

// Normalize turns a raw model reply into a RecommendationResult. It never
// fails: anything it cannot make sense of is reported through the result's
// error kind.
func Normalize(raw string) domain.RecommendationResult {
	value, ok := decode(raw)
	if !ok {
		return domain.Failure(domain.ErrInvalidFormat)
	}

	// Some replies arrive double-encoded as a JSON string.
	if s, isString := value.(string); isString {
		if value, ok = decode(s); !ok {
			return domain.Failure(domain.ErrInvalidFormat)
		}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return domain.Failure(domain.ErrInvalidFormat)
	}

	if sentinel, _ := obj["error"].(string); sentinel == badImageSentinel {
		return domain.Failure(domain.ErrBadImage)
	}

	plants := obj["plants"]
	if s, isString := plants.(string); isString {
		plants, _ = decode(s)
	}
	elems, ok := plants.([]any)
	if !ok || len(elems) == 0 {
		return domain.Failure(domain.ErrNoSuitablePlants)
	}

	suggestions := make([]domain.PlantSuggestion, 0, len(elems))
	for _, elem := range elems {
		if p, ok := toSuggestion(elem); ok {
			suggestions = append(suggestions, p)
		}
	}
	return domain.Success(suggestions)
}

func decode(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(stripFence(strings.TrimSpace(raw))), &v); err != nil {
		return nil, false
	}
	return v, true
}

// stripFence removes a single markdown code fence wrapping the whole reply.
func stripFence(s string) string {
	if len(s) < 6 || !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	inner := s[3 : len(s)-3]
	if i := strings.IndexByte(inner, '\n'); i >= 0 && isLanguageTag(inner[:i]) {
		inner = inner[i+1:]
	} else if strings.HasPrefix(inner, "json") {
		inner = inner[len("json"):]
	}
	return strings.TrimSpace(inner)
}

func isLanguageTag(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func toSuggestion(elem any) (domain.PlantSuggestion, bool) {
	obj, ok := elem.(map[string]any)
	if !ok {
		return domain.PlantSuggestion{}, false
	}
	result, err := plantValidator.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil || !result.Valid() {
		return domain.PlantSuggestion{}, false
	}

	common := field(obj, "persianCommonName")
	if common == "" {
		common = field(obj, "commonName")
	}
	return domain.PlantSuggestion{
		ScientificName: field(obj, "scientificName"),
		CommonName:     common,
		Description:    field(obj, "description"),
	}, true
}

func field(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
