package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/roomplants/internal/domain"
)

func TestNormalizeWellFormed(t *testing.T) {
	raw := `{"plants":[{"scientificName":"Ficus lyrata","persianCommonName":"انجیر","description":"..."}],"error":null}`

	result := Normalize(raw)

	require.True(t, result.OK())
	require.Len(t, result.Plants, 1)
	assert.Equal(t, domain.PlantSuggestion{
		ScientificName: "Ficus lyrata",
		CommonName:     "انجیر",
		Description:    "...",
	}, result.Plants[0])
}

func TestNormalizeFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.ErrorKind
	}{
		{name: "bad image", raw: `{"error":"badImage","plants":[]}`, want: domain.ErrBadImage},
		{name: "bad image wins over plants", raw: `{"error":"badImage","plants":[{"scientificName":"A","commonName":"B","description":"C"}]}`, want: domain.ErrBadImage},
		{name: "empty plants", raw: `{"plants":[],"error":null}`, want: domain.ErrNoSuitablePlants},
		{name: "missing plants", raw: `{"error":null}`, want: domain.ErrNoSuitablePlants},
		{name: "plants not a list", raw: `{"plants":{"scientificName":"A"}}`, want: domain.ErrNoSuitablePlants},
		{name: "unknown error value", raw: `{"error":"somethingElse"}`, want: domain.ErrNoSuitablePlants},
		{name: "all elements invalid", raw: `{"plants":[{"scientificName":"A"},7,"x"]}`, want: domain.ErrNoSuitablePlants},
		{name: "not json", raw: `not json at all`, want: domain.ErrInvalidFormat},
		{name: "quoted garbage", raw: `"not json at all"`, want: domain.ErrInvalidFormat},
		{name: "empty", raw: ``, want: domain.ErrInvalidFormat},
		{name: "whitespace", raw: "  \n ", want: domain.ErrInvalidFormat},
		{name: "array", raw: `[{"plants":[]}]`, want: domain.ErrInvalidFormat},
		{name: "number", raw: `42`, want: domain.ErrInvalidFormat},
		{name: "null", raw: `null`, want: domain.ErrInvalidFormat},
		{name: "truncated", raw: `{"plants":[{"scientificName":"A"`, want: domain.ErrInvalidFormat},
		{name: "double encoded array", raw: `"[1,2]"`, want: domain.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.raw)
			assert.Equal(t, tt.want, result.Error)
			assert.NotNil(t, result.Plants)
			assert.Empty(t, result.Plants)
		})
	}
}

func TestNormalizeDropsIncompleteElements(t *testing.T) {
	raw := `{"plants":[
		{"scientificName":"Sansevieria trifasciata","persianCommonName":"سانسوریا","description":"کم آب"},
		{"scientificName":"Pothos","persianCommonName":"پوتوس"}
	],"error":null}`

	result := Normalize(raw)

	require.True(t, result.OK())
	require.Len(t, result.Plants, 1)
	assert.Equal(t, "Sansevieria trifasciata", result.Plants[0].ScientificName)
}

func TestNormalizeElementValidation(t *testing.T) {
	tests := []struct {
		name       string
		element    string
		wantCommon string
		valid      bool
	}{
		{name: "persian name", element: `{"scientificName":"A","persianCommonName":"ب","description":"C"}`, wantCommon: "ب", valid: true},
		{name: "common name fallback", element: `{"scientificName":"A","commonName":"Snake plant","description":"C"}`, wantCommon: "Snake plant", valid: true},
		{name: "persian preferred", element: `{"scientificName":"A","persianCommonName":"ب","commonName":"B","description":"C"}`, wantCommon: "ب", valid: true},
		{name: "blank persian uses common", element: `{"scientificName":"A","persianCommonName":" ","commonName":"B","description":"C"}`, wantCommon: "B", valid: true},
		{name: "no common name", element: `{"scientificName":"A","description":"C"}`},
		{name: "blank scientific name", element: `{"scientificName":"  ","commonName":"B","description":"C"}`},
		{name: "numeric description", element: `{"scientificName":"A","commonName":"B","description":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(`{"plants":[` + tt.element + `]}`)
			if !tt.valid {
				assert.Equal(t, domain.ErrNoSuitablePlants, result.Error)
				return
			}
			require.True(t, result.OK())
			assert.Equal(t, tt.wantCommon, result.Plants[0].CommonName)
		})
	}
}

func TestNormalizeDoubleEncoded(t *testing.T) {
	raw := `"{\"plants\":[{\"scientificName\":\"Aloe vera\",\"persianCommonName\":\"آلوئه ورا\",\"description\":\"نور زیاد\"}],\"error\":null}"`

	result := Normalize(raw)

	require.True(t, result.OK())
	assert.Equal(t, "Aloe vera", result.Plants[0].ScientificName)
}

func TestNormalizePlantsAsString(t *testing.T) {
	raw := `{"plants":"[{\"scientificName\":\"Aloe vera\",\"commonName\":\"Aloe\",\"description\":\"Bright light\"}]","error":null}`

	result := Normalize(raw)

	require.True(t, result.OK())
	assert.Equal(t, "Aloe", result.Plants[0].CommonName)
}

func TestNormalizeFenced(t *testing.T) {
	bare := `{"plants":[{"scientificName":"Aloe vera","commonName":"Aloe","description":"Bright light"}],"error":null}`

	for _, raw := range []string{
		"```json\n" + bare + "\n```",
		"```\n" + bare + "\n```",
		"```json" + bare + "```",
		"  ```JSON\n" + bare + "\n```  ",
	} {
		assert.Equal(t, Normalize(bare), Normalize(raw), raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{
		`{"plants":[{"scientificName":"A","commonName":"B","description":"C"}]}`,
		`{"error":"badImage"}`,
		`garbage`,
	} {
		assert.Equal(t, Normalize(raw), Normalize(raw))
	}
}
