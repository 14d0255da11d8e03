package domain

import "strings"

type Environment string

const (
	Indoor  Environment = "indoor"
	Outdoor Environment = "outdoor"
)

// ParseEnvironment maps user input to an Environment. Anything unrecognised
// falls back to Indoor.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(strings.TrimSpace(s), string(Outdoor)) {
		return Outdoor
	}
	return Indoor
}

// Context carries the situational fields a recommendation is constrained by.
type Context struct {
	City        string
	Hour        string
	Month       string
	Environment Environment
}

// RecommendationRequest is built once per submitted photo and never mutated.
type RecommendationRequest struct {
	Locator string
	Context
}

type PlantSuggestion struct {
	ScientificName string `json:"scientificName"`
	CommonName     string `json:"commonName"`
	Description    string `json:"description"`
}

// ErrorKind classifies a normalized reply that carries no usable plants.
// The zero value means no error.
type ErrorKind string

const (
	ErrNone             ErrorKind = ""
	ErrBadImage         ErrorKind = "badImage"
	ErrNoSuitablePlants ErrorKind = "noSuitablePlants"
	ErrInvalidFormat    ErrorKind = "invalidFormat"
)

// RecommendationResult holds either at least one plant or an error kind, never
// both. Use Success and Failure to construct one.
type RecommendationResult struct {
	Plants []PlantSuggestion
	Error  ErrorKind
}

// Success returns a result for plants. An empty slice is reported as
// ErrNoSuitablePlants.
func Success(plants []PlantSuggestion) RecommendationResult {
	if len(plants) == 0 {
		return Failure(ErrNoSuitablePlants)
	}
	return RecommendationResult{Plants: plants}
}

func Failure(kind ErrorKind) RecommendationResult {
	return RecommendationResult{Plants: []PlantSuggestion{}, Error: kind}
}

func (r RecommendationResult) OK() bool {
	return r.Error == ErrNone
}

// CatalogEntry is a locally curated plant with the environment it suits.
type CatalogEntry struct {
	PlantSuggestion
	Environment Environment
}
