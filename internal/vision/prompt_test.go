package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/roomplants/internal/domain"
)

func TestBuildPromptContract(t *testing.T) {
	contexts := []domain.Context{
		{},
		{City: "Shiraz", Hour: "03 PM", Month: "May", Environment: domain.Outdoor},
		{City: "  ", Environment: "garden"},
	}

	for _, c := range contexts {
		prompt := BuildPrompt(c)
		assert.Contains(t, prompt, `"plants"`)
		assert.Contains(t, prompt, `"error"`)
		assert.Contains(t, prompt, `"scientificName"`)
		assert.Contains(t, prompt, `"persianCommonName"`)
		assert.Contains(t, prompt, `"description"`)
		assert.Contains(t, prompt, `"badImage"`)
		assert.Contains(t, prompt, "raw JSON only")
		assert.Contains(t, prompt, "code fences")
	}
}

func TestBuildPromptUsesContext(t *testing.T) {
	prompt := BuildPrompt(domain.Context{City: "Shiraz", Hour: "03 PM", Month: "May", Environment: domain.Outdoor})

	assert.Contains(t, prompt, "two outdoor plants")
	assert.Contains(t, prompt, "Shiraz's climate")
	assert.Contains(t, prompt, "in May")
	assert.Contains(t, prompt, "03 PM")
	assert.NotContains(t, prompt, "Tehran")
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt(domain.Context{})

	assert.Contains(t, prompt, "two indoor plants")
	assert.Contains(t, prompt, "Tehran's climate")
	assert.Contains(t, prompt, "current season")
}

func TestBuildPromptDeterministic(t *testing.T) {
	c := domain.Context{City: "Tabriz", Hour: "09 AM", Month: "January"}
	assert.Equal(t, BuildPrompt(c), BuildPrompt(c))
}
