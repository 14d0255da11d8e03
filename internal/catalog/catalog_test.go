package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/roomplants/internal/db"
	"github.com/vbonduro/roomplants/internal/domain"
	"github.com/vbonduro/roomplants/internal/logging"
	"github.com/vbonduro/roomplants/internal/store"
)

const sample = `scientific_name,common_name,description,environment
Ficus lyrata,انجیر برگ ویولنی,"نور زیاد، آبیاری هفتگی",indoor
Rosa damascena,گل محمدی,آفتاب کامل,Outdoor
Pothos,,missing common name,indoor
Aloe vera,آلوئه ورا,نور زیاد,roof
Short row,only two
`

func TestLoadCSV(t *testing.T) {
	entries, skipped, err := LoadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 3, skipped)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.CatalogEntry{
		PlantSuggestion: domain.PlantSuggestion{
			ScientificName: "Ficus lyrata",
			CommonName:     "انجیر برگ ویولنی",
			Description:    "نور زیاد، آبیاری هفتگی",
		},
		Environment: domain.Indoor,
	}, entries[0])
	assert.Equal(t, domain.Outdoor, entries[1].Environment)
}

func TestLoadCSVHeader(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, _, err = LoadCSV(strings.NewReader("name,description\nA,B\n"))
	assert.Error(t, err)

	entries, _, err := LoadCSV(strings.NewReader("\ufeffScientific_Name,common_name,description,environment\nA,B,C,indoor\n"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSeed(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	plants := store.NewPlantStore(d)

	path := filepath.Join(t.TempDir(), "plants.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))

	require.NoError(t, Seed(context.Background(), plants, path, logging.Discard()))

	n, err := plants.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSeedBundledCatalog(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "data", "plants.csv"))
	require.NoError(t, err)
	defer f.Close()

	entries, skipped, err := LoadCSV(f)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.NotEmpty(t, entries)
}

func TestSeedMissingFile(t *testing.T) {
	err := Seed(context.Background(), nil, filepath.Join(t.TempDir(), "none.csv"), logging.Discard())
	assert.Error(t, err)
}
