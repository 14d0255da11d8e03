package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vbonduro/roomplants/internal/domain"
)

var header = []string{"scientific_name", "common_name", "description", "environment"}

type plantRepository interface {
	ReplaceAll(ctx context.Context, entries []domain.CatalogEntry) error
}

// LoadCSV reads catalog rows. The first row must be the header. Rows with a
// blank field or an environment other than indoor/outdoor are skipped and
// counted.
func LoadCSV(r io.Reader) ([]domain.CatalogEntry, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, errors.New("catalog is empty")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read catalog header: %w", err)
	}
	if err := checkHeader(first); err != nil {
		return nil, 0, err
	}

	var (
		entries []domain.CatalogEntry
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read catalog row: %w", err)
		}
		e, ok := parseRow(record)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func checkHeader(row []string) error {
	if len(row) < len(header) {
		return fmt.Errorf("catalog header must be %s", strings.Join(header, ","))
	}
	for i, want := range header {
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(row[i], "\ufeff")))
		if got != want {
			return fmt.Errorf("catalog header column %d is %q, want %q", i+1, got, want)
		}
	}
	return nil
}

func parseRow(record []string) (domain.CatalogEntry, bool) {
	if len(record) < len(header) {
		return domain.CatalogEntry{}, false
	}
	fields := make([]string, len(header))
	for i := range header {
		fields[i] = strings.TrimSpace(record[i])
		if fields[i] == "" {
			return domain.CatalogEntry{}, false
		}
	}

	env := domain.Environment(strings.ToLower(fields[3]))
	if env != domain.Indoor && env != domain.Outdoor {
		return domain.CatalogEntry{}, false
	}

	return domain.CatalogEntry{
		PlantSuggestion: domain.PlantSuggestion{
			ScientificName: fields[0],
			CommonName:     fields[1],
			Description:    fields[2],
		},
		Environment: env,
	}, true
}

// Seed replaces the stored catalog with the contents of the CSV file at path.
func Seed(ctx context.Context, repo plantRepository, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("failed to close catalog", "path", path, "error", err)
		}
	}()

	entries, skipped, err := LoadCSV(f)
	if err != nil {
		return err
	}
	if err := repo.ReplaceAll(ctx, entries); err != nil {
		return err
	}
	logger.Info("plant catalog seeded", "path", path, "plants", len(entries), "skipped", skipped)
	return nil
}
