package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vbonduro/roomplants/internal/domain"
)

type PlantStore struct {
	db *sql.DB
}

func NewPlantStore(db *sql.DB) *PlantStore {
	return &PlantStore{db: db}
}

// ReplaceAll swaps the catalog contents for entries in one transaction.
func (s *PlantStore) ReplaceAll(ctx context.Context, entries []domain.CatalogEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plants`); err != nil {
		return fmt.Errorf("failed to clear plants: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plants (scientific_name, common_name, description, environment) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("failed to close statement", "error", err)
		}
	}()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ScientificName, e.CommonName, e.Description, string(e.Environment)); err != nil {
			return fmt.Errorf("failed to insert plant %q: %w", e.ScientificName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plants: %w", err)
	}
	return nil
}

func (s *PlantStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plants: %w", err)
	}
	return n, nil
}

// Random returns up to n plants suited to env in random order.
func (s *PlantStore) Random(ctx context.Context, env domain.Environment, n int) ([]domain.PlantSuggestion, error) {
	if n <= 0 {
		return []domain.PlantSuggestion{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT scientific_name, common_name, description FROM plants
		WHERE environment = ? ORDER BY RANDOM() LIMIT ?
	`, string(env), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query plants: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	plants := make([]domain.PlantSuggestion, 0, n)
	for rows.Next() {
		var p domain.PlantSuggestion
		if err := rows.Scan(&p.ScientificName, &p.CommonName, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		plants = append(plants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plants: %w", err)
	}

	return plants, nil
}
