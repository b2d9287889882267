package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

// GetVariant retrieves a stored variant by key. Absence is reported as
// common.ErrNotFound; callers treat that as a fallback trigger.
func (s *SQLiteStorage) GetVariant(ctx context.Context, key string) (*model.EngineVariant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	query := `
		SELECT key, weight_amount, weight_mrr, weight_tib, weight_cs, updated_at
		FROM engine_variants
		WHERE key = ?
	`

	variant, err := scanVariant(s.db.QueryRowContext(ctx, query, key).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: variant %s", common.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return variant, nil
}

// SaveVariant inserts or replaces a variant weight configuration.
func (s *SQLiteStorage) SaveVariant(ctx context.Context, variant *model.EngineVariant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVariant(variant); err != nil {
		return err
	}

	query := `
		INSERT INTO engine_variants (key, weight_amount, weight_mrr, weight_tib, weight_cs, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			weight_amount = excluded.weight_amount,
			weight_mrr = excluded.weight_mrr,
			weight_tib = excluded.weight_tib,
			weight_cs = excluded.weight_cs,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		variant.Key, variant.Amount, variant.MRR, variant.TIB, variant.CS)
	if err != nil {
		return fmt.Errorf("failed to save variant: %w", err)
	}

	return nil
}

// ListVariants returns all stored variants.
func (s *SQLiteStorage) ListVariants(ctx context.Context) ([]model.EngineVariant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, weight_amount, weight_mrr, weight_tib, weight_cs, updated_at
		FROM engine_variants
		ORDER BY key ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var variants []model.EngineVariant
	for rows.Next() {
		variant, err := scanVariant(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, *variant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

func scanVariant(scan func(...any) error) (*model.EngineVariant, error) {
	var variant model.EngineVariant
	var amount, mrr, tib, cs sql.NullFloat64

	if err := scan(&variant.Key, &amount, &mrr, &tib, &cs, &variant.UpdatedAt); err != nil {
		return nil, err
	}

	if amount.Valid {
		variant.Amount = &amount.Float64
	}
	if mrr.Valid {
		variant.MRR = &mrr.Float64
	}
	if tib.Valid {
		variant.TIB = &tib.Float64
	}
	if cs.Valid {
		variant.CS = &cs.Float64
	}

	return &variant, nil
}
