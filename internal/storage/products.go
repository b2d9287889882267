package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

const productColumns = `key, name, min_amount, max_amount, min_monthly_revenue,
	min_time_in_business_months, min_credit_score, industries_allowed,
	industries_blocked, rate_apr, term_months, score_boost,
	out_of_box_penalty, is_active, created_at`

// GetActiveProducts returns every active product in catalog order.
func (s *SQLiteStorage) GetActiveProducts(ctx context.Context) ([]model.LenderProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryProducts(ctx,
		fmt.Sprintf(`SELECT %s FROM lender_products WHERE is_active = 1 ORDER BY created_at ASC, key ASC`, productColumns))
}

// ListProducts returns every product, active or not.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]model.LenderProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryProducts(ctx,
		fmt.Sprintf(`SELECT %s FROM lender_products ORDER BY created_at ASC, key ASC`, productColumns))
}

// GetProduct retrieves a single product by key.
func (s *SQLiteStorage) GetProduct(ctx context.Context, key string) (*model.LenderProduct, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM lender_products WHERE key = ?`, productColumns), key)

	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", common.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// SaveProduct inserts or replaces a lender product.
func (s *SQLiteStorage) SaveProduct(ctx context.Context, product *model.LenderProduct) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProduct(product); err != nil {
		return err
	}

	allowed, err := marshalIndustries(product.IndustriesAllowed)
	if err != nil {
		return err
	}
	blocked, err := marshalIndustries(product.IndustriesBlocked)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO lender_products (
			key, name, min_amount, max_amount, min_monthly_revenue,
			min_time_in_business_months, min_credit_score, industries_allowed,
			industries_blocked, rate_apr, term_months, score_boost,
			out_of_box_penalty, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			min_amount = excluded.min_amount,
			max_amount = excluded.max_amount,
			min_monthly_revenue = excluded.min_monthly_revenue,
			min_time_in_business_months = excluded.min_time_in_business_months,
			min_credit_score = excluded.min_credit_score,
			industries_allowed = excluded.industries_allowed,
			industries_blocked = excluded.industries_blocked,
			rate_apr = excluded.rate_apr,
			term_months = excluded.term_months,
			score_boost = excluded.score_boost,
			out_of_box_penalty = excluded.out_of_box_penalty,
			is_active = excluded.is_active
	`

	_, err = s.db.ExecContext(ctx, query,
		product.Key, product.Name, product.MinAmount, product.MaxAmount,
		product.MinMonthlyRevenue, product.MinTimeInBusinessMonths,
		product.MinCreditScore, allowed, blocked,
		product.RateAPR, product.TermMonths, product.Knobs.ScoreBoost,
		product.Knobs.OutOfBoxPenalty, product.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) queryProducts(ctx context.Context, query string) ([]model.LenderProduct, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []model.LenderProduct
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(scan func(...any) error) (*model.LenderProduct, error) {
	var product model.LenderProduct
	var minAmount, maxAmount, minRevenue sql.NullFloat64
	var minTib, minCs sql.NullInt64
	var allowed, blocked sql.NullString

	err := scan(
		&product.Key, &product.Name, &minAmount, &maxAmount, &minRevenue,
		&minTib, &minCs, &allowed, &blocked,
		&product.RateAPR, &product.TermMonths, &product.Knobs.ScoreBoost,
		&product.Knobs.OutOfBoxPenalty, &product.IsActive, &product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if minAmount.Valid {
		product.MinAmount = &minAmount.Float64
	}
	if maxAmount.Valid {
		product.MaxAmount = &maxAmount.Float64
	}
	if minRevenue.Valid {
		product.MinMonthlyRevenue = &minRevenue.Float64
	}
	if minTib.Valid {
		v := int(minTib.Int64)
		product.MinTimeInBusinessMonths = &v
	}
	if minCs.Valid {
		v := int(minCs.Int64)
		product.MinCreditScore = &v
	}

	product.IndustriesAllowed, err = unmarshalIndustries(allowed)
	if err != nil {
		return nil, err
	}
	product.IndustriesBlocked, err = unmarshalIndustries(blocked)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func marshalIndustries(industries []string) (any, error) {
	if len(industries) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(industries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal industries: %w", err)
	}
	return string(data), nil
}

func unmarshalIndustries(column sql.NullString) ([]string, error) {
	if !column.Valid || column.String == "" {
		return nil, nil
	}
	var industries []string
	if err := json.Unmarshal([]byte(column.String), &industries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal industries: %w", err)
	}
	return industries, nil
}
