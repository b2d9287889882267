package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

// GetApplication retrieves an application snapshot by ID.
func (s *SQLiteStorage) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, amount_requested, product_category, monthly_revenue,
			time_in_business_months, industry, credit_score, created_at
		FROM applications
		WHERE id = ?
	`

	var app model.Application
	var category, industry sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID, &app.AmountRequested, &category, &app.MonthlyRevenue,
		&app.TimeInBusinessMonths, &industry, &app.CreditScore, &app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	app.ProductCategory = category.String
	app.Industry = industry.String

	return &app, nil
}

// SaveApplication inserts or replaces an application snapshot.
func (s *SQLiteStorage) SaveApplication(ctx context.Context, app *model.Application) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateApplication(app); err != nil {
		return err
	}

	query := `
		INSERT INTO applications (
			id, amount_requested, product_category, monthly_revenue,
			time_in_business_months, industry, credit_score
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount_requested = excluded.amount_requested,
			product_category = excluded.product_category,
			monthly_revenue = excluded.monthly_revenue,
			time_in_business_months = excluded.time_in_business_months,
			industry = excluded.industry,
			credit_score = excluded.credit_score
	`

	_, err := s.db.ExecContext(ctx, query,
		app.ID, app.AmountRequested, app.ProductCategory, app.MonthlyRevenue,
		app.TimeInBusinessMonths, app.Industry, app.CreditScore,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}

	return nil
}

// ListApplications returns all stored application snapshots.
func (s *SQLiteStorage) ListApplications(ctx context.Context) ([]model.Application, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, amount_requested, product_category, monthly_revenue,
			time_in_business_months, industry, credit_score, created_at
		FROM applications
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var apps []model.Application
	for rows.Next() {
		var app model.Application
		var category, industry sql.NullString
		err := rows.Scan(
			&app.ID, &app.AmountRequested, &category, &app.MonthlyRevenue,
			&app.TimeInBusinessMonths, &industry, &app.CreditScore, &app.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.ProductCategory = category.String
		app.Industry = industry.String
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}
