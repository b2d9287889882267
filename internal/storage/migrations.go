package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS applications (
					id TEXT PRIMARY KEY,
					amount_requested REAL NOT NULL,
					product_category TEXT,
					monthly_revenue REAL NOT NULL DEFAULT 0,
					time_in_business_months INTEGER NOT NULL DEFAULT 0,
					industry TEXT,
					credit_score INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS lender_products (
					key TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					min_amount REAL,
					max_amount REAL,
					min_monthly_revenue REAL,
					min_time_in_business_months INTEGER,
					min_credit_score INTEGER,
					industries_allowed TEXT,
					industries_blocked TEXT,
					rate_apr REAL NOT NULL DEFAULT 0,
					term_months INTEGER NOT NULL DEFAULT 0,
					is_active BOOLEAN DEFAULT TRUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_lender_products_active ON lender_products(is_active)`,

				`CREATE TABLE IF NOT EXISTS policy_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					scope TEXT NOT NULL,
					rule TEXT NOT NULL,
					is_active BOOLEAN DEFAULT TRUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS engine_variants (
					key TEXT PRIMARY KEY,
					weight_amount REAL,
					weight_mrr REAL,
					weight_tib REAL,
					weight_cs REAL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS decision_traces (
					id TEXT PRIMARY KEY,
					application_id TEXT NOT NULL,
					variant TEXT NOT NULL,
					results TEXT NOT NULL,
					rules_applied TEXT NOT NULL,
					inputs TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add scoring knobs to lender products",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE lender_products ADD COLUMN score_boost REAL NOT NULL DEFAULT 0`,
				`ALTER TABLE lender_products ADD COLUMN out_of_box_penalty REAL NOT NULL DEFAULT 0`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add indexes for rule scope and trace lookups",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_policy_rules_scope ON policy_rules(scope, is_active)`,
				`CREATE INDEX IF NOT EXISTS idx_decision_traces_application ON decision_traces(application_id, created_at)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
