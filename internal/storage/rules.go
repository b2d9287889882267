package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calderbank/lendermatch/internal/model"
)

// GetActiveRulesForScopes returns every active policy rule whose scope is in
// the given set, in insertion order.
func (s *SQLiteStorage) GetActiveRulesForScopes(ctx context.Context, scopes []string) ([]model.PolicyRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(scopes))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT id, scope, rule, is_active, created_at
		FROM policy_rules
		WHERE is_active = 1 AND scope IN (%s)
		ORDER BY id ASC
	`, placeholders)

	args := make([]any, len(scopes))
	for i, scope := range scopes {
		args[i] = scope
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policy rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.PolicyRule
	for rows.Next() {
		var rule model.PolicyRule
		if err := rows.Scan(&rule.ID, &rule.Scope, &rule.Rule, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy rules: %w", err)
	}

	return rules, nil
}

// SavePolicyRule inserts a new policy rule.
func (s *SQLiteStorage) SavePolicyRule(ctx context.Context, rule *model.PolicyRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO policy_rules (scope, rule, is_active) VALUES (?, ?, ?)`,
		rule.Scope, rule.Rule, rule.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save policy rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get policy rule ID: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = time.Now()

	return nil
}

// ListPolicyRules returns all policy rules, active or not.
func (s *SQLiteStorage) ListPolicyRules(ctx context.Context) ([]model.PolicyRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scope, rule, is_active, created_at FROM policy_rules ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policy rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.PolicyRule
	for rows.Next() {
		var rule model.PolicyRule
		if err := rows.Scan(&rule.ID, &rule.Scope, &rule.Rule, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan policy rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy rules: %w", err)
	}

	return rules, nil
}
