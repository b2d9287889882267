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

// SaveDecisionTrace appends one immutable trace row. There is no update
// path for traces; repeated identical runs produce distinct rows.
func (s *SQLiteStorage) SaveDecisionTrace(ctx context.Context, trace *model.DecisionTrace) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTrace(trace); err != nil {
		return err
	}

	results, err := json.Marshal(trace.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal trace results: %w", err)
	}
	rulesApplied, err := json.Marshal(trace.RulesApplied)
	if err != nil {
		return fmt.Errorf("failed to marshal trace rule hits: %w", err)
	}
	inputs, err := json.Marshal(trace.Inputs)
	if err != nil {
		return fmt.Errorf("failed to marshal trace inputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO decision_traces (id, application_id, variant, results, rules_applied, inputs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, trace.ID, trace.ApplicationID, trace.Variant,
		string(results), string(rulesApplied), string(inputs), trace.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save decision trace: %w", err)
	}

	return nil
}

// GetDecisionTrace retrieves a single trace by ID.
func (s *SQLiteStorage) GetDecisionTrace(ctx context.Context, id string) (*model.DecisionTrace, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, application_id, variant, results, rules_applied, inputs, created_at
		FROM decision_traces
		WHERE id = ?
	`, id)

	trace, err := scanTrace(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: decision trace %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get decision trace: %w", err)
	}
	return trace, nil
}

// ListDecisionTraces returns every trace for an application, newest first.
func (s *SQLiteStorage) ListDecisionTraces(ctx context.Context, applicationID string) ([]model.DecisionTrace, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(applicationID, "applicationID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, variant, results, rules_applied, inputs, created_at
		FROM decision_traces
		WHERE application_id = ?
		ORDER BY created_at DESC, id DESC
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decision traces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var traces []model.DecisionTrace
	for rows.Next() {
		trace, err := scanTrace(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision trace: %w", err)
		}
		traces = append(traces, *trace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision traces: %w", err)
	}

	return traces, nil
}

func scanTrace(scan func(...any) error) (*model.DecisionTrace, error) {
	var trace model.DecisionTrace
	var results, rulesApplied, inputs string

	err := scan(&trace.ID, &trace.ApplicationID, &trace.Variant,
		&results, &rulesApplied, &inputs, &trace.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(results), &trace.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace results: %w", err)
	}
	if err := json.Unmarshal([]byte(rulesApplied), &trace.RulesApplied); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace rule hits: %w", err)
	}
	if err := json.Unmarshal([]byte(inputs), &trace.Inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace inputs: %w", err)
	}

	return &trace, nil
}
