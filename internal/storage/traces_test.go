package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

func testTrace(id, applicationID string, createdAt time.Time) *model.DecisionTrace {
	return &model.DecisionTrace{
		ID:            id,
		ApplicationID: applicationID,
		Variant:       "prod",
		Results: []model.ProductResult{
			{
				ProductKey:  "capital-flex",
				ProductName: "Capital Flex Line",
				Eligible:    true,
				Reasons:     []string{},
				Score:       0.74,
				Offer:       &model.Offer{APR: 18.9, TermMonths: 12},
			},
			{
				ProductKey:  "no-retail",
				ProductName: "No Retail Loan",
				Eligible:    false,
				Reasons:     []string{`industry "retail" is blocked for this product`},
			},
		},
		RulesApplied: []model.RuleHit{
			{
				Scope:      model.ScopeGlobal,
				ProductKey: "capital-flex",
				Rule:       "min_credit_score>=550",
				Kind:       "credit_score_floor",
				Passed:     true,
				Detail:     "credit score 680 meets floor 550",
			},
		},
		Inputs: model.FeatureSnapshot{
			AmountRequested:      50000,
			MonthlyRevenue:       20000,
			TimeInBusinessMonths: 18,
			Industry:             "retail",
			CreditScore:          680,
		},
		CreatedAt: createdAt,
	}
}

func TestSaveAndGetDecisionTrace(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	trace := testTrace("trace-1", "app-1", time.Now().UTC())
	require.NoError(t, store.SaveDecisionTrace(ctx, trace))

	got, err := store.GetDecisionTrace(ctx, "trace-1")
	require.NoError(t, err)
	assert.Equal(t, trace.ApplicationID, got.ApplicationID)
	assert.Equal(t, trace.Variant, got.Variant)
	assert.Equal(t, trace.Results, got.Results)
	assert.Equal(t, trace.RulesApplied, got.RulesApplied)
	assert.Equal(t, trace.Inputs, got.Inputs)
}

func TestDecisionTracesAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	base := time.Now().UTC().Truncate(time.Second)

	// Two runs for the same application and variant both persist; neither
	// overwrites the other.
	require.NoError(t, store.SaveDecisionTrace(ctx, testTrace("trace-1", "app-1", base)))
	require.NoError(t, store.SaveDecisionTrace(ctx, testTrace("trace-2", "app-1", base.Add(time.Second))))

	traces, err := store.ListDecisionTraces(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, traces, 2)

	// Newest first.
	assert.Equal(t, "trace-2", traces[0].ID)
	assert.Equal(t, "trace-1", traces[1].ID)
}

func TestSaveDecisionTraceRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	trace := testTrace("trace-1", "app-1", time.Now().UTC())
	require.NoError(t, store.SaveDecisionTrace(ctx, trace))
	assert.Error(t, store.SaveDecisionTrace(ctx, trace), "trace rows are immutable")
}

func TestListDecisionTracesFiltersByApplication(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	now := time.Now().UTC()
	require.NoError(t, store.SaveDecisionTrace(ctx, testTrace("trace-1", "app-1", now)))
	require.NoError(t, store.SaveDecisionTrace(ctx, testTrace("trace-2", "app-2", now)))

	traces, err := store.ListDecisionTraces(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "trace-1", traces[0].ID)

	traces, err = store.ListDecisionTraces(ctx, "app-3")
	require.NoError(t, err)
	assert.Empty(t, traces)
}

func TestGetDecisionTraceNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetDecisionTrace(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
