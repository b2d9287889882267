package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

func testApplication() *model.Application {
	return &model.Application{
		ID:                   "app-1",
		AmountRequested:      50000,
		ProductCategory:      "working_capital",
		MonthlyRevenue:       20000,
		TimeInBusinessMonths: 18,
		Industry:             "retail",
		CreditScore:          680,
	}
}

func testProduct() model.LenderProduct {
	return model.LenderProduct{
		Key:                     "capital-flex",
		Name:                    "Capital Flex Line",
		MinAmount:               floatPtr(10000),
		MaxAmount:               floatPtr(100000),
		MinMonthlyRevenue:       floatPtr(5000),
		MinTimeInBusinessMonths: intPtr(6),
		MinCreditScore:          intPtr(600),
		RateAPR:                 18.9,
		TermMonths:              12,
		IsActive:                true,
	}
}

func setupMockStorage(t *testing.T) *MockStorage {
	t.Helper()
	ctx := context.Background()
	store := NewMockStorage()
	require.NoError(t, store.SaveApplication(ctx, testApplication()))
	product := testProduct()
	require.NoError(t, store.SaveProduct(ctx, &product))
	return store
}

func TestRunWorkedExample(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	eng := New(store)

	decision, err := eng.Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	assert.Equal(t, "app-1", decision.ApplicationID)
	assert.Equal(t, "prod", decision.Variant)
	assert.Equal(t, model.DefaultWeights(), decision.Weights)
	assert.Equal(t, testApplication().Snapshot(), decision.Inputs)

	require.Len(t, decision.All, 1)
	result := decision.All[0]
	assert.True(t, result.Eligible)
	assert.Empty(t, result.Reasons)
	assert.InDelta(t, 0.74, result.Score, 0.001)
	require.NotNil(t, result.Offer)
	assert.InDelta(t, 18.9, result.Offer.APR, 0.001)
	assert.Equal(t, 12, result.Offer.TermMonths)

	require.Len(t, decision.Top, 1)
	assert.Equal(t, "capital-flex", decision.Top[0].ProductKey)
}

func TestRunDefaultsEmptyVariant(t *testing.T) {
	store := setupMockStorage(t)
	eng := New(store)

	decision, err := eng.Run(context.Background(), "app-1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultVariant, decision.Variant)
}

func TestRunIndustryBlockedProduct(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	blocked := testProduct()
	blocked.Key = "no-retail"
	blocked.Name = "No Retail Loan"
	blocked.IndustriesBlocked = []string{"retail"}
	require.NoError(t, store.SaveProduct(ctx, &blocked))

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	require.Len(t, decision.All, 2)
	var result *model.ProductResult
	for i := range decision.All {
		if decision.All[i].ProductKey == "no-retail" {
			result = &decision.All[i]
		}
	}
	require.NotNil(t, result)

	assert.False(t, result.Eligible)
	assert.Equal(t, 0.0, result.Score, "ineligible products must score exactly zero")
	assert.Nil(t, result.Offer)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "blocked")

	// The blocked product never reaches the ranking.
	require.Len(t, decision.Top, 1)
	assert.Equal(t, "capital-flex", decision.Top[0].ProductKey)
}

func TestRunPolicyRuleVetoPerScope(t *testing.T) {
	scopes := map[string]string{
		"global scope":      model.ScopeGlobal,
		"product scope":     model.ProductScope("capital-flex"),
		"application scope": model.ApplicationScope("app-1"),
	}

	for name, scope := range scopes {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := setupMockStorage(t)
			require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
				Scope:    scope,
				Rule:     "min_credit_score>=700",
				IsActive: true,
			}))

			decision, err := New(store).Run(ctx, "app-1", "prod")
			require.NoError(t, err)

			require.Len(t, decision.All, 1)
			result := decision.All[0]
			assert.False(t, result.Eligible, "a failing rule in any one scope must veto")
			assert.Equal(t, 0.0, result.Score)
			require.NotEmpty(t, result.Reasons)
			assert.Contains(t, result.Reasons[0], scope)

			require.Len(t, decision.RulesApplied, 1)
			hit := decision.RulesApplied[0]
			assert.Equal(t, scope, hit.Scope)
			assert.Equal(t, "capital-flex", hit.ProductKey)
			assert.False(t, hit.Passed)
		})
	}
}

func TestRunPassingRuleHitsAreRecorded(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
		Scope:    model.ScopeGlobal,
		Rule:     "min_credit_score>=600",
		IsActive: true,
	}))
	require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
		Scope:    model.ScopeGlobal,
		Rule:     "needs_human_review_someday",
		IsActive: true,
	}))

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	require.Len(t, decision.RulesApplied, 2)
	for _, hit := range decision.RulesApplied {
		assert.True(t, hit.Passed)
	}
	assert.True(t, decision.All[0].Eligible, "passing rules never change eligibility")
	assert.InDelta(t, 0.74, decision.All[0].Score, 0.001)
}

func TestRunMalformedRuleDegradesToPassthrough(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
		Scope:    model.ScopeGlobal,
		Rule:     `block_industries=["retail"`, // bad JSON
		IsActive: true,
	}))

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	require.Len(t, decision.RulesApplied, 1)
	hit := decision.RulesApplied[0]
	assert.True(t, hit.Passed)
	assert.Equal(t, "passthrough", hit.Kind)
	assert.True(t, decision.All[0].Eligible, "one bad rule must not take down the run")
}

func TestRunVariantResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown variant falls back to defaults", func(t *testing.T) {
		store := setupMockStorage(t)
		decision, err := New(store).Run(ctx, "app-1", "exp-does-not-exist")
		require.NoError(t, err)
		assert.Equal(t, model.DefaultWeights(), decision.Weights)
	})

	t.Run("partial variant falls back per field", func(t *testing.T) {
		store := setupMockStorage(t)
		mrr := 0.50
		require.NoError(t, store.SaveVariant(ctx, &model.EngineVariant{
			Key: "exp-revenue-heavy",
			MRR: &mrr,
		}))

		decision, err := New(store).Run(ctx, "app-1", "exp-revenue-heavy")
		require.NoError(t, err)

		assert.InDelta(t, 0.50, decision.Weights.MRR, 0.001)
		assert.InDelta(t, model.DefaultWeightAmount, decision.Weights.Amount, 0.001)
		assert.InDelta(t, model.DefaultWeightTIB, decision.Weights.TIB, 0.001)
		assert.InDelta(t, model.DefaultWeightCS, decision.Weights.CS, 0.001)
	})

	t.Run("variant store failure is fatal", func(t *testing.T) {
		store := setupMockStorage(t)
		store.GetVariantFunc = func(_ context.Context, _ string) (*model.EngineVariant, error) {
			return nil, errors.New("connection reset")
		}
		_, err := New(store).Run(ctx, "app-1", "prod")
		require.Error(t, err)
	})
}

func TestRunRanking(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()
	require.NoError(t, store.SaveApplication(ctx, testApplication()))

	// Seven products with knob-controlled scores; two tie at the top.
	boosts := []float64{0.00, 0.20, 0.10, 0.20, 0.05, 0.15, 0.02}
	for i, boost := range boosts {
		product := testProduct()
		product.Key = fmt.Sprintf("product-%d", i)
		product.Name = fmt.Sprintf("Product %d", i)
		product.Knobs = model.ProductKnobs{ScoreBoost: boost}
		require.NoError(t, store.SaveProduct(ctx, &product))
	}

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	require.Len(t, decision.All, 7)
	require.Len(t, decision.Top, 5, "top is capped at 5")

	for i := 1; i < len(decision.Top); i++ {
		assert.GreaterOrEqual(t, decision.Top[i-1].Score, decision.Top[i].Score,
			"top must be sorted descending by score")
	}

	// product-1 and product-3 tie; the stable sort keeps catalog order.
	assert.Equal(t, "product-1", decision.Top[0].ProductKey)
	assert.Equal(t, "product-3", decision.Top[1].ProductKey)

	for _, r := range decision.Top {
		assert.True(t, r.Eligible, "top contains only eligible products")
	}
}

func TestRunTopShorterThanFiveWhenFewEligible(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	blocked := testProduct()
	blocked.Key = "no-retail"
	blocked.IndustriesBlocked = []string{"retail"}
	require.NoError(t, store.SaveProduct(ctx, &blocked))

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err)
	assert.Len(t, decision.Top, 1)
}

func TestRunEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()
	require.NoError(t, store.SaveApplication(ctx, testApplication()))

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err, "an empty catalog is an empty result, not an error")
	assert.Empty(t, decision.All)
	assert.Empty(t, decision.Top)
	assert.Len(t, store.SavedTraces(), 1, "trace records the empty run too")
}

func TestRunApplicationNotFound(t *testing.T) {
	store := NewMockStorage()
	_, err := New(store).Run(context.Background(), "missing", "prod")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrApplicationNotFound)
}

func TestRunReadFailuresAreFatal(t *testing.T) {
	ctx := context.Background()

	t.Run("product catalog", func(t *testing.T) {
		store := setupMockStorage(t)
		store.GetActiveProductsFunc = func(_ context.Context) ([]model.LenderProduct, error) {
			return nil, errors.New("disk error")
		}
		_, err := New(store).Run(ctx, "app-1", "prod")
		require.Error(t, err)
	})

	t.Run("policy rules", func(t *testing.T) {
		store := setupMockStorage(t)
		store.GetRulesFunc = func(_ context.Context, _ []string) ([]model.PolicyRule, error) {
			return nil, errors.New("disk error")
		}
		_, err := New(store).Run(ctx, "app-1", "prod")
		require.Error(t, err)
	})
}

func TestRunTraceFailureStillReturnsResult(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	store.SaveTraceFunc = func(_ context.Context, _ *model.DecisionTrace) error {
		return errors.New("trace store unavailable")
	}

	decision, err := New(store).Run(ctx, "app-1", "prod")
	require.NoError(t, err, "trace persistence is a side effect, not a precondition")
	require.NotNil(t, decision)
	assert.Len(t, decision.Top, 1)
}

func TestRunAppendsTracePerInvocation(t *testing.T) {
	ctx := context.Background()
	store := setupMockStorage(t)
	eng := New(store)

	first, err := eng.Run(ctx, "app-1", "prod")
	require.NoError(t, err)
	second, err := eng.Run(ctx, "app-1", "prod")
	require.NoError(t, err)

	// The read phase is idempotent: identical stored data gives identical
	// decisions.
	assert.Equal(t, first.All, second.All)
	assert.Equal(t, first.Top, second.Top)
	assert.Equal(t, first.RulesApplied, second.RulesApplied)
	assert.Equal(t, first.Inputs, second.Inputs)

	// Two runs mean two trace rows, each with its own identity.
	traces := store.SavedTraces()
	require.Len(t, traces, 2)
	assert.NotEqual(t, traces[0].ID, traces[1].ID)
	assert.Equal(t, traces[0].Results, traces[1].Results)
}

func TestNewWithConfigTopN(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()
	require.NoError(t, store.SaveApplication(ctx, testApplication()))
	for i := 0; i < 4; i++ {
		product := testProduct()
		product.Key = fmt.Sprintf("product-%d", i)
		require.NoError(t, store.SaveProduct(ctx, &product))
	}

	eng := NewWithConfig(store, Config{TopN: 2, DefaultWeights: model.DefaultWeights()})
	decision, err := eng.Run(ctx, "app-1", "prod")
	require.NoError(t, err)
	assert.Len(t, decision.Top, 2)
	assert.Len(t, decision.All, 4)
}
