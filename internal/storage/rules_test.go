package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calderbank/lendermatch/internal/model"
)

func TestSavePolicyRuleAssignsID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	rule := &model.PolicyRule{
		Scope:    model.ScopeGlobal,
		Rule:     "min_credit_score>=550",
		IsActive: true,
	}
	require.NoError(t, store.SavePolicyRule(ctx, rule))
	assert.Positive(t, rule.ID)
	assert.False(t, rule.CreatedAt.IsZero())
}

func TestGetActiveRulesForScopes(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	seed := []model.PolicyRule{
		{Scope: model.ScopeGlobal, Rule: "min_credit_score>=550", IsActive: true},
		{Scope: model.ProductScope("capital-flex"), Rule: "min_monthly_revenue>=8000", IsActive: true},
		{Scope: model.ProductScope("growth-term"), Rule: "min_monthly_revenue>=12000", IsActive: true},
		{Scope: model.ApplicationScope("app-1"), Rule: `block_industries=["crypto"]`, IsActive: true},
		{Scope: model.ScopeGlobal, Rule: "min_credit_score>=700", IsActive: false},
	}
	for i := range seed {
		require.NoError(t, store.SavePolicyRule(ctx, &seed[i]))
	}

	t.Run("returns only rules in requested scopes", func(t *testing.T) {
		scopes := []string{
			model.ScopeGlobal,
			model.ProductScope("capital-flex"),
			model.ApplicationScope("app-1"),
		}
		rules, err := store.GetActiveRulesForScopes(ctx, scopes)
		require.NoError(t, err)
		require.Len(t, rules, 3)

		// Insertion order is preserved.
		assert.Equal(t, model.ScopeGlobal, rules[0].Scope)
		assert.Equal(t, model.ProductScope("capital-flex"), rules[1].Scope)
		assert.Equal(t, model.ApplicationScope("app-1"), rules[2].Scope)
	})

	t.Run("inactive rules are excluded", func(t *testing.T) {
		rules, err := store.GetActiveRulesForScopes(ctx, []string{model.ScopeGlobal})
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "min_credit_score>=550", rules[0].Rule)
	})

	t.Run("empty scope set returns nothing", func(t *testing.T) {
		rules, err := store.GetActiveRulesForScopes(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("unknown scope returns nothing", func(t *testing.T) {
		rules, err := store.GetActiveRulesForScopes(ctx, []string{model.ProductScope("missing")})
		require.NoError(t, err)
		assert.Empty(t, rules)
	})
}

func TestSavePolicyRuleRejectsBadScope(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.SavePolicyRule(context.Background(), &model.PolicyRule{
		Scope:    "lender:acme",
		Rule:     "min_credit_score>=550",
		IsActive: true,
	})
	assert.Error(t, err)
}

func TestListPolicyRules(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
		Scope: model.ScopeGlobal, Rule: "min_credit_score>=550", IsActive: true,
	}))
	require.NoError(t, store.SavePolicyRule(ctx, &model.PolicyRule{
		Scope: model.ScopeGlobal, Rule: "min_credit_score>=700", IsActive: false,
	}))

	rules, err := store.ListPolicyRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2, "listing includes inactive rules")
	assert.True(t, rules[0].IsActive)
	assert.False(t, rules[1].IsActive)
}
