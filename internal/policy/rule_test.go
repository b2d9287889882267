package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, rule Rule)
		name  string
		raw   string
		kind  string
	}{
		{
			name: "credit score floor",
			raw:  "min_credit_score>=650",
			kind: KindCreditScoreFloor,
			check: func(t *testing.T, rule Rule) {
				t.Helper()
				floor, ok := rule.(CreditScoreFloor)
				require.True(t, ok)
				assert.Equal(t, 650, floor.Min)
			},
		},
		{
			name: "revenue floor",
			raw:  "min_monthly_revenue>=12500.50",
			kind: KindRevenueFloor,
			check: func(t *testing.T, rule Rule) {
				t.Helper()
				floor, ok := rule.(RevenueFloor)
				require.True(t, ok)
				assert.InDelta(t, 12500.50, floor.Min, 0.001)
			},
		},
		{
			name: "industry block",
			raw:  `block_industries=["gambling","cannabis"]`,
			kind: KindIndustryBlock,
			check: func(t *testing.T, rule Rule) {
				t.Helper()
				block, ok := rule.(IndustryBlock)
				require.True(t, ok)
				assert.True(t, block.Blocks("gambling"))
				assert.True(t, block.Blocks("cannabis"))
				assert.False(t, block.Blocks("retail"))
			},
		},
		{
			name: "leading whitespace is tolerated",
			raw:  "  min_credit_score>=600",
			kind: KindCreditScoreFloor,
		},
		{
			name: "unknown rule form",
			raw:  "require_manual_review",
			kind: KindPassthrough,
		},
		{
			name: "non-numeric credit score degrades to passthrough",
			raw:  "min_credit_score>=high",
			kind: KindPassthrough,
		},
		{
			name: "non-numeric revenue degrades to passthrough",
			raw:  "min_monthly_revenue>=lots",
			kind: KindPassthrough,
		},
		{
			name: "malformed JSON degrades to passthrough",
			raw:  `block_industries=["gambling"`,
			kind: KindPassthrough,
		},
		{
			name: "empty string",
			raw:  "",
			kind: KindPassthrough,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Parse(tt.raw)
			assert.Equal(t, tt.kind, rule.Kind())
			assert.Equal(t, tt.raw, rule.Raw(), "raw string must round-trip for the audit trace")
			if tt.check != nil {
				tt.check(t, rule)
			}
		})
	}
}

func TestParseEmptyIndustryBlock(t *testing.T) {
	rule := Parse("block_industries=[]")
	block, ok := rule.(IndustryBlock)
	require.True(t, ok)
	assert.False(t, block.Blocks("retail"))
}
