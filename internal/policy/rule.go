// Package policy implements the constrained rule language used to veto
// product eligibility. Rule strings are parsed once at load time into a
// closed set of variants; anything the parser does not recognize becomes a
// Passthrough so one bad configuration entry cannot take down a whole run.
package policy

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Rule kinds, recorded on every audit hit.
const (
	KindCreditScoreFloor = "credit_score_floor"
	KindRevenueFloor     = "revenue_floor"
	KindIndustryBlock    = "industry_block"
	KindPassthrough      = "passthrough"
)

const (
	prefixCreditScoreFloor = "min_credit_score>="
	prefixRevenueFloor     = "min_monthly_revenue>="
	prefixIndustryBlock    = "block_industries="
)

// Rule is a parsed policy rule. The set of implementations is closed;
// Evaluate matches on it exhaustively.
type Rule interface {
	// Kind identifies the recognized rule form.
	Kind() string
	// Raw returns the stored rule string the rule was parsed from.
	Raw() string
}

// CreditScoreFloor vetoes applications whose credit score is below Min.
type CreditScoreFloor struct {
	raw string
	Min int
}

func (r CreditScoreFloor) Kind() string { return KindCreditScoreFloor }
func (r CreditScoreFloor) Raw() string  { return r.raw }

// RevenueFloor vetoes applications whose monthly revenue is below Min.
type RevenueFloor struct {
	raw string
	Min float64
}

func (r RevenueFloor) Kind() string { return KindRevenueFloor }
func (r RevenueFloor) Raw() string  { return r.raw }

// IndustryBlock vetoes applications whose industry is in the blocked set.
type IndustryBlock struct {
	raw        string
	Industries map[string]struct{}
}

func (r IndustryBlock) Kind() string { return KindIndustryBlock }
func (r IndustryBlock) Raw() string  { return r.raw }

// Blocks reports whether the given industry is in the blocked set.
func (r IndustryBlock) Blocks(industry string) bool {
	_, blocked := r.Industries[industry]
	return blocked
}

// Passthrough is any rule string the engine does not understand. It is
// recorded as passed for audit visibility and has no eligibility effect.
type Passthrough struct {
	raw string
}

func (r Passthrough) Kind() string { return KindPassthrough }
func (r Passthrough) Raw() string  { return r.raw }

// Parse converts a stored rule string into its variant. Parse never fails:
// unknown forms and malformed values degrade to Passthrough.
func Parse(raw string) Rule {
	rule := strings.TrimSpace(raw)

	if value, ok := strings.CutPrefix(rule, prefixCreditScoreFloor); ok {
		minScore, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Passthrough{raw: raw}
		}
		return CreditScoreFloor{raw: raw, Min: minScore}
	}

	if value, ok := strings.CutPrefix(rule, prefixRevenueFloor); ok {
		minRevenue, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Passthrough{raw: raw}
		}
		return RevenueFloor{raw: raw, Min: minRevenue}
	}

	if value, ok := strings.CutPrefix(rule, prefixIndustryBlock); ok {
		var industries []string
		if err := json.Unmarshal([]byte(value), &industries); err != nil {
			return Passthrough{raw: raw}
		}
		blocked := make(map[string]struct{}, len(industries))
		for _, industry := range industries {
			blocked[industry] = struct{}{}
		}
		return IndustryBlock{raw: raw, Industries: blocked}
	}

	return Passthrough{raw: raw}
}
