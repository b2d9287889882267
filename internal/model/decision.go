package model

import "time"

// RuleHit records one policy rule evaluation against one product, pass or
// fail, for the audit trace.
type RuleHit struct {
	Scope      string `json:"scope"`
	ProductKey string `json:"product_key"`
	Rule       string `json:"rule"`
	Kind       string `json:"kind"`
	Detail     string `json:"detail,omitempty"`
	Passed     bool   `json:"passed"`
}

// ProductResult is the per-product outcome of one engine run. Ineligible
// products carry a zero score and at least one reason; the offer is only
// surfaced when eligible.
type ProductResult struct {
	Offer       *Offer       `json:"offer"`
	ProductKey  string       `json:"product_key"`
	ProductName string       `json:"product_name"`
	Reasons     []string     `json:"reasons"`
	Knobs       ProductKnobs `json:"knobs"`
	Score       float64      `json:"score"`
	Eligible    bool         `json:"eligible"`
}

// DecisionResult is the full outcome returned to the caller.
type DecisionResult struct {
	ApplicationID string          `json:"application_id"`
	Variant       string          `json:"variant"`
	Weights       WeightVector    `json:"weights"`
	Top           []ProductResult `json:"top"`
	All           []ProductResult `json:"all"`
	RulesApplied  []RuleHit       `json:"rules_applied"`
	Inputs        FeatureSnapshot `json:"inputs"`
}

// DecisionTrace is the immutable audit record of one engine invocation.
// Once written it is never mutated or deleted; repeated identical runs
// append new rows.
type DecisionTrace struct {
	CreatedAt     time.Time       `json:"created_at"`
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Variant       string          `json:"variant"`
	Results       []ProductResult `json:"results"`
	RulesApplied  []RuleHit       `json:"rules_applied"`
	Inputs        FeatureSnapshot `json:"inputs"`
}
