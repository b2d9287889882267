// Package engine implements the lender-product matching and scoring engine.
// Each invocation is a pure computation over data fetched at call time: load
// the application, resolve variant weights, evaluate every active product
// against hard constraints and scoped policy rules, score and rank the
// eligible ones, and append an immutable decision trace.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
	"github.com/calderbank/lendermatch/internal/policy"
	"github.com/calderbank/lendermatch/internal/service"
)

// DefaultVariant is used when the caller does not name a variant.
const DefaultVariant = "prod"

// MatchEngine orchestrates one matching run per (application, variant) pair.
// It holds no mutable state; concurrent runs need no coordination.
type MatchEngine struct {
	storage  service.Storage
	defaults model.WeightVector
	topN     int
}

// Config holds configuration options for the matching engine.
type Config struct {
	DefaultWeights model.WeightVector
	TopN           int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TopN:           5,
		DefaultWeights: model.DefaultWeights(),
	}
}

// New creates a new matching engine with the given storage.
func New(storage service.Storage) *MatchEngine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a new matching engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *MatchEngine {
	if config.TopN <= 0 {
		config.TopN = 5
	}
	zero := model.WeightVector{}
	if config.DefaultWeights == zero {
		config.DefaultWeights = model.DefaultWeights()
	}
	return &MatchEngine{
		storage:  storage,
		topN:     config.TopN,
		defaults: config.DefaultWeights,
	}
}

// parsedRule pairs a stored rule row with its parsed form. Parsing happens
// once per run, before any product is evaluated.
type parsedRule struct {
	parsed policy.Rule
	stored model.PolicyRule
}

// Run executes one matching run and returns the full decision.
func (e *MatchEngine) Run(ctx context.Context, applicationID, variant string) (*model.DecisionResult, error) {
	if variant == "" {
		variant = DefaultVariant
	}

	slog.Info("Starting matching run",
		"application_id", applicationID,
		"variant", variant)

	app, err := e.storage.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrApplicationNotFound, applicationID)
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	weights, err := e.resolveWeights(ctx, variant)
	if err != nil {
		return nil, err
	}

	products, err := e.storage.GetActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	rulesByScope, err := e.loadRules(ctx, applicationID, products)
	if err != nil {
		return nil, err
	}

	snap := app.Snapshot()

	result := &model.DecisionResult{
		ApplicationID: applicationID,
		Variant:       variant,
		Weights:       weights,
		Inputs:        snap,
		Top:           []model.ProductResult{},
		All:           make([]model.ProductResult, 0, len(products)),
		RulesApplied:  []model.RuleHit{},
	}

	for i := range products {
		productResult, hits := e.evaluateProduct(snap, &products[i], weights, rulesByScope, applicationID)
		result.All = append(result.All, productResult)
		result.RulesApplied = append(result.RulesApplied, hits...)
	}

	result.Top = rank(result.All, e.topN)

	e.recordTrace(ctx, result)

	slog.Info("Matching run complete",
		"application_id", applicationID,
		"variant", variant,
		"products_evaluated", len(result.All),
		"eligible", countEligible(result.All))

	return result, nil
}

// resolveWeights looks up the stored variant and merges it over the
// defaults. A missing variant is a fallback trigger, not an error.
func (e *MatchEngine) resolveWeights(ctx context.Context, variant string) (model.WeightVector, error) {
	stored, err := e.storage.GetVariant(ctx, variant)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			slog.Debug("Variant not stored, using default weights", "variant", variant)
			return e.defaults, nil
		}
		return model.WeightVector{}, fmt.Errorf("failed to load variant %q: %w", variant, err)
	}
	return stored.Resolve(e.defaults), nil
}

// loadRules fetches every active rule in the scopes applicable to this run
// and parses each rule string once.
func (e *MatchEngine) loadRules(ctx context.Context, applicationID string, products []model.LenderProduct) (map[string][]parsedRule, error) {
	scopes := make([]string, 0, len(products)+2)
	scopes = append(scopes, model.ScopeGlobal, model.ApplicationScope(applicationID))
	for i := range products {
		scopes = append(scopes, model.ProductScope(products[i].Key))
	}

	rules, err := e.storage.GetActiveRulesForScopes(ctx, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy rules: %w", err)
	}

	byScope := make(map[string][]parsedRule, len(rules))
	for _, rule := range rules {
		byScope[rule.Scope] = append(byScope[rule.Scope], parsedRule{
			stored: rule,
			parsed: policy.Parse(rule.Rule),
		})
	}
	return byScope, nil
}

// evaluateProduct applies hard constraints and scoped policy rules to one
// product, scoring it only if it stays eligible. Checks accumulate; a
// result can carry several disqualifying reasons at once.
func (e *MatchEngine) evaluateProduct(
	snap model.FeatureSnapshot,
	product *model.LenderProduct,
	weights model.WeightVector,
	rulesByScope map[string][]parsedRule,
	applicationID string,
) (model.ProductResult, []model.RuleHit) {
	result := model.ProductResult{
		ProductKey:  product.Key,
		ProductName: product.Name,
		Eligible:    true,
		Reasons:     []string{},
		Knobs:       product.Knobs,
	}

	for _, reason := range hardConstraintReasons(snap, product) {
		result.Eligible = false
		result.Reasons = append(result.Reasons, reason)
	}

	// Rules from every applicable scope are evaluated and recorded even
	// when the product is already disqualified, so the trace shows the
	// complete picture.
	var hits []model.RuleHit
	for _, scope := range []string{model.ScopeGlobal, model.ProductScope(product.Key), model.ApplicationScope(applicationID)} {
		for _, rule := range rulesByScope[scope] {
			outcome := policy.Evaluate(rule.parsed, snap)
			hits = append(hits, model.RuleHit{
				Scope:      scope,
				ProductKey: product.Key,
				Rule:       rule.stored.Rule,
				Kind:       rule.parsed.Kind(),
				Passed:     outcome.Passed,
				Detail:     outcome.Detail,
			})
			if !outcome.Passed {
				result.Eligible = false
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("policy rule failed (%s): %s", scope, outcome.Detail))
			}
		}
	}

	if result.Eligible {
		result.Score = computeScore(snap, product, weights)
		offer := product.Offer()
		result.Offer = &offer
	}

	return result, hits
}

// rank filters to eligible products and sorts descending by score. The sort
// is stable: products tied on score keep their catalog order.
func rank(all []model.ProductResult, topN int) []model.ProductResult {
	eligible := make([]model.ProductResult, 0, len(all))
	for _, r := range all {
		if r.Eligible {
			eligible = append(eligible, r)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	if len(eligible) > topN {
		eligible = eligible[:topN]
	}
	return eligible
}

// recordTrace appends the immutable audit record. A write failure is
// reported but never suppresses the already-computed result.
func (e *MatchEngine) recordTrace(ctx context.Context, result *model.DecisionResult) {
	trace := &model.DecisionTrace{
		ID:            uuid.NewString(),
		ApplicationID: result.ApplicationID,
		Variant:       result.Variant,
		Results:       result.All,
		RulesApplied:  result.RulesApplied,
		Inputs:        result.Inputs,
		CreatedAt:     time.Now().UTC(),
	}

	if err := e.storage.SaveDecisionTrace(ctx, trace); err != nil {
		common.LogError(fmt.Errorf("%w: %v", common.ErrTracePersistence, err),
			"Failed to persist decision trace; result is still returned",
			common.Fields{
				"application_id": result.ApplicationID,
				"variant":        result.Variant,
				"trace_id":       trace.ID,
			})
	}
}

func countEligible(results []model.ProductResult) int {
	n := 0
	for _, r := range results {
		if r.Eligible {
			n++
		}
	}
	return n
}
