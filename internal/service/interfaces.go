// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/calderbank/lendermatch/internal/model"
)

// Storage defines the contract for our persistence layer. The engine reads
// applications, products, rules and variants, and appends decision traces;
// the management writes exist for the CLI surface only.
type Storage interface {
	// Application operations
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	SaveApplication(ctx context.Context, app *model.Application) error
	ListApplications(ctx context.Context) ([]model.Application, error)

	// Product catalog operations
	GetActiveProducts(ctx context.Context) ([]model.LenderProduct, error)
	GetProduct(ctx context.Context, key string) (*model.LenderProduct, error)
	SaveProduct(ctx context.Context, product *model.LenderProduct) error
	ListProducts(ctx context.Context) ([]model.LenderProduct, error)

	// Policy rule operations
	GetActiveRulesForScopes(ctx context.Context, scopes []string) ([]model.PolicyRule, error)
	SavePolicyRule(ctx context.Context, rule *model.PolicyRule) error
	ListPolicyRules(ctx context.Context) ([]model.PolicyRule, error)

	// Variant operations
	GetVariant(ctx context.Context, key string) (*model.EngineVariant, error)
	SaveVariant(ctx context.Context, variant *model.EngineVariant) error
	ListVariants(ctx context.Context) ([]model.EngineVariant, error)

	// Decision trace operations (append-only; traces are never updated)
	SaveDecisionTrace(ctx context.Context, trace *model.DecisionTrace) error
	GetDecisionTrace(ctx context.Context, id string) (*model.DecisionTrace, error)
	ListDecisionTraces(ctx context.Context, applicationID string) ([]model.DecisionTrace, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
