package engine

import (
	"context"
	"sync"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/model"
)

// MockStorage implements service.Storage in memory for tests. Individual
// methods can be overridden through the function fields to simulate store
// failures.
type MockStorage struct {
	GetApplicationFunc    func(ctx context.Context, id string) (*model.Application, error)
	GetActiveProductsFunc func(ctx context.Context) ([]model.LenderProduct, error)
	GetRulesFunc          func(ctx context.Context, scopes []string) ([]model.PolicyRule, error)
	GetVariantFunc        func(ctx context.Context, key string) (*model.EngineVariant, error)
	SaveTraceFunc         func(ctx context.Context, trace *model.DecisionTrace) error

	applications map[string]model.Application
	products     []model.LenderProduct
	rules        []model.PolicyRule
	variants     map[string]model.EngineVariant
	traces       []model.DecisionTrace
	mu           sync.Mutex
}

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		applications: make(map[string]model.Application),
		variants:     make(map[string]model.EngineVariant),
	}
}

// GetApplication implements service.Storage.
func (m *MockStorage) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	if m.GetApplicationFunc != nil {
		return m.GetApplicationFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &app, nil
}

// SaveApplication implements service.Storage.
func (m *MockStorage) SaveApplication(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[app.ID] = *app
	return nil
}

// ListApplications implements service.Storage.
func (m *MockStorage) ListApplications(_ context.Context) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apps := make([]model.Application, 0, len(m.applications))
	for _, app := range m.applications {
		apps = append(apps, app)
	}
	return apps, nil
}

// GetActiveProducts implements service.Storage.
func (m *MockStorage) GetActiveProducts(ctx context.Context) ([]model.LenderProduct, error) {
	if m.GetActiveProductsFunc != nil {
		return m.GetActiveProductsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make([]model.LenderProduct, 0, len(m.products))
	for _, p := range m.products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// GetProduct implements service.Storage.
func (m *MockStorage) GetProduct(_ context.Context, key string) (*model.LenderProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

// SaveProduct implements service.Storage.
func (m *MockStorage) SaveProduct(_ context.Context, product *model.LenderProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.Key == product.Key {
			m.products[i] = *product
			return nil
		}
	}
	m.products = append(m.products, *product)
	return nil
}

// ListProducts implements service.Storage.
func (m *MockStorage) ListProducts(_ context.Context) ([]model.LenderProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := make([]model.LenderProduct, len(m.products))
	copy(products, m.products)
	return products, nil
}

// GetActiveRulesForScopes implements service.Storage.
func (m *MockStorage) GetActiveRulesForScopes(ctx context.Context, scopes []string) ([]model.PolicyRule, error) {
	if m.GetRulesFunc != nil {
		return m.GetRulesFunc(ctx, scopes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inScope := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		inScope[s] = true
	}
	var matched []model.PolicyRule
	for _, r := range m.rules {
		if r.IsActive && inScope[r.Scope] {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// SavePolicyRule implements service.Storage.
func (m *MockStorage) SavePolicyRule(_ context.Context, rule *model.PolicyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule.ID = int64(len(m.rules) + 1)
	m.rules = append(m.rules, *rule)
	return nil
}

// ListPolicyRules implements service.Storage.
func (m *MockStorage) ListPolicyRules(_ context.Context) ([]model.PolicyRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rules := make([]model.PolicyRule, len(m.rules))
	copy(rules, m.rules)
	return rules, nil
}

// GetVariant implements service.Storage.
func (m *MockStorage) GetVariant(ctx context.Context, key string) (*model.EngineVariant, error) {
	if m.GetVariantFunc != nil {
		return m.GetVariantFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	variant, ok := m.variants[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &variant, nil
}

// SaveVariant implements service.Storage.
func (m *MockStorage) SaveVariant(_ context.Context, variant *model.EngineVariant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variants[variant.Key] = *variant
	return nil
}

// ListVariants implements service.Storage.
func (m *MockStorage) ListVariants(_ context.Context) ([]model.EngineVariant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	variants := make([]model.EngineVariant, 0, len(m.variants))
	for _, v := range m.variants {
		variants = append(variants, v)
	}
	return variants, nil
}

// SaveDecisionTrace implements service.Storage.
func (m *MockStorage) SaveDecisionTrace(ctx context.Context, trace *model.DecisionTrace) error {
	if m.SaveTraceFunc != nil {
		return m.SaveTraceFunc(ctx, trace)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = append(m.traces, *trace)
	return nil
}

// GetDecisionTrace implements service.Storage.
func (m *MockStorage) GetDecisionTrace(_ context.Context, id string) (*model.DecisionTrace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.traces {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

// ListDecisionTraces implements service.Storage.
func (m *MockStorage) ListDecisionTraces(_ context.Context, applicationID string) ([]model.DecisionTrace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var traces []model.DecisionTrace
	for _, t := range m.traces {
		if t.ApplicationID == applicationID {
			traces = append(traces, t)
		}
	}
	return traces, nil
}

// Migrate implements service.Storage.
func (m *MockStorage) Migrate(_ context.Context) error { return nil }

// Close implements service.Storage.
func (m *MockStorage) Close() error { return nil }

// SavedTraces returns a copy of every trace appended so far.
func (m *MockStorage) SavedTraces() []model.DecisionTrace {
	m.mu.Lock()
	defer m.mu.Unlock()
	traces := make([]model.DecisionTrace, len(m.traces))
	copy(traces, m.traces)
	return traces
}
