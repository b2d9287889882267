package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calderbank/lendermatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidApplication = errors.New("invalid application")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidRule        = errors.New("invalid policy rule")
	ErrInvalidVariant     = errors.New("invalid variant")
	ErrInvalidTrace       = errors.New("invalid decision trace")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateApplication validates a single application snapshot.
func validateApplication(app *model.Application) error {
	if app == nil {
		return fmt.Errorf("%w: application", ErrNilParameter)
	}
	if app.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidApplication)
	}
	if app.AmountRequested <= 0 {
		return fmt.Errorf("%w: amount_requested must be positive", ErrInvalidApplication)
	}
	if app.MonthlyRevenue < 0 {
		return fmt.Errorf("%w: monthly_revenue cannot be negative", ErrInvalidApplication)
	}
	if app.TimeInBusinessMonths < 0 {
		return fmt.Errorf("%w: time_in_business_months cannot be negative", ErrInvalidApplication)
	}
	return nil
}

// validateProduct validates a lender product.
func validateProduct(product *model.LenderProduct) error {
	if product == nil {
		return fmt.Errorf("%w: product", ErrNilParameter)
	}
	if product.Key == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidProduct)
	}
	if product.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	}
	if product.MinAmount != nil && product.MaxAmount != nil && *product.MinAmount > *product.MaxAmount {
		return fmt.Errorf("%w: min_amount exceeds max_amount", ErrInvalidProduct)
	}
	return nil
}

// validateRule validates a policy rule row. The rule string itself is not
// checked; unknown strings are defined to pass through the evaluator.
func validateRule(rule *model.PolicyRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if rule.Rule == "" {
		return fmt.Errorf("%w: missing rule string", ErrInvalidRule)
	}
	if err := model.ValidateScope(rule.Scope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

// validateVariant validates an engine variant.
func validateVariant(variant *model.EngineVariant) error {
	if variant == nil {
		return fmt.Errorf("%w: variant", ErrNilParameter)
	}
	if variant.Key == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidVariant)
	}
	for name, w := range map[string]*float64{
		"amount": variant.Amount,
		"mrr":    variant.MRR,
		"tib":    variant.TIB,
		"cs":     variant.CS,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("%w: weight %s cannot be negative", ErrInvalidVariant, name)
		}
	}
	return nil
}

// validateTrace validates a decision trace before it is appended.
func validateTrace(trace *model.DecisionTrace) error {
	if trace == nil {
		return fmt.Errorf("%w: trace", ErrNilParameter)
	}
	if trace.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTrace)
	}
	if trace.ApplicationID == "" {
		return fmt.Errorf("%w: missing application ID", ErrInvalidTrace)
	}
	if trace.Variant == "" {
		return fmt.Errorf("%w: missing variant", ErrInvalidTrace)
	}
	return nil
}
