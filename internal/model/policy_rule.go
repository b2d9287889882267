package model

import (
	"fmt"
	"strings"
	"time"
)

// ScopeGlobal applies a policy rule to every product/application pair.
const ScopeGlobal = "global"

// ProductScope returns the scope string for rules bound to one product.
func ProductScope(productKey string) string {
	return "product:" + productKey
}

// ApplicationScope returns the scope string for rules bound to one application.
func ApplicationScope(applicationID string) string {
	return "application:" + applicationID
}

// ValidateScope checks a scope string against the three supported forms.
func ValidateScope(scope string) error {
	if scope == ScopeGlobal {
		return nil
	}
	if key, ok := strings.CutPrefix(scope, "product:"); ok && key != "" {
		return nil
	}
	if id, ok := strings.CutPrefix(scope, "application:"); ok && id != "" {
		return nil
	}
	return fmt.Errorf("invalid rule scope %q: want global, product:<key> or application:<id>", scope)
}

// PolicyRule is one stored rule string bound to a scope. Rules are
// append-like configuration data; the engine only reads them.
type PolicyRule struct {
	CreatedAt time.Time `json:"created_at"`
	Scope     string    `json:"scope" validate:"required"`
	Rule      string    `json:"rule" validate:"required"`
	ID        int64     `json:"id"`
	IsActive  bool      `json:"is_active"`
}
