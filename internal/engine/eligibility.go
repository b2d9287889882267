package engine

import (
	"fmt"
	"slices"

	"github.com/calderbank/lendermatch/internal/model"
)

// hardConstraintReasons applies the product's declared constraints to the
// application and returns a reason string per failing check. Checks do not
// short-circuit; every violated constraint is reported.
func hardConstraintReasons(snap model.FeatureSnapshot, product *model.LenderProduct) []string {
	var reasons []string

	if product.MinAmount != nil && snap.AmountRequested < *product.MinAmount {
		reasons = append(reasons, fmt.Sprintf(
			"requested amount %.2f is below the product minimum %.2f",
			snap.AmountRequested, *product.MinAmount))
	}

	if product.MaxAmount != nil && snap.AmountRequested > *product.MaxAmount {
		reasons = append(reasons, fmt.Sprintf(
			"requested amount %.2f is above the product maximum %.2f",
			snap.AmountRequested, *product.MaxAmount))
	}

	if product.MinMonthlyRevenue != nil && snap.MonthlyRevenue < *product.MinMonthlyRevenue {
		reasons = append(reasons, fmt.Sprintf(
			"monthly revenue %.2f is below the required %.2f",
			snap.MonthlyRevenue, *product.MinMonthlyRevenue))
	}

	if product.MinTimeInBusinessMonths != nil && snap.TimeInBusinessMonths < *product.MinTimeInBusinessMonths {
		reasons = append(reasons, fmt.Sprintf(
			"time in business %d months is below the required %d months",
			snap.TimeInBusinessMonths, *product.MinTimeInBusinessMonths))
	}

	if product.MinCreditScore != nil && snap.CreditScore < *product.MinCreditScore {
		reasons = append(reasons, fmt.Sprintf(
			"credit score %d is below the required %d",
			snap.CreditScore, *product.MinCreditScore))
	}

	// Allow-list and block-list apply independently.
	if len(product.IndustriesAllowed) > 0 && !slices.Contains(product.IndustriesAllowed, snap.Industry) {
		reasons = append(reasons, fmt.Sprintf(
			"industry %q is not in the allowed list", snap.Industry))
	}

	if len(product.IndustriesBlocked) > 0 && slices.Contains(product.IndustriesBlocked, snap.Industry) {
		reasons = append(reasons, fmt.Sprintf(
			"industry %q is blocked for this product", snap.Industry))
	}

	return reasons
}
