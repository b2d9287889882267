package policy

import (
	"fmt"

	"github.com/calderbank/lendermatch/internal/model"
)

// Outcome is the result of evaluating one rule against one application.
// Veto-only semantics: a failed outcome can force ineligibility but a
// passed outcome never re-enables a product.
type Outcome struct {
	Detail string
	Passed bool
}

// Evaluate applies a parsed rule to the application's feature snapshot.
// Matching is exhaustive over the closed rule set.
func Evaluate(rule Rule, snap model.FeatureSnapshot) Outcome {
	switch r := rule.(type) {
	case CreditScoreFloor:
		if snap.CreditScore < r.Min {
			return Outcome{
				Passed: false,
				Detail: fmt.Sprintf("credit score %d below required %d", snap.CreditScore, r.Min),
			}
		}
		return Outcome{Passed: true}

	case RevenueFloor:
		if snap.MonthlyRevenue < r.Min {
			return Outcome{
				Passed: false,
				Detail: fmt.Sprintf("monthly revenue %.2f below required %.2f", snap.MonthlyRevenue, r.Min),
			}
		}
		return Outcome{Passed: true}

	case IndustryBlock:
		if r.Blocks(snap.Industry) {
			return Outcome{
				Passed: false,
				Detail: fmt.Sprintf("industry %q is blocked by policy", snap.Industry),
			}
		}
		return Outcome{Passed: true}

	case Passthrough:
		return Outcome{Passed: true, Detail: "unrecognized rule, no eligibility effect"}

	default:
		// Unreachable while the rule set stays closed.
		return Outcome{Passed: true, Detail: "unknown rule variant, no eligibility effect"}
	}
}
