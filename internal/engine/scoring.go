package engine

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/calderbank/lendermatch/internal/model"
)

// computeScore produces the weighted score in [0, 1] for an eligible
// product. Each feature is normalized against the product's own floors and
// clamped to [0, 1]; every denominator is guarded with max(1, ...) so a
// product with min_amount == max_amount cannot divide by zero.
func computeScore(snap model.FeatureSnapshot, product *model.LenderProduct, weights model.WeightVector) float64 {
	minAmount := 0.0
	if product.MinAmount != nil {
		minAmount = *product.MinAmount
	}
	upperAmount := 1.0
	switch {
	case product.MaxAmount != nil:
		upperAmount = *product.MaxAmount
	case product.MinAmount != nil:
		upperAmount = *product.MinAmount
	}
	fAmount := clamp01((snap.AmountRequested - minAmount) / math.Max(1, upperAmount-minAmount))

	revenueFloor := 1.0
	if product.MinMonthlyRevenue != nil {
		revenueFloor = *product.MinMonthlyRevenue
	}
	fMrr := clamp01(snap.MonthlyRevenue / math.Max(1, revenueFloor))

	tibFloor := 1.0
	if product.MinTimeInBusinessMonths != nil {
		tibFloor = float64(*product.MinTimeInBusinessMonths)
	}
	fTib := clamp01(float64(snap.TimeInBusinessMonths) / math.Max(1, tibFloor))

	scoreFloor := 0
	if product.MinCreditScore != nil {
		scoreFloor = *product.MinCreditScore
	}
	fCs := clamp01(float64(snap.CreditScore-scoreFloor) / 200)

	score := weights.Amount*fAmount +
		weights.MRR*fMrr +
		weights.TIB*fTib +
		weights.CS*fCs

	// Operator knobs apply after the weighted base.
	score += product.Knobs.ScoreBoost - product.Knobs.OutOfBoxPenalty

	return roundScore(clamp01(score))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// roundScore rounds half-up to 2 decimal places. Float multiply-and-trunc
// drifts on values like 0.745; decimal keeps the audit trail exact.
func roundScore(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
