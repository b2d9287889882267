package model

import "time"

// Default weight coefficients, used whenever a variant (or one of its
// fields) is not stored.
const (
	DefaultWeightAmount = 0.25
	DefaultWeightMRR    = 0.35
	DefaultWeightTIB    = 0.20
	DefaultWeightCS     = 0.20
)

// WeightVector holds the four linear scoring coefficients, one per
// normalized feature. No invariant requires them to sum to 1.
type WeightVector struct {
	Amount float64 `json:"amount"`
	MRR    float64 `json:"mrr"`
	TIB    float64 `json:"tib"`
	CS     float64 `json:"cs"`
}

// DefaultWeights returns the compiled-in weight vector.
func DefaultWeights() WeightVector {
	return WeightVector{
		Amount: DefaultWeightAmount,
		MRR:    DefaultWeightMRR,
		TIB:    DefaultWeightTIB,
		CS:     DefaultWeightCS,
	}
}

// EngineVariant is a named, stored weight configuration selected externally
// (for example by an A/B experiment). Individual weights are nullable so a
// partially specified variant falls back per field, never to zero.
type EngineVariant struct {
	UpdatedAt time.Time `json:"updated_at"`
	Amount    *float64  `json:"amount,omitempty"`
	MRR       *float64  `json:"mrr,omitempty"`
	TIB       *float64  `json:"tib,omitempty"`
	CS        *float64  `json:"cs,omitempty"`
	Key       string    `json:"key" validate:"required"`
}

// Resolve merges the variant's stored weights over the supplied defaults.
func (v *EngineVariant) Resolve(defaults WeightVector) WeightVector {
	weights := defaults
	if v == nil {
		return weights
	}
	if v.Amount != nil {
		weights.Amount = *v.Amount
	}
	if v.MRR != nil {
		weights.MRR = *v.MRR
	}
	if v.TIB != nil {
		weights.TIB = *v.TIB
	}
	if v.CS != nil {
		weights.CS = *v.CS
	}
	return weights
}
