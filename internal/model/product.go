package model

import "time"

// ProductKnobs are operator-tunable numeric adjustments applied after the
// weighted base score. Both may be negative.
type ProductKnobs struct {
	ScoreBoost      float64 `json:"score_boost"`
	OutOfBoxPenalty float64 `json:"out_of_box_penalty"`
}

// LenderProduct describes one product in the lender catalog: hard
// eligibility constraints plus scoring knobs and offer terms. Nil pointer
// fields mean "no bound" or "no floor".
type LenderProduct struct {
	CreatedAt               time.Time    `json:"created_at"`
	MinAmount               *float64     `json:"min_amount,omitempty"`
	MaxAmount               *float64     `json:"max_amount,omitempty"`
	MinMonthlyRevenue       *float64     `json:"min_monthly_revenue,omitempty"`
	MinTimeInBusinessMonths *int         `json:"min_time_in_business_months,omitempty"`
	MinCreditScore          *int         `json:"min_credit_score,omitempty"`
	Key                     string       `json:"key" validate:"required"`
	Name                    string       `json:"name" validate:"required"`
	IndustriesAllowed       []string     `json:"industries_allowed,omitempty"`
	IndustriesBlocked       []string     `json:"industries_blocked,omitempty"`
	RateAPR                 float64      `json:"rate_apr" validate:"gte=0"`
	TermMonths              int          `json:"term_months" validate:"gte=0"`
	Knobs                   ProductKnobs `json:"knobs"`
	IsActive                bool         `json:"is_active"`
}

// Offer carries the terms surfaced to the caller only for eligible products.
type Offer struct {
	APR        float64 `json:"apr"`
	TermMonths int     `json:"term_months"`
}

// Offer returns the product's offer terms.
func (p *LenderProduct) Offer() Offer {
	return Offer{APR: p.RateAPR, TermMonths: p.TermMonths}
}
