// Package model defines the core domain models used throughout the application.
package model

import "time"

// Application is the read-only feature snapshot of a loan application.
// The engine never writes to this entity.
type Application struct {
	CreatedAt            time.Time `json:"created_at"`
	ID                   string    `json:"id" validate:"required"`
	ProductCategory      string    `json:"product_category"`
	Industry             string    `json:"industry"`
	AmountRequested      float64   `json:"amount_requested" validate:"gt=0"`
	MonthlyRevenue       float64   `json:"monthly_revenue" validate:"gte=0"`
	TimeInBusinessMonths int       `json:"time_in_business_months" validate:"gte=0"`
	CreditScore          int       `json:"credit_score" validate:"gte=300,lte=850"`
}

// FeatureSnapshot is the minimal feature set the scoring function reads,
// captured into the decision trace for after-the-fact review.
type FeatureSnapshot struct {
	Industry             string  `json:"industry"`
	AmountRequested      float64 `json:"amount_requested"`
	MonthlyRevenue       float64 `json:"monthly_revenue"`
	TimeInBusinessMonths int     `json:"time_in_business_months"`
	CreditScore          int     `json:"credit_score"`
}

// Snapshot extracts the scoring features from an application.
func (a *Application) Snapshot() FeatureSnapshot {
	return FeatureSnapshot{
		AmountRequested:      a.AmountRequested,
		MonthlyRevenue:       a.MonthlyRevenue,
		TimeInBusinessMonths: a.TimeInBusinessMonths,
		Industry:             a.Industry,
		CreditScore:          a.CreditScore,
	}
}
