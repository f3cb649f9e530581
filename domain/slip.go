package domain

import "github.com/shopspring/decimal"

// SlipResult reports whether minimum payments exceed the stated monthly
// budget. SuggestedExtraPayment is zero unless IsSlip is true.
type SlipResult struct {
	IsSlip                bool            `json:"is_slip"`
	MonthlyBudget         decimal.Decimal `json:"monthly_budget"`
	TotalMinimum          decimal.Decimal `json:"total_minimum_payments"`
	Surplus               decimal.Decimal `json:"surplus"`
	Shortfall             decimal.Decimal `json:"shortfall"`
	SuggestedExtraPayment decimal.Decimal `json:"suggested_extra_payment"`
	Message               string          `json:"message"`
}
