package domain

import "github.com/shopspring/decimal"

// DebtPayment records one debt's share of a month's payments.
type DebtPayment struct {
	DebtName         string          `json:"debt_name"`
	Payment          decimal.Decimal `json:"payment"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// MonthSnapshot is one simulated month of the payoff schedule.
type MonthSnapshot struct {
	Month           int             `json:"month"`
	Payments        []DebtPayment   `json:"payments"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	InterestAccrued decimal.Decimal `json:"interest_accrued"`
	TotalRemaining  decimal.Decimal `json:"total_remaining"`
}

// ScheduleSummary aggregates a schedule. Diverged marks a plan whose
// balances stopped shrinking; it is a valid result, not an error.
type ScheduleSummary struct {
	TotalMonths    int             `json:"total_months"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	PayoffOrder    []string        `json:"payoff_order"`
	Diverged       bool            `json:"diverged"`
}

// Schedule is the full month-by-month payoff projection for one strategy.
type Schedule struct {
	Strategy Strategy        `json:"strategy"`
	Months   []MonthSnapshot `json:"months"`
	Summary  ScheduleSummary `json:"summary"`
}

// Savings quantifies the avalanche-vs-snowball difference. MonthsSaved can
// be negative when avalanche takes longer.
type Savings struct {
	InterestSaved decimal.Decimal `json:"interest_saved"`
	MonthsSaved   int             `json:"months_saved"`
}

// Comparison is the side-by-side result of running both strategies.
type Comparison struct {
	Snowball    Schedule `json:"snowball"`
	Avalanche   Schedule `json:"avalanche"`
	Recommended Strategy `json:"recommended_strategy"`
	Savings     Savings  `json:"savings"`
}
