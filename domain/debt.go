package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DebtStatus string

const (
	DebtStatusActive  DebtStatus = "active"
	DebtStatusPaidOff DebtStatus = "paid_off"
	DebtStatusClosed  DebtStatus = "closed"
)

// Debt is a single consumer debt. Names must be unique within one plan
// request; IDs are only set for persisted debts.
type Debt struct {
	ID             string          `json:"id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDay         int             `json:"due_day,omitempty"`
	Type           string          `json:"type,omitempty"`
	Status         DebtStatus      `json:"status,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

// Active reports whether the debt still participates in payoff planning.
func (d Debt) Active() bool {
	return d.Status == "" || d.Status == DebtStatusActive
}

type Strategy string

const (
	StrategySnowball  Strategy = "snowball"
	StrategyAvalanche Strategy = "avalanche"
	StrategyCompare   Strategy = "compare"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategySnowball, StrategyAvalanche, StrategyCompare:
		return true
	}
	return false
}
