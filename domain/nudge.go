package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type NudgeStatus string

// Nudge lifecycle: requested -> generating -> validating -> accepted or
// fallback -> delivered. Accepted and fallback are the only paths into
// delivered; there is no failure terminal.
const (
	NudgeStatusRequested  NudgeStatus = "requested"
	NudgeStatusGenerating NudgeStatus = "generating"
	NudgeStatusValidating NudgeStatus = "validating"
	NudgeStatusAccepted   NudgeStatus = "accepted"
	NudgeStatusFallback   NudgeStatus = "fallback"
	NudgeStatusDelivered  NudgeStatus = "delivered"
)

type NudgeSource string

const (
	NudgeSourceLLM           NudgeSource = "llm"
	NudgeSourceFallback      NudgeSource = "fallback"
	NudgeSourceErrorFallback NudgeSource = "error_fallback"
)

// Failure reasons recorded on a fallback nudge.
const (
	FailureGeneration = "generation_failed"
	FailureValidation = "validation_rejected"
)

// NudgeCandidate is raw generator output before the numeric-safety pass.
type NudgeCandidate struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Nudge is the validated, always-deliverable message shown to the user.
type Nudge struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Title         string      `json:"title"`
	Message       string      `json:"message"`
	Source        NudgeSource `json:"source"`
	Status        NudgeStatus `json:"status"`
	FailureReason string      `json:"failure_reason,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	DeliveredAt   time.Time   `json:"delivered_at,omitempty"`
}

// DebtFact is the per-debt slice of the allowed numeric facts.
type DebtFact struct {
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
}

// PlanFacts is the closed set of numbers a generated nudge may reference.
// Everything the validator will accept must be derivable from these fields.
type PlanFacts struct {
	Strategy       Strategy        `json:"strategy"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	TotalMonths    int             `json:"total_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
	Debts          []DebtFact      `json:"debts,omitempty"`
}

// Milestone buckets the plan timeline into a qualitative progress stage.
// Thresholds follow the product rule: short timelines read as nearly done,
// long ones as just getting started.
func (p PlanFacts) Milestone() string {
	switch {
	case p.TotalMonths == 0:
		return "early"
	case p.TotalMonths <= 12:
		return "late"
	case p.TotalMonths <= 36:
		return "middle"
	default:
		return "early"
	}
}

// PlanFactsFromSchedule derives the allowed-fact set from a computed schedule.
func PlanFactsFromSchedule(s Schedule, debts []Debt) PlanFacts {
	facts := PlanFacts{
		Strategy:       s.Strategy,
		TotalDebt:      s.Summary.TotalDebt,
		TotalMonths:    s.Summary.TotalMonths,
		MonthlyPayment: s.Summary.MonthlyPayment,
		TotalInterest:  s.Summary.TotalInterest,
	}
	for _, d := range debts {
		facts.Debts = append(facts.Debts, DebtFact{
			Name:       d.Name,
			Balance:    d.Balance,
			AnnualRate: d.AnnualRate,
		})
	}
	return facts
}

// NudgeJob is one unit of background nudge work. Jobs are independent and
// processed at-least-once; the pipeline is deterministic per (user, plan),
// so duplicate processing yields identical output.
type NudgeJob struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Plan       PlanFacts `json:"plan"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
