package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"debt-coach/domain"
)

// SlipService detects budget shortfalls: a "slip" is the condition where
// the sum of minimum payments exceeds the stated monthly budget.
type SlipService struct {
	logger *zap.Logger
}

func NewSlipService(logger *zap.Logger) *SlipService {
	return &SlipService{logger: logger}
}

// Check is a single linear pass over the debts. Zero debts is never a slip;
// a negative budget is rejected before computation.
func (s *SlipService) Check(monthlyBudget decimal.Decimal, debts []domain.Debt) (domain.SlipResult, error) {
	if monthlyBudget.IsNegative() {
		return domain.SlipResult{}, domain.NewInvalidInput("monthly_budget", "must not be negative")
	}

	totalMinimum := decimal.Zero
	for i, d := range debts {
		if d.MinimumPayment.IsNegative() {
			return domain.SlipResult{}, domain.NewInvalidInput(fmt.Sprintf("debts[%d].minimum_payment", i), "must not be negative")
		}
		if !d.Active() {
			continue
		}
		totalMinimum = totalMinimum.Add(d.MinimumPayment)
	}

	result := domain.SlipResult{
		MonthlyBudget:         monthlyBudget.Round(2),
		TotalMinimum:          totalMinimum.Round(2),
		Surplus:               decimal.Zero,
		Shortfall:             decimal.Zero,
		SuggestedExtraPayment: decimal.Zero,
	}

	if totalMinimum.GreaterThan(monthlyBudget) {
		shortfall := totalMinimum.Sub(monthlyBudget)
		result.IsSlip = true
		result.Shortfall = shortfall.Round(2)
		result.SuggestedExtraPayment = suggestedExtraPayment(shortfall)
		result.Message = fmt.Sprintf(
			"Budget shortfall of $%s. Consider applying $%s additional monthly budget.",
			result.Shortfall.StringFixed(2), result.SuggestedExtraPayment.StringFixed(0),
		)
		s.logger.Info("slip detected",
			zap.String("shortfall", result.Shortfall.String()),
			zap.String("suggested", result.SuggestedExtraPayment.String()))
		return result, nil
	}

	result.Surplus = monthlyBudget.Sub(totalMinimum).Round(2)
	if len(debts) == 0 {
		result.Message = "No debts to analyze"
	} else {
		result.Message = "Budget is sufficient for all minimum payments"
	}
	return result, nil
}

// suggestedExtraPayment rounds the shortfall up to the next $25 increment,
// with a $25 floor. Ceil is applied before multiplying so a shortfall just
// over a boundary lands on the next increment rather than truncating.
func suggestedExtraPayment(shortfall decimal.Decimal) decimal.Decimal {
	if !shortfall.IsPositive() {
		return decimal.Zero
	}
	stepped := shortfall.Div(slipIncrement).Ceil().Mul(slipIncrement)
	return decimal.Max(slipIncrement, stepped)
}
