package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
)

// PayoffService is the amortization engine and strategy comparator. It is
// stateless per request: every Compute call works on its own copy of the
// balances and never mutates its input.
type PayoffService struct {
	cache  repository.CacheRepository
	logger *zap.Logger
}

func NewPayoffService(cache repository.CacheRepository, logger *zap.Logger) *PayoffService {
	return &PayoffService{cache: cache, logger: logger}
}

type workingDebt struct {
	name        string
	balance     decimal.Decimal
	minPayment  decimal.Decimal
	monthlyRate decimal.Decimal
	accrued     decimal.Decimal // this month's interest charge
	paid        bool
}

// Compute simulates the month-by-month payoff of debts under one strategy.
// The monthly budget is the sum of minimum payments plus extra; minimums
// freed by paid-off debts and the extra payment roll onto the top remaining
// debt in priority order.
func (s *PayoffService) Compute(
	debts []domain.Debt,
	strategy domain.Strategy,
	extra decimal.Decimal,
) (domain.Schedule, error) {

	if strategy != domain.StrategySnowball && strategy != domain.StrategyAvalanche {
		return domain.Schedule{}, domain.NewInvalidInputf("strategy", "must be %q or %q", domain.StrategySnowball, domain.StrategyAvalanche)
	}
	if extra.IsNegative() {
		return domain.Schedule{}, domain.NewInvalidInput("extra_payment", "must not be negative")
	}
	if err := validateDebts(debts); err != nil {
		return domain.Schedule{}, err
	}

	working, totalDebt := newWorkingSet(debts, strategy)

	totalMinimum := decimal.Zero
	for _, d := range working {
		totalMinimum = totalMinimum.Add(d.minPayment)
	}
	monthlyBudget := totalMinimum.Add(extra)

	schedule := domain.Schedule{
		Strategy: strategy,
		Summary: domain.ScheduleSummary{
			TotalDebt:      totalDebt.Round(2),
			MonthlyPayment: monthlyBudget.Round(2),
		},
	}

	totalInterest := decimal.Zero
	totalPaid := decimal.Zero
	// Rolling record of end-of-month totals for divergence detection.
	var monthEndTotals []decimal.Decimal

	for month := 1; remaining(working) > 0; month++ {
		snapshot := domain.MonthSnapshot{Month: month}
		available := monthlyBudget
		monthInterest := decimal.Zero
		monthPaid := decimal.Zero

		// Interest accrues on the pre-payment balance at rate/12.
		for _, d := range working {
			if d.paid {
				continue
			}
			interest := d.balance.Mul(d.monthlyRate)
			d.balance = d.balance.Add(interest)
			d.accrued = interest
			monthInterest = monthInterest.Add(interest)
			totalInterest = totalInterest.Add(interest)
		}

		// Minimum payments on every open debt, capped at the remaining
		// balance so the final installment never overpays.
		for _, d := range working {
			if d.paid {
				continue
			}
			pay := decimal.Min(d.minPayment, d.balance, available)
			interestPortion := decimal.Min(pay, d.accrued)
			d.balance = d.balance.Sub(pay)
			available = available.Sub(pay)
			monthPaid = monthPaid.Add(pay)

			snapshot.Payments = append(snapshot.Payments, domain.DebtPayment{
				DebtName:         d.name,
				Payment:          pay.Round(2),
				InterestPortion:  interestPortion.Round(2),
				PrincipalPortion: pay.Sub(interestPortion).Round(2),
			})
		}

		// Roll the freed budget onto the top-priority open debt. Priority
		// order is fixed at the start; paid-off debts simply drop out, so
		// the order among remaining debts stays stable between payoffs.
		if available.IsPositive() {
			for _, d := range working {
				if d.paid || !d.balance.IsPositive() {
					continue
				}
				pay := decimal.Min(available, d.balance)
				d.balance = d.balance.Sub(pay)
				monthPaid = monthPaid.Add(pay)
				for i := range snapshot.Payments {
					if snapshot.Payments[i].DebtName == d.name {
						snapshot.Payments[i].Payment = snapshot.Payments[i].Payment.Add(pay.Round(2))
						snapshot.Payments[i].PrincipalPortion = snapshot.Payments[i].PrincipalPortion.Add(pay.Round(2))
						break
					}
				}
				break
			}
		}

		// Close out debts that hit zero this month and record balances.
		totalRemaining := decimal.Zero
		for i := range snapshot.Payments {
			d := findWorking(working, snapshot.Payments[i].DebtName)
			if !d.paid && !d.balance.IsPositive() {
				d.balance = decimal.Zero
				d.paid = true
				schedule.Summary.PayoffOrder = append(schedule.Summary.PayoffOrder, d.name)
			}
			snapshot.Payments[i].RemainingBalance = d.balance.Round(2)
		}
		for _, d := range working {
			totalRemaining = totalRemaining.Add(d.balance)
		}

		totalPaid = totalPaid.Add(monthPaid)
		snapshot.TotalPaid = monthPaid.Round(2)
		snapshot.InterestAccrued = monthInterest.Round(2)
		snapshot.TotalRemaining = totalRemaining.Round(2)
		schedule.Months = append(schedule.Months, snapshot)

		monthEndTotals = append(monthEndTotals, totalRemaining)
		if month > DivergenceWindow {
			windowAgo := monthEndTotals[month-1-DivergenceWindow]
			if totalRemaining.GreaterThanOrEqual(windowAgo) {
				schedule.Summary.Diverged = true
				break
			}
		}
		if month >= MaxPayoffMonths {
			break
		}
	}

	schedule.Summary.TotalMonths = len(schedule.Months)
	schedule.Summary.TotalInterest = totalInterest.Round(2)
	schedule.Summary.TotalPaid = totalPaid.Round(2)
	return schedule, nil
}

// Compare runs the engine under both strategies on identical input and
// recommends the one with strictly lower total interest; ties go to
// snowball for its motivational value. Results are cached because the
// double simulation is the most expensive call the API serves.
func (s *PayoffService) Compare(
	ctx context.Context,
	debts []domain.Debt,
	extra decimal.Decimal,
) (domain.Comparison, error) {

	key := compareCacheKey(debts, extra)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached domain.Comparison
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding unreadable cached comparison", zap.String("key", key))
		}
	}

	snowball, err := s.Compute(debts, domain.StrategySnowball, extra)
	if err != nil {
		return domain.Comparison{}, err
	}
	avalanche, err := s.Compute(debts, domain.StrategyAvalanche, extra)
	if err != nil {
		return domain.Comparison{}, err
	}

	result := domain.Comparison{
		Snowball:    snowball,
		Avalanche:   avalanche,
		Recommended: domain.StrategySnowball,
	}
	if avalanche.Summary.TotalInterest.LessThan(snowball.Summary.TotalInterest) {
		result.Recommended = domain.StrategyAvalanche
	}
	result.Savings = domain.Savings{
		InterestSaved: decimal.Max(decimal.Zero, snowball.Summary.TotalInterest.Sub(avalanche.Summary.TotalInterest)),
		MonthsSaved:   snowball.Summary.TotalMonths - avalanche.Summary.TotalMonths,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), CompareCacheTTL); err != nil {
				s.logger.Warn("failed to cache comparison", zap.Error(err))
			}
		}
	}
	return result, nil
}

// newWorkingSet copies the debts into simulation state in priority order.
// Zero-balance debts are dropped up front: they are already paid off.
func newWorkingSet(debts []domain.Debt, strategy domain.Strategy) ([]*workingDebt, decimal.Decimal) {
	totalDebt := decimal.Zero
	working := make([]*workingDebt, 0, len(debts))
	for _, d := range debts {
		if !d.Active() || !d.Balance.IsPositive() {
			continue
		}
		totalDebt = totalDebt.Add(d.Balance)
		working = append(working, &workingDebt{
			name:        d.Name,
			balance:     d.Balance,
			minPayment:  d.MinimumPayment,
			monthlyRate: d.AnnualRate.Div(hundred).Div(twelve),
		})
	}

	// Snowball: smallest balance first. Avalanche: highest rate first.
	// Shared tie-break chain: ascending minimum payment, then input order.
	sort.SliceStable(working, func(i, j int) bool {
		a, b := working[i], working[j]
		var primaryEqual bool
		switch strategy {
		case domain.StrategyAvalanche:
			if !a.monthlyRate.Equal(b.monthlyRate) {
				return a.monthlyRate.GreaterThan(b.monthlyRate)
			}
			primaryEqual = true
		default:
			if !a.balance.Equal(b.balance) {
				return a.balance.LessThan(b.balance)
			}
			primaryEqual = true
		}
		if primaryEqual && !a.minPayment.Equal(b.minPayment) {
			return a.minPayment.LessThan(b.minPayment)
		}
		return false
	})
	return working, totalDebt
}

func remaining(working []*workingDebt) int {
	n := 0
	for _, d := range working {
		if !d.paid {
			n++
		}
	}
	return n
}

func findWorking(working []*workingDebt, name string) *workingDebt {
	for _, d := range working {
		if d.name == name {
			return d
		}
	}
	return nil
}

func validateDebts(debts []domain.Debt) error {
	if len(debts) == 0 {
		return domain.NewInvalidInput("debts", "at least one debt is required")
	}
	if len(debts) > MaxDebtsPerRequest {
		return domain.NewInvalidInputf("debts", "at most %d debts per request", MaxDebtsPerRequest)
	}
	seen := make(map[string]bool, len(debts))
	for i, d := range debts {
		field := func(name string) string { return fmt.Sprintf("debts[%d].%s", i, name) }
		if d.Name == "" {
			return domain.NewInvalidInput(field("name"), "must not be empty")
		}
		if seen[d.Name] {
			return domain.NewInvalidInputf(field("name"), "duplicate debt name %q", d.Name)
		}
		seen[d.Name] = true
		if d.Balance.IsNegative() {
			return domain.NewInvalidInput(field("balance"), "must not be negative")
		}
		if d.Balance.GreaterThan(maxDebtAmount) {
			return domain.NewInvalidInputf(field("balance"), "exceeds the maximum of $%s", maxDebtAmount.StringFixed(2))
		}
		if d.AnnualRate.IsNegative() || d.AnnualRate.GreaterThan(maxRate) {
			return domain.NewInvalidInput(field("annual_rate"), "must be between 0 and 100")
		}
		if d.MinimumPayment.IsNegative() {
			return domain.NewInvalidInput(field("minimum_payment"), "must not be negative")
		}
		if d.Active() && d.Balance.IsPositive() && !d.MinimumPayment.IsPositive() {
			return domain.NewInvalidInput(field("minimum_payment"), "must be positive for an active debt")
		}
		if d.DueDay < 0 || d.DueDay > 31 {
			return domain.NewInvalidInput(field("due_day"), "must be between 1 and 31")
		}
	}
	return nil
}

func compareCacheKey(debts []domain.Debt, extra decimal.Decimal) string {
	canonical := struct {
		Debts []domain.Debt   `json:"debts"`
		Extra decimal.Decimal `json:"extra"`
	}{Debts: debts, Extra: extra}
	raw, _ := json.Marshal(canonical)
	sum := sha256.Sum256(raw)
	return "compare:" + hex.EncodeToString(sum[:])
}
