package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
)

func newPayoffService() *PayoffService {
	return NewPayoffService(repository.NewMockCache(), zap.NewNop())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debt(name, balance, rate, minPayment string) domain.Debt {
	return domain.Debt{
		Name:           name,
		Balance:        dec(balance),
		AnnualRate:     dec(rate),
		MinimumPayment: dec(minPayment),
	}
}

func TestComputeZeroInterest(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{debt("card", "1200", "0", "100")},
		domain.StrategySnowball,
		decimal.Zero,
	)
	require.NoError(t, err)

	assert.Equal(t, 12, schedule.Summary.TotalMonths)
	assert.True(t, schedule.Summary.TotalInterest.IsZero(), "no interest at zero rate, got %s", schedule.Summary.TotalInterest)
	assert.True(t, schedule.Summary.TotalPaid.Equal(dec("1200")), "total paid %s", schedule.Summary.TotalPaid)
	assert.True(t, schedule.Summary.MonthlyPayment.Equal(dec("100")))
	assert.Equal(t, []string{"card"}, schedule.Summary.PayoffOrder)
	assert.False(t, schedule.Summary.Diverged)
}

func TestComputeFinalPaymentNeverOverpays(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{debt("loan", "250", "0", "100")},
		domain.StrategySnowball,
		decimal.Zero,
	)
	require.NoError(t, err)

	require.Equal(t, 3, schedule.Summary.TotalMonths)
	last := schedule.Months[2]
	require.Len(t, last.Payments, 1)
	assert.True(t, last.Payments[0].Payment.Equal(dec("50")), "final payment %s", last.Payments[0].Payment)
	assert.True(t, schedule.Summary.TotalPaid.Equal(dec("250")))
}

func TestComputeBalancesNeverIncrease(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{
			debt("card", "3000", "19.99", "90"),
			debt("loan", "8000", "6.5", "200"),
		},
		domain.StrategyAvalanche,
		dec("150"),
	)
	require.NoError(t, err)
	require.False(t, schedule.Summary.Diverged)

	prev := schedule.Summary.TotalDebt
	for _, month := range schedule.Months {
		assert.True(t, month.TotalRemaining.LessThanOrEqual(prev),
			"month %d remaining %s exceeds previous %s", month.Month, month.TotalRemaining, prev)
		prev = month.TotalRemaining
	}
	assert.True(t, prev.IsZero())
}

func TestComputeIsDeterministic(t *testing.T) {
	svc := newPayoffService()
	debts := []domain.Debt{
		debt("a", "5000", "22", "100"),
		debt("b", "2000", "18", "50"),
	}

	first, err := svc.Compute(debts, domain.StrategySnowball, dec("75"))
	require.NoError(t, err)
	second, err := svc.Compute(debts, domain.StrategySnowball, dec("75"))
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, len(first.Months), len(second.Months))
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	svc := newPayoffService()
	debts := []domain.Debt{debt("card", "1000", "12", "100")}

	_, err := svc.Compute(debts, domain.StrategySnowball, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, debts[0].Balance.Equal(dec("1000")))
}

func TestComputeSnowballOrder(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{
			debt("big", "9000", "5", "300"),
			debt("small", "500", "25", "50"),
			debt("mid", "3000", "15", "100"),
		},
		domain.StrategySnowball,
		dec("200"),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"small", "mid", "big"}, schedule.Summary.PayoffOrder)
}

func TestComputeAvalancheOrder(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{
			debt("cheap", "500", "5", "50"),
			debt("expensive", "9000", "25", "300"),
			debt("mid", "3000", "15", "100"),
		},
		domain.StrategyAvalanche,
		dec("400"),
	)
	require.NoError(t, err)

	require.NotEmpty(t, schedule.Summary.PayoffOrder)
	assert.Equal(t, "expensive", schedule.Summary.PayoffOrder[0])
}

func TestComputeTieBreakByMinimumPayment(t *testing.T) {
	svc := newPayoffService()

	// Equal balances: the lower minimum payment takes priority, so it
	// receives the extra and pays off first.
	schedule, err := svc.Compute(
		[]domain.Debt{
			debt("high-min", "1000", "10", "80"),
			debt("low-min", "1000", "10", "40"),
		},
		domain.StrategySnowball,
		dec("100"),
	)
	require.NoError(t, err)

	require.NotEmpty(t, schedule.Summary.PayoffOrder)
	assert.Equal(t, "low-min", schedule.Summary.PayoffOrder[0])
}

func TestComputeExtraRollsToPriorityDebt(t *testing.T) {
	svc := newPayoffService()

	schedule, err := svc.Compute(
		[]domain.Debt{
			debt("first", "2000", "0", "100"),
			debt("second", "4000", "0", "100"),
		},
		domain.StrategySnowball,
		dec("50"),
	)
	require.NoError(t, err)

	month1 := schedule.Months[0]
	require.Len(t, month1.Payments, 2)
	assert.Equal(t, "first", month1.Payments[0].DebtName)
	assert.True(t, month1.Payments[0].Payment.Equal(dec("150")), "priority payment %s", month1.Payments[0].Payment)
	assert.True(t, month1.Payments[1].Payment.Equal(dec("100")))
}

func TestComputeSkipsInactiveAndZeroBalanceDebts(t *testing.T) {
	svc := newPayoffService()

	closed := debt("closed", "5000", "10", "100")
	closed.Status = domain.DebtStatusClosed
	paid := debt("paid", "0", "10", "0")
	paid.Status = domain.DebtStatusPaidOff

	schedule, err := svc.Compute(
		[]domain.Debt{closed, paid, debt("open", "600", "0", "100")},
		domain.StrategySnowball,
		decimal.Zero,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"open"}, schedule.Summary.PayoffOrder)
	assert.True(t, schedule.Summary.TotalDebt.Equal(dec("600")))
	assert.True(t, schedule.Summary.MonthlyPayment.Equal(dec("100")))
}

func TestComputeDivergenceDetected(t *testing.T) {
	svc := newPayoffService()

	// Interest accrues faster than the minimum payment repays.
	schedule, err := svc.Compute(
		[]domain.Debt{debt("runaway", "10000", "60", "100")},
		domain.StrategyAvalanche,
		decimal.Zero,
	)
	require.NoError(t, err)

	assert.True(t, schedule.Summary.Diverged)
	assert.LessOrEqual(t, schedule.Summary.TotalMonths, MaxPayoffMonths)
}

func TestComputeInvalidInput(t *testing.T) {
	svc := newPayoffService()

	cases := []struct {
		name     string
		debts    []domain.Debt
		strategy domain.Strategy
		extra    decimal.Decimal
		field    string
	}{
		{"no debts", nil, domain.StrategySnowball, decimal.Zero, "debts"},
		{"bad strategy", []domain.Debt{debt("a", "100", "0", "10")}, domain.Strategy("aggressive"), decimal.Zero, "strategy"},
		{"negative extra", []domain.Debt{debt("a", "100", "0", "10")}, domain.StrategySnowball, dec("-1"), "extra_payment"},
		{"empty name", []domain.Debt{debt("", "100", "0", "10")}, domain.StrategySnowball, decimal.Zero, "debts[0].name"},
		{"duplicate name", []domain.Debt{debt("a", "100", "0", "10"), debt("a", "200", "0", "10")}, domain.StrategySnowball, decimal.Zero, "debts[1].name"},
		{"negative balance", []domain.Debt{debt("a", "-5", "0", "10")}, domain.StrategySnowball, decimal.Zero, "debts[0].balance"},
		{"rate too high", []domain.Debt{debt("a", "100", "120", "10")}, domain.StrategySnowball, decimal.Zero, "debts[0].annual_rate"},
		{"zero minimum on active debt", []domain.Debt{debt("a", "100", "0", "0")}, domain.StrategySnowball, decimal.Zero, "debts[0].minimum_payment"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Compute(tc.debts, tc.strategy, tc.extra)
			require.Error(t, err)
			var invalid *domain.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestCompareRecommendsAvalancheOnInterestSavings(t *testing.T) {
	svc := newPayoffService()

	comparison, err := svc.Compare(
		context.Background(),
		[]domain.Debt{
			debt("small-cheap", "1000", "5", "50"),
			debt("big-expensive", "8000", "24", "200"),
		},
		dec("100"),
	)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyAvalanche, comparison.Recommended)
	assert.True(t, comparison.Savings.InterestSaved.IsPositive())
	assert.True(t, comparison.Savings.InterestSaved.Equal(
		comparison.Snowball.Summary.TotalInterest.Sub(comparison.Avalanche.Summary.TotalInterest)))
}

func TestCompareTieGoesToSnowball(t *testing.T) {
	svc := newPayoffService()

	// Zero rates: both strategies accrue zero interest.
	comparison, err := svc.Compare(
		context.Background(),
		[]domain.Debt{
			debt("a", "1000", "0", "100"),
			debt("b", "2000", "0", "100"),
		},
		decimal.Zero,
	)
	require.NoError(t, err)

	assert.Equal(t, domain.StrategySnowball, comparison.Recommended)
	assert.True(t, comparison.Savings.InterestSaved.IsZero())
}

func TestCompareUsesCache(t *testing.T) {
	cache := repository.NewMockCache()
	svc := NewPayoffService(cache, zap.NewNop())
	debts := []domain.Debt{debt("card", "3000", "20", "100")}

	first, err := svc.Compare(context.Background(), debts, dec("50"))
	require.NoError(t, err)

	key := compareCacheKey(debts, dec("50"))
	_, ok := cache.Get(context.Background(), key)
	require.True(t, ok, "comparison should be cached after first call")

	second, err := svc.Compare(context.Background(), debts, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, first.Recommended, second.Recommended)
	assert.True(t, first.Snowball.Summary.TotalInterest.Equal(second.Snowball.Summary.TotalInterest))
}

func TestCompareCacheKeyDistinguishesInput(t *testing.T) {
	debts := []domain.Debt{debt("card", "3000", "20", "100")}

	assert.NotEqual(t,
		compareCacheKey(debts, dec("50")),
		compareCacheKey(debts, dec("75")))
	assert.NotEqual(t,
		compareCacheKey(debts, dec("50")),
		compareCacheKey([]domain.Debt{debt("card", "3001", "20", "100")}, dec("50")))
}
