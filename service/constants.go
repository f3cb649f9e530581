package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxDebtsPerRequest = 50
	MaxRatePercent     = 100.0
	MaxDebtAmount      = 100_000_000.0 // per-debt balance ceiling

	// MaxPayoffMonths caps the simulation horizon at 50 years.
	MaxPayoffMonths = 600

	// DivergenceWindow is the rolling window (in months) over which the
	// total balance must decrease, or the schedule is flagged diverged.
	DivergenceWindow = 12

	// CompareCacheTTL bounds how long a strategy comparison stays cached.
	CompareCacheTTL = 24 * time.Hour
)

var (
	maxDebtAmount = decimal.NewFromFloat(MaxDebtAmount)
	maxRate       = decimal.NewFromFloat(MaxRatePercent)
	twelve        = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)

	// Slip remediation granularity: suggestions are $25 multiples with a
	// $25 floor.
	slipIncrement = decimal.NewFromInt(25)
)
