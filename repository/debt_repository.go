package repository

import (
	"context"

	"debt-coach/domain"
)

// DebtRepository persists user debts between plan calculations. The core
// services never touch it; handlers load debts and hand plain values in.
type DebtRepository interface {
	Create(ctx context.Context, debt domain.Debt) (domain.Debt, error)
	Get(ctx context.Context, id string) (domain.Debt, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Debt, error)
	Update(ctx context.Context, debt domain.Debt) (domain.Debt, error)
	Delete(ctx context.Context, id string) error
}

// NudgeRepository stores nudge records across their lifecycle so clients
// can poll for asynchronously generated results.
type NudgeRepository interface {
	Save(ctx context.Context, nudge domain.Nudge) error
	Get(ctx context.Context, id string) (domain.Nudge, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Nudge, error)
}

// EventRepository is an append-only log of planner activity.
type EventRepository interface {
	Record(ctx context.Context, event domain.Event) error
	ListByUser(ctx context.Context, userID string) ([]domain.Event, error)
}
