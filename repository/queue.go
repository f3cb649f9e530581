package repository

import (
	"context"

	"debt-coach/domain"
)

// JobQueue carries nudge jobs from the API to the worker pool. Ordering
// between jobs is not guaranteed and not required; delivery is
// at-least-once.
type JobQueue interface {
	Enqueue(ctx context.Context, job domain.NudgeJob) error
	// Dequeue blocks until a job is available or the context is done.
	Dequeue(ctx context.Context) (domain.NudgeJob, error)
}

// MemoryQueue is a channel-backed JobQueue for single-process deployments
// and tests.
type MemoryQueue struct {
	jobs chan domain.NudgeJob
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{jobs: make(chan domain.NudgeJob, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job domain.NudgeJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (domain.NudgeJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return domain.NudgeJob{}, ctx.Err()
	}
}
