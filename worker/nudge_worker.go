// Package worker runs the background nudge generation pool.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"debt-coach/domain"
	"debt-coach/repository"
	"debt-coach/service"
)

// Tracker remembers the latest job per user so superseded jobs can be
// abandoned before generation. Processing a stale duplicate would be
// harmless (the pipeline is deterministic), just wasteful.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]string)}
}

// Note records jobID as the newest job for the user.
func (t *Tracker) Note(userID, jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[userID] = jobID
}

// Stale reports whether the job has been superseded by a newer one.
func (t *Tracker) Stale(job domain.NudgeJob) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	latest, ok := t.latest[job.UserID]
	return ok && latest != job.ID
}

// Pool consumes nudge jobs from the queue, runs the content pipeline and
// persists the delivered result.
type Pool struct {
	queue   repository.JobQueue
	nudges  repository.NudgeRepository
	events  repository.EventRepository
	service *service.NudgeService
	tracker *Tracker
	size    int
	logger  *zap.Logger
}

func NewPool(
	queue repository.JobQueue,
	nudges repository.NudgeRepository,
	events repository.EventRepository,
	svc *service.NudgeService,
	tracker *Tracker,
	size int,
	logger *zap.Logger,
) *Pool {
	if size <= 0 {
		size = 2
	}
	return &Pool{
		queue:   queue,
		nudges:  nudges,
		events:  events,
		service: svc,
		tracker: tracker,
		size:    size,
		logger:  logger,
	}
}

// Run blocks, processing jobs until the context is canceled. Cancellation
// is a clean shutdown, not an error.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		worker := i
		g.Go(func() error {
			return p.loop(ctx, worker)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pool) loop(ctx context.Context, worker int) error {
	logger := p.logger.With(zap.Int("worker", worker))
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("dequeue failed", zap.Error(err))
			continue
		}

		if p.tracker != nil && p.tracker.Stale(job) {
			logger.Info("skipping superseded job",
				zap.String("job_id", job.ID),
				zap.String("user_id", job.UserID))
			continue
		}

		p.process(ctx, logger, job)
	}
}

func (p *Pool) process(ctx context.Context, logger *zap.Logger, job domain.NudgeJob) {
	started := time.Now()
	nudge := p.service.Generate(ctx, job)
	nudge.Status = domain.NudgeStatusDelivered
	nudge.DeliveredAt = time.Now().UTC()

	if err := p.nudges.Save(ctx, nudge); err != nil {
		logger.Error("failed to persist nudge",
			zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	if p.events != nil {
		if err := p.events.Record(ctx, domain.Event{
			UserID:  job.UserID,
			Kind:    domain.EventNudgeDelivered,
			Payload: string(nudge.Source),
		}); err != nil {
			logger.Warn("failed to record delivery event", zap.Error(err))
		}
	}

	logger.Info("nudge delivered",
		zap.String("job_id", job.ID),
		zap.String("user_id", job.UserID),
		zap.String("source", string(nudge.Source)),
		zap.Duration("elapsed", time.Since(started)))
}
