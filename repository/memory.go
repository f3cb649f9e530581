package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"debt-coach/domain"
)

// MemoryStore is the in-memory implementation of the debt, nudge and event
// repositories. It is the default when no database path is configured and
// doubles as the test double for handler and worker tests.
type MemoryStore struct {
	mu      sync.RWMutex
	debts   map[string]domain.Debt
	nudges  map[string]domain.Nudge
	events  []domain.Event
	eventID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		debts:  make(map[string]domain.Debt),
		nudges: make(map[string]domain.Nudge),
	}
}

func (s *MemoryStore) Create(_ context.Context, debt domain.Debt) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	debt.CreatedAt = now
	debt.UpdatedAt = now
	s.debts[debt.ID] = debt
	return debt, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	debt, ok := s.debts[id]
	if !ok {
		return domain.Debt{}, domain.ErrNotFound
	}
	return debt, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Debt
	for _, d := range s.debts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, debt domain.Debt) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.debts[debt.ID]
	if !ok {
		return domain.Debt{}, domain.ErrNotFound
	}
	debt.CreatedAt = existing.CreatedAt
	debt.UpdatedAt = time.Now().UTC()
	s.debts[debt.ID] = debt
	return debt, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.debts, id)
	return nil
}

func (s *MemoryStore) Save(_ context.Context, nudge domain.Nudge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nudges[nudge.ID] = nudge
	return nil
}

func (s *MemoryStore) GetNudge(ctx context.Context, id string) (domain.Nudge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nudge, ok := s.nudges[id]
	if !ok {
		return domain.Nudge{}, domain.ErrNotFound
	}
	return nudge, nil
}

func (s *MemoryStore) ListNudgesByUser(_ context.Context, userID string) ([]domain.Nudge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Nudge
	for _, n := range s.nudges {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *MemoryStore) Record(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventID++
	event.ID = s.eventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListEventsByUser(_ context.Context, userID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Nudges and Events adapt the store to the narrower repository interfaces.
func (s *MemoryStore) Nudges() NudgeRepository { return memoryNudges{s} }
func (s *MemoryStore) Events() EventRepository { return memoryEvents{s} }

type memoryNudges struct{ *MemoryStore }

func (m memoryNudges) Get(ctx context.Context, id string) (domain.Nudge, error) {
	return m.GetNudge(ctx, id)
}

func (m memoryNudges) ListByUser(ctx context.Context, userID string) ([]domain.Nudge, error) {
	return m.ListNudgesByUser(ctx, userID)
}

type memoryEvents struct{ *MemoryStore }

func (m memoryEvents) ListByUser(ctx context.Context, userID string) ([]domain.Event, error) {
	return m.ListEventsByUser(ctx, userID)
}
