package domain

import "time"

type EventKind string

const (
	EventPlanComputed   EventKind = "plan_computed"
	EventSlipDetected   EventKind = "slip_detected"
	EventNudgeDelivered EventKind = "nudge_delivered"
)

// Event is an append-only record of something the planner did for a user.
type Event struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
