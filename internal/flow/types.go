package flow

import (
	"context"
	"encoding/json"
	"time"
)

// Kind names one of the studio flows.
type Kind string

const (
	KindIdeas    Kind = "ideas"
	KindVisual   Kind = "visual"
	KindResearch Kind = "research"
)

// Kinds lists every flow in display order.
var Kinds = []Kind{KindIdeas, KindVisual, KindResearch}

// Valid reports whether k is a known flow.
func (k Kind) Valid() bool {
	switch k {
	case KindIdeas, KindVisual, KindResearch:
		return true
	}
	return false
}

// Delivery is a computed payload waiting for its delay to elapse.
type Delivery struct {
	ID          string          `json:"id"`
	Flow        Kind            `json:"flow"`
	Payload     json.RawMessage `json:"payload"`
	Delay       time.Duration   `json:"delay"`
	ScheduledAt time.Time       `json:"scheduled_at"`
}

// Slot is the stored state of one flow. Result is nil until the first
// delivery lands.
type Slot struct {
	Loading    bool
	Result     json.RawMessage
	DeliveryID string
	UpdatedAt  time.Time
}

// Store owns the per-flow slots.
type Store interface {
	// MarkPending sets the loading flag.
	MarkPending(ctx context.Context, kind Kind) error
	// ClearPending resets the loading flag without touching the result.
	ClearPending(ctx context.Context, kind Kind) error
	// Deliver replaces the result with d.Payload and clears the loading flag.
	Deliver(ctx context.Context, d Delivery) error
	// Load returns the current slot. Unknown or empty slots are zero values.
	Load(ctx context.Context, kind Kind) (Slot, error)
}

// Dispatcher schedules a delivery to reach the Store after d.Delay.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Delivery) error
}
