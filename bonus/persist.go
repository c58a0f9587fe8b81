package bonus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PERSISTENCE - Durable storage boundary
// =============================================================================

// Persistence stores the single logical state record. Implementations must
// treat missing or structurally corrupt stored data as an empty state, not
// an error; only genuine I/O failures should surface.
type Persistence interface {
	// Load returns the persisted state, or an empty state when nothing
	// usable is stored.
	Load(ctx context.Context) (State, error)

	// Save persists the full state. Saves are whole-state writes; partial
	// states are never observable.
	Save(ctx context.Context, state State) error
}

// =============================================================================
// AUDIT EVENTS
// =============================================================================

// EventAction identifies what a recorded event was.
type EventAction string

const (
	EventLoginMarked   EventAction = "login_marked"
	EventClaimComplete EventAction = "claim_completed"
	EventManualClaim   EventAction = "manual_claim"
	EventBonusEdited   EventAction = "bonus_edited"
	EventReconciled    EventAction = "reconciled"
)

// Event is one entry of the append-only mutation trail.
type Event struct {
	ID     string      `json:"id"`
	At     time.Time   `json:"at"`
	Action EventAction `json:"action"`
	WeekID string      `json:"weekId"`
	Detail string      `json:"detail,omitempty"`
}

// NewEvent creates an event stamped now.
func NewEvent(action EventAction, weekID, detail string) Event {
	return Event{
		ID:     uuid.NewString(),
		At:     time.Now().UTC(),
		Action: action,
		WeekID: weekID,
		Detail: detail,
	}
}

// EventSink records mutation events. Append-only; failures are logged by
// the engine and never block a command.
type EventSink interface {
	Record(ctx context.Context, event Event) error
}
