package saga

import (
	"time"

	"github.com/venuehub/registration-system/shared/models"
)

// State represents the current state of a user-creating saga instance.
type State string

const (
	// StateInitial is the implicit state before an instance exists in the
	// store. It is never persisted.
	StateInitial State = "initial"

	// StateGuestCreating means the user row is committed and the saga is
	// waiting for the guest service to report success or failure.
	StateGuestCreating State = "guest_creating"

	// StateCompleted is terminal: user and guest both exist.
	StateCompleted State = "completed"

	// StateFailed is terminal: guest creation failed. The user record is not
	// compensated; the failure reason is surfaced through logs and metrics.
	StateFailed State = "failed"
)

// Terminal reports whether no further transitions are expected.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Instance is the persisted state of one user-creating workflow, keyed by
// correlation ID. The orchestrator is the sole writer; Version guards the
// read-transition-write cycle against concurrent deliveries.
type Instance struct {
	CorrelationID models.ID `json:"correlation_id"`
	CurrentState  State     `json:"current_state"`
	UserCreated   bool      `json:"user_created"`
	GuestCreated  bool      `json:"guest_created"`
	// RetryCount is carried in the schema for a future retry/backoff policy.
	// Nothing reads it yet.
	RetryCount int       `json:"retry_count"`
	Version    int       `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewInstance creates a fresh instance in GuestCreating. An instance only
// comes into existence when the start event is first consumed, at which point
// the user record is known to be committed.
func NewInstance(correlationID models.ID) *Instance {
	return &Instance{
		CorrelationID: correlationID,
		CurrentState:  StateGuestCreating,
		UserCreated:   true,
		Version:       1,
		UpdatedAt:     time.Now(),
	}
}

// Terminal reports whether the instance reached Completed or Failed.
func (i *Instance) Terminal() bool {
	return i.CurrentState.Terminal()
}

// Clone returns a copy safe to mutate during a transition attempt.
func (i *Instance) Clone() *Instance {
	c := *i
	return &c
}
