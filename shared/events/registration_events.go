package events

import "github.com/venuehub/registration-system/shared/models"

// Event type constants for the user/guest registration flow
const (
	// UserCreatingStartedEvent starts the user-creating saga. Published by the
	// user service after the user row is committed.
	UserCreatingStartedEvent = "user.creating.started"

	// UserCreatedEvent is the fact broadcast by the saga orchestrator once a
	// saga instance exists. Consumed by the guest service.
	UserCreatedEvent = "user.created"

	// GuestCreatedEvent signals that the guest record was created and committed.
	GuestCreatedEvent = "guest.created"

	// GuestCreatedFailureEvent signals that guest creation failed. Carries a
	// short diagnostic reason.
	GuestCreatedFailureEvent = "guest.created.failure"

	// UserRegisteredEvent is the user service's local domain fact, recorded by
	// the User aggregate on creation.
	UserRegisteredEvent = "user.registered"

	// GuestRecordCreatedEvent is the guest service's local domain fact.
	GuestRecordCreatedEvent = "guest.record.created"
)

// UserCreatingStartedData is the SagaStart payload. CorrelationID is minted by
// the user service and routes every later event to the same saga instance.
type UserCreatingStartedData struct {
	CorrelationID models.ID `json:"correlation_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
}

// UserCreatedData is the payload of the fact the orchestrator broadcasts.
type UserCreatedData struct {
	CorrelationID models.ID `json:"correlation_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
}

// GuestCreatedData is the success signal from the guest service.
type GuestCreatedData struct {
	CorrelationID models.ID `json:"correlation_id"`
}

// GuestCreatedFailureData is the failure signal from the guest service.
// Reason is a short diagnostic string, never a stack trace.
type GuestCreatedFailureData struct {
	CorrelationID models.ID `json:"correlation_id"`
	Reason        string    `json:"reason"`
}
