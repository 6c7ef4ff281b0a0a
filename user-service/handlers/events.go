package handlers

import (
	"context"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/saga"
)

// UserEventHandlers routes events from the user service queue. All saga
// lifecycle events go to the orchestrator; anything else is ignored.
type UserEventHandlers struct {
	orchestrator *saga.Orchestrator
}

// NewUserEventHandlers creates new user event handlers
func NewUserEventHandlers(orchestrator *saga.Orchestrator) *UserEventHandlers {
	return &UserEventHandlers{
		orchestrator: orchestrator,
	}
}

// Handle implements the events.EventHandler interface
func (h *UserEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.UserCreatingStartedEvent,
		events.GuestCreatedEvent,
		events.GuestCreatedFailureEvent:
		return h.orchestrator.Handle(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *UserEventHandlers) HandlerID() string {
	return "user-service-event-handler"
}
