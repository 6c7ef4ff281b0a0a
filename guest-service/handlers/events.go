package handlers

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/guest-service/application"
	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/shared/events"
)

// GuestEventHandlers contains event handlers for the guest service. For
// every user-created fact it publishes exactly one outcome event, success
// or failure, so the saga on the other side always resolves.
type GuestEventHandlers struct {
	createGuest    *application.CreateGuest
	eventPublisher events.Publisher
}

// NewGuestEventHandlers creates new guest event handlers
func NewGuestEventHandlers(
	createGuest *application.CreateGuest,
	eventPublisher events.Publisher,
) *GuestEventHandlers {
	return &GuestEventHandlers{
		createGuest:    createGuest,
		eventPublisher: eventPublisher,
	}
}

// Handle implements the events.EventHandler interface
func (h *GuestEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.UserCreatedEvent:
		return h.HandleUserCreated(ctx, event)
	default:
		// Unknown event type, ignore
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *GuestEventHandlers) HandlerID() string {
	return "guest-service-event-handler"
}

// HandleUserCreated provisions a guest record for a freshly created user.
// The message is always consumed: a guest creation failure turns into a
// failure event rather than a redelivery, because retrying would produce
// the same outcome and the saga needs an answer either way.
func (h *GuestEventHandlers) HandleUserCreated(ctx context.Context, event *events.Event) error {
	var data events.UserCreatedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return errors.Wrap(err, "failed to parse user created payload")
	}

	correlationID := event.CorrelationID
	if correlationID.IsZero() {
		correlationID = data.CorrelationID
	}

	cmd := &application.CreateGuestCommand{
		FullName: data.Name,
		Email:    data.Email,
	}

	_, err := h.createGuest.Execute(ctx, cmd)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, domain.ErrGuestExists) {
			reason = "duplicate email"
		}

		log.Printf("guest creation failed for %s: %v", correlationID, err)
		return h.publishOutcome(ctx, events.NewEvent(
			event.AggregateID,
			events.GuestCreatedFailureEvent,
			events.GuestCreatedFailureData{
				CorrelationID: correlationID,
				Reason:        reason,
			},
		).WithCorrelationID(correlationID))
	}

	return h.publishOutcome(ctx, events.NewEvent(
		event.AggregateID,
		events.GuestCreatedEvent,
		events.GuestCreatedData{
			CorrelationID: correlationID,
		},
	).WithCorrelationID(correlationID))
}

func (h *GuestEventHandlers) publishOutcome(ctx context.Context, out *events.Event) error {
	if err := h.eventPublisher.Publish(ctx, out); err != nil {
		// Returning the error leaves the inbound message on the queue, so
		// the outcome gets another chance to reach the saga
		return errors.Wrapf(err, "failed to publish %s", out.EventType)
	}
	return nil
}
