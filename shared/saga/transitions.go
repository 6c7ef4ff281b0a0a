package saga

import (
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/models"
)

// The state machine is an explicit transition table rather than behavior
// spread across handlers: (current state, event type) -> next state plus a
// pure side-effect function. Rows are data, so the machine can be inspected
// and unit tested without a store or a broker.

// Transition is one row of the saga state machine.
type Transition struct {
	From  State
	Event string
	To    State

	// Apply mutates the instance for this transition and returns the events
	// to publish. It must be pure in everything but the instance argument:
	// re-executing it with the same inputs yields the same result.
	Apply func(inst *Instance, event *events.Event) ([]*events.Event, error)
}

type transitionKey struct {
	from  State
	event string
}

var transitionTable = buildTransitionTable()

func buildTransitionTable() map[transitionKey]Transition {
	rows := []Transition{
		{
			From:  StateInitial,
			Event: events.UserCreatingStartedEvent,
			To:    StateGuestCreating,
			Apply: applyStart,
		},
		{
			From:  StateGuestCreating,
			Event: events.GuestCreatedEvent,
			To:    StateCompleted,
			Apply: applyGuestCreated,
		},
		{
			From:  StateGuestCreating,
			Event: events.GuestCreatedFailureEvent,
			To:    StateFailed,
			Apply: applyGuestCreationFailed,
		},
	}

	table := make(map[transitionKey]Transition, len(rows))
	for _, row := range rows {
		table[transitionKey{from: row.From, event: row.Event}] = row
	}
	return table
}

// lookupTransition returns the table row for the given state and event type.
func lookupTransition(from State, eventType string) (Transition, bool) {
	tr, ok := transitionTable[transitionKey{from: from, event: eventType}]
	return tr, ok
}

func applyStart(inst *Instance, event *events.Event) ([]*events.Event, error) {
	var data events.UserCreatingStartedData
	if err := event.UnmarshalPayload(&data); err != nil {
		return nil, errors.Wrap(err, "failed to parse saga start payload")
	}

	inst.CurrentState = StateGuestCreating
	inst.UserCreated = true

	fact := events.NewEvent(
		inst.CorrelationID,
		events.UserCreatedEvent,
		events.UserCreatedData{
			CorrelationID: inst.CorrelationID,
			Name:          data.Name,
			Email:         data.Email,
		},
	).WithCorrelationID(inst.CorrelationID)

	return []*events.Event{fact}, nil
}

func applyGuestCreated(inst *Instance, _ *events.Event) ([]*events.Event, error) {
	inst.CurrentState = StateCompleted
	inst.GuestCreated = true
	return nil, nil
}

func applyGuestCreationFailed(inst *Instance, event *events.Event) ([]*events.Event, error) {
	var data events.GuestCreatedFailureData
	if err := event.UnmarshalPayload(&data); err != nil {
		return nil, errors.Wrap(err, "failed to parse guest failure payload")
	}

	inst.CurrentState = StateFailed
	inst.GuestCreated = false
	return nil, nil
}

// FailureReason extracts the diagnostic reason from a guest failure event.
// Returns an empty string for any other event type.
func FailureReason(event *events.Event) string {
	if event.EventType != events.GuestCreatedFailureEvent {
		return ""
	}
	var data events.GuestCreatedFailureData
	if err := event.UnmarshalPayload(&data); err != nil {
		return ""
	}
	return data.Reason
}

// eventCorrelationID resolves the correlation ID for an incoming saga event,
// preferring the envelope and falling back to the payload.
func eventCorrelationID(event *events.Event) (models.ID, error) {
	if !event.CorrelationID.IsZero() {
		return event.CorrelationID, nil
	}

	switch event.EventType {
	case events.UserCreatingStartedEvent:
		var data events.UserCreatingStartedData
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", errors.Wrap(err, "failed to parse saga start payload")
		}
		return data.CorrelationID, nil
	case events.GuestCreatedEvent:
		var data events.GuestCreatedData
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", errors.Wrap(err, "failed to parse guest created payload")
		}
		return data.CorrelationID, nil
	case events.GuestCreatedFailureEvent:
		var data events.GuestCreatedFailureData
		if err := event.UnmarshalPayload(&data); err != nil {
			return "", errors.Wrap(err, "failed to parse guest failure payload")
		}
		return data.CorrelationID, nil
	}

	return "", errors.Errorf("event %s carries no correlation ID", event.EventType)
}
