package saga

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/shared/telemetry"
)

// Orchestrator drives the user-creating saga. It consumes saga events from
// the bus, looks up the instance for the correlation ID, applies the
// transition table and persists the result with a version-conditional write.
// A losing writer re-reads and retries; everything else relies on the bus
// redelivering the message.
//
// Idempotence rules under at-least-once delivery:
//   - a duplicate start event for an existing instance is consumed without
//     effect and without re-publishing the user-created fact
//   - events for a terminal instance are consumed without effect
//   - non-start events for an unknown correlation ID are dropped; state is
//     never created from anything but the start event
type Orchestrator struct {
	store       InstanceStore
	publisher   events.Publisher
	maxAttempts int
}

const defaultMaxAttempts = 5

// NewOrchestrator creates a saga orchestrator.
func NewOrchestrator(store InstanceStore, publisher events.Publisher) *Orchestrator {
	return &Orchestrator{
		store:       store,
		publisher:   publisher,
		maxAttempts: defaultMaxAttempts,
	}
}

// HandlerID returns the unique identifier for this event handler.
func (o *Orchestrator) HandlerID() string {
	return "user-creating-saga-orchestrator"
}

// Handle implements the events.EventHandler interface.
func (o *Orchestrator) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.UserCreatingStartedEvent,
		events.GuestCreatedEvent,
		events.GuestCreatedFailureEvent:
	default:
		// Not a saga event, ignore
		return nil
	}

	correlationID, err := eventCorrelationID(event)
	if err != nil {
		// Unroutable: nothing to correlate on, so redelivery cannot help.
		o.recordDrop(ctx, event, "unroutable")
		log.Printf("saga: dropping unroutable %s event: %v", event.EventType, err)
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		lastErr = o.step(ctx, correlationID, event)
		if !errors.Is(lastErr, ErrVersionConflict) {
			return lastErr
		}
	}

	return errors.Wrapf(lastErr, "saga %s: transition retries exhausted", correlationID)
}

// step runs one read-transition-write cycle.
func (o *Orchestrator) step(ctx context.Context, correlationID models.ID, event *events.Event) error {
	inst, err := o.store.Get(ctx, correlationID)
	if errors.Is(err, ErrInstanceNotFound) {
		return o.stepInitial(ctx, correlationID, event)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load saga instance")
	}

	if event.EventType == events.UserCreatingStartedEvent {
		// Redelivered start: the instance already exists, so the fact was
		// already published. Consume without effect.
		o.recordDrop(ctx, event, "duplicate_start")
		return nil
	}

	if inst.Terminal() {
		o.recordDrop(ctx, event, "terminal")
		return nil
	}

	tr, ok := lookupTransition(inst.CurrentState, event.EventType)
	if !ok {
		o.recordDrop(ctx, event, "no_transition")
		log.Printf("saga %s: no transition from %s on %s", correlationID, inst.CurrentState, event.EventType)
		return nil
	}

	next := inst.Clone()
	outgoing, err := tr.Apply(next, event)
	if err != nil {
		return err
	}

	if err := o.store.Update(ctx, next, inst.Version); err != nil {
		return err
	}

	if next.CurrentState == StateFailed {
		log.Printf("saga %s: guest creation failed: %s", correlationID, FailureReason(event))
	}

	o.recordTransition(ctx, inst.CurrentState, next.CurrentState)

	if len(outgoing) > 0 {
		if err := o.publisher.Publish(ctx, outgoing...); err != nil {
			return errors.Wrap(err, "failed to publish saga events")
		}
	}

	return nil
}

// stepInitial handles events arriving while no instance exists. Only the
// start event creates state; anything else is an out-of-order delivery and
// is dropped.
func (o *Orchestrator) stepInitial(ctx context.Context, correlationID models.ID, event *events.Event) error {
	if event.EventType != events.UserCreatingStartedEvent {
		o.recordDrop(ctx, event, "unknown_instance")
		log.Printf("saga %s: dropping %s for unknown instance", correlationID, event.EventType)
		return nil
	}

	tr, _ := lookupTransition(StateInitial, event.EventType)

	inst := NewInstance(correlationID)
	outgoing, err := tr.Apply(inst, event)
	if err != nil {
		return err
	}

	if err := o.store.Create(ctx, inst); err != nil {
		if errors.Is(err, ErrInstanceExists) {
			// Lost the race against a concurrent first delivery; that worker
			// owns the side effect.
			o.recordDrop(ctx, event, "duplicate_start")
			return nil
		}
		return errors.Wrap(err, "failed to create saga instance")
	}

	o.recordTransition(ctx, StateInitial, inst.CurrentState)

	if err := o.publisher.Publish(ctx, outgoing...); err != nil {
		return errors.Wrap(err, "failed to publish user created fact")
	}

	return nil
}

func (o *Orchestrator) recordTransition(ctx context.Context, from, to State) {
	telemetry.RecordCounter(ctx, "saga_transitions_total", "Saga state transitions", 1,
		attribute.String("from", string(from)),
		attribute.String("to", string(to)),
	)
}

func (o *Orchestrator) recordDrop(ctx context.Context, event *events.Event, reason string) {
	telemetry.RecordCounter(ctx, "saga_events_dropped_total", "Saga events consumed without effect", 1,
		attribute.String("event_type", event.EventType),
		attribute.String("reason", reason),
	)
}
