package saga

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/mocks"
	"github.com/venuehub/registration-system/shared/models"
)

func startEvent(correlationID models.ID) *events.Event {
	return events.NewEvent(
		models.GenerateUUID(),
		events.UserCreatingStartedEvent,
		events.UserCreatingStartedData{
			CorrelationID: correlationID,
			Name:          "Ada Lovelace",
			Email:         "ada@example.com",
		},
	).WithCorrelationID(correlationID)
}

func guestCreatedEvent(correlationID models.ID) *events.Event {
	return events.NewEvent(
		models.GenerateUUID(),
		events.GuestCreatedEvent,
		events.GuestCreatedData{CorrelationID: correlationID},
	).WithCorrelationID(correlationID)
}

func guestFailedEvent(correlationID models.ID, reason string) *events.Event {
	return events.NewEvent(
		models.GenerateUUID(),
		events.GuestCreatedFailureEvent,
		events.GuestCreatedFailureData{
			CorrelationID: correlationID,
			Reason:        reason,
		},
	).WithCorrelationID(correlationID)
}

func TestOrchestrator_StartCreatesInstanceAndPublishesFact(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	var published *events.Event
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, evts ...*events.Event) {
			require.Len(t, evts, 1)
			published = evts[0]
		}).
		Return(nil).Once()

	err := orchestrator.Handle(context.Background(), startEvent(correlationID))
	require.NoError(t, err)

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateGuestCreating, inst.CurrentState)
	assert.True(t, inst.UserCreated)
	assert.False(t, inst.GuestCreated)
	assert.Equal(t, 1, inst.Version)

	require.NotNil(t, published)
	assert.Equal(t, events.UserCreatedEvent, published.EventType)
	assert.Equal(t, correlationID, published.CorrelationID)

	var data events.UserCreatedData
	require.NoError(t, published.UnmarshalPayload(&data))
	assert.Equal(t, correlationID, data.CorrelationID)
	assert.Equal(t, "Ada Lovelace", data.Name)
	assert.Equal(t, "ada@example.com", data.Email)
}

func TestOrchestrator_DuplicateStartIsNoOp(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	// The fact must go out exactly once no matter how many times the start
	// event is delivered
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateGuestCreating, inst.CurrentState)
	assert.Equal(t, 1, inst.Version)
}

func TestOrchestrator_GuestCreatedCompletesSaga(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), guestCreatedEvent(correlationID)))

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, inst.CurrentState)
	assert.True(t, inst.GuestCreated)
	assert.True(t, inst.Terminal())
	assert.Equal(t, 2, inst.Version)
}

func TestOrchestrator_GuestFailureFailsSaga(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), guestFailedEvent(correlationID, "email already registered")))

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, inst.CurrentState)
	assert.True(t, inst.UserCreated)
	assert.False(t, inst.GuestCreated)
	assert.True(t, inst.Terminal())
}

func TestOrchestrator_TerminalInstanceIgnoresFurtherEvents(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), guestCreatedEvent(correlationID)))

	// Redelivered outcomes after completion change nothing
	require.NoError(t, orchestrator.Handle(context.Background(), guestCreatedEvent(correlationID)))
	require.NoError(t, orchestrator.Handle(context.Background(), guestFailedEvent(correlationID, "too late")))

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, inst.CurrentState)
	assert.Equal(t, 2, inst.Version)
}

func TestOrchestrator_UnknownCorrelationIDIsDropped(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	// Outcome events for a correlation ID that never started must not
	// create state or be retried
	err := orchestrator.Handle(context.Background(), guestCreatedEvent(models.GenerateUUID()))
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	err = orchestrator.Handle(context.Background(), guestFailedEvent(models.GenerateUUID(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestOrchestrator_NonSagaEventIsIgnored(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	event := events.NewEvent(models.GenerateUUID(), events.UserRegisteredEvent, nil)

	require.NoError(t, orchestrator.Handle(context.Background(), event))
	assert.Equal(t, 0, store.Len())
}

func TestOrchestrator_PublishFailureReturnsError(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Return(errors.New("sns unavailable")).Once()

	err := orchestrator.Handle(context.Background(), startEvent(correlationID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish user created fact")

	// The instance exists, so the queue redelivery of the same start event
	// will not publish a second fact. This is the accepted gap: the fact
	// can be lost if the publish fails after the instance was created.
	inst, getErr := store.Get(context.Background(), correlationID)
	require.NoError(t, getErr)
	assert.Equal(t, StateGuestCreating, inst.CurrentState)
}

func TestOrchestrator_ConcurrentOutcomesResolveOnce(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = orchestrator.Handle(context.Background(), guestCreatedEvent(correlationID))
		}()
	}
	wg.Wait()

	inst, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, inst.CurrentState)
	assert.Equal(t, 2, inst.Version)
}

func TestOrchestrator_ExpiredInstanceDropsOutcome(t *testing.T) {
	store := NewMemoryInstanceStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	publisher := mocks.NewMockPublisher(t)
	orchestrator := NewOrchestrator(store, publisher)

	correlationID := models.GenerateUUID()

	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Once()
	require.NoError(t, orchestrator.Handle(context.Background(), startEvent(correlationID)))

	// Past the retention window the instance is gone and the outcome is
	// treated like any unknown correlation ID
	now = now.Add(2 * time.Minute)

	require.NoError(t, orchestrator.Handle(context.Background(), guestCreatedEvent(correlationID)))

	_, err := store.Get(context.Background(), correlationID)
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}
