package handlers

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/guest-service/application"
	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/guest-service/mocks"
	"github.com/venuehub/registration-system/shared/events"
	sharedmocks "github.com/venuehub/registration-system/shared/mocks"
	"github.com/venuehub/registration-system/shared/models"
)

func userCreatedFact(correlationID models.ID) *events.Event {
	return events.NewEvent(
		models.GenerateUUID(),
		events.UserCreatedEvent,
		events.UserCreatedData{
			CorrelationID: correlationID,
			Name:          "Ada Lovelace",
			Email:         "ada@example.com",
		},
	).WithCorrelationID(correlationID)
}

func newGuestEventHandlers(repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) *GuestEventHandlers {
	createGuest := application.NewCreateGuest(repo, publisher)
	return NewGuestEventHandlers(createGuest, publisher)
}

func TestGuestEventHandlers_HandleUserCreated(t *testing.T) {
	correlationID := models.GenerateUUID()

	tests := []struct {
		name        string
		setupMocks  func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher)
		wantErr     bool
		wantOutcome string
		wantReason  string
	}{
		{
			name: "publishes guest created on success",
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrGuestNotFound)
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
			},
			wantOutcome: events.GuestCreatedEvent,
		},
		{
			name: "publishes failure when guest email is taken",
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				existing, err := domain.CreateGuest("Ada Lovelace", "ada@example.com", "")
				require.NoError(t, err)
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(existing, nil)
			},
			wantOutcome: events.GuestCreatedFailureEvent,
			wantReason:  "duplicate email",
		},
		{
			name: "publishes failure with reason when creation fails",
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrGuestNotFound)
				repo.EXPECT().Save(mock.Anything, mock.Anything).
					Return(errors.New("connection refused"))
			},
			wantOutcome: events.GuestCreatedFailureEvent,
			wantReason:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockGuestRepository(t)
			publisher := sharedmocks.NewMockPublisher(t)
			tt.setupMocks(t, repo, publisher)

			var outcome *events.Event
			publisher.EXPECT().Publish(mock.Anything, mock.Anything).
				Run(func(ctx context.Context, evts ...*events.Event) {
					require.Len(t, evts, 1)
					// The create use case publishes its own record created
					// event first; the saga outcome comes last
					outcome = evts[0]
				}).
				Return(nil)

			handlers := newGuestEventHandlers(repo, publisher)
			err := handlers.Handle(context.Background(), userCreatedFact(correlationID))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			require.NotNil(t, outcome)
			assert.Equal(t, tt.wantOutcome, outcome.EventType)
			assert.Equal(t, correlationID, outcome.CorrelationID)

			if tt.wantReason != "" {
				var data events.GuestCreatedFailureData
				require.NoError(t, outcome.UnmarshalPayload(&data))
				assert.Equal(t, correlationID, data.CorrelationID)
				assert.Contains(t, data.Reason, tt.wantReason)
			}
		})
	}
}

func TestGuestEventHandlers_PublishFailureLeavesMessageForRetry(t *testing.T) {
	correlationID := models.GenerateUUID()

	repo := mocks.NewMockGuestRepository(t)
	publisher := sharedmocks.NewMockPublisher(t)

	repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
		Return(nil, domain.ErrGuestNotFound)
	repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Return(errors.New("sns unavailable"))

	handlers := newGuestEventHandlers(repo, publisher)
	err := handlers.Handle(context.Background(), userCreatedFact(correlationID))

	require.Error(t, err)
}

func TestGuestEventHandlers_IgnoresUnrelatedEvents(t *testing.T) {
	repo := mocks.NewMockGuestRepository(t)
	publisher := sharedmocks.NewMockPublisher(t)

	handlers := newGuestEventHandlers(repo, publisher)

	event := events.NewEvent(models.GenerateUUID(), events.UserRegisteredEvent, nil)
	assert.NoError(t, handlers.Handle(context.Background(), event))
}

func TestGuestEventHandlers_FallsBackToPayloadCorrelationID(t *testing.T) {
	correlationID := models.GenerateUUID()

	repo := mocks.NewMockGuestRepository(t)
	publisher := sharedmocks.NewMockPublisher(t)

	repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
		Return(nil, domain.ErrGuestNotFound)
	repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)

	var outcome *events.Event
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, evts ...*events.Event) {
			outcome = evts[len(evts)-1]
		}).
		Return(nil)

	handlers := newGuestEventHandlers(repo, publisher)

	// Envelope without a correlation ID; only the payload carries it
	event := events.NewEvent(
		models.GenerateUUID(),
		events.UserCreatedEvent,
		events.UserCreatedData{
			CorrelationID: correlationID,
			Name:          "Ada Lovelace",
			Email:         "ada@example.com",
		},
	)

	require.NoError(t, handlers.Handle(context.Background(), event))

	require.NotNil(t, outcome)
	assert.Equal(t, events.GuestCreatedEvent, outcome.EventType)
	assert.Equal(t, correlationID, outcome.CorrelationID)
}
