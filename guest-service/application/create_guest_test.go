package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/guest-service/mocks"
	"github.com/venuehub/registration-system/shared/events"
	sharedmocks "github.com/venuehub/registration-system/shared/mocks"
)

func TestCreateGuest_Execute(t *testing.T) {
	tests := []struct {
		name       string
		cmd        *CreateGuestCommand
		setupMocks func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "creates guest and publishes record created",
			cmd: &CreateGuestCommand{
				FullName:    "Ada Lovelace",
				Email:       "Ada@Example.com",
				PhoneNumber: "+44 20 7946 0958",
			},
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrGuestNotFound)
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
				publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "rejects missing fullname",
			cmd:  &CreateGuestCommand{Email: "ada@example.com"},
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
			},
			wantErrMsg: "fullname is required",
		},
		{
			name: "rejects duplicate email",
			cmd: &CreateGuestCommand{
				FullName: "Ada Lovelace",
				Email:    "ada@example.com",
			},
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				existing, err := domain.CreateGuest("Ada Lovelace", "ada@example.com", "")
				require.NoError(t, err)
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(existing, nil)
			},
			wantErr: domain.ErrGuestExists,
		},
		{
			name: "propagates save failure",
			cmd: &CreateGuestCommand{
				FullName: "Ada Lovelace",
				Email:    "ada@example.com",
			},
			setupMocks: func(t *testing.T, repo *mocks.MockGuestRepository, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrGuestNotFound)
				repo.EXPECT().Save(mock.Anything, mock.Anything).
					Return(errors.New("connection refused"))
			},
			wantErrMsg: "failed to save guest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockGuestRepository(t)
			publisher := sharedmocks.NewMockPublisher(t)
			tt.setupMocks(t, repo, publisher)

			uc := NewCreateGuest(repo, publisher)
			resp, err := uc.Execute(context.Background(), tt.cmd)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.NotEmpty(t, resp.GuestID)
			assert.Equal(t, "Ada Lovelace", resp.FullName)
			assert.Equal(t, "ada@example.com", resp.Email)
			assert.Equal(t, "+44 20 7946 0958", resp.PhoneNumber)
		})
	}
}

func TestCreateGuest_PublishesRecordCreatedEvent(t *testing.T) {
	repo := mocks.NewMockGuestRepository(t)
	publisher := sharedmocks.NewMockPublisher(t)

	repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
		Return(nil, domain.ErrGuestNotFound)
	repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)

	var published *events.Event
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, evts ...*events.Event) {
			require.Len(t, evts, 1)
			published = evts[0]
		}).
		Return(nil)

	uc := NewCreateGuest(repo, publisher)
	resp, err := uc.Execute(context.Background(), &CreateGuestCommand{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
	})
	require.NoError(t, err)

	require.NotNil(t, published)
	assert.Equal(t, events.GuestRecordCreatedEvent, published.EventType)

	var data domain.GuestRecordCreatedData
	require.NoError(t, published.UnmarshalPayload(&data))
	assert.Equal(t, resp.GuestID, data.GuestID.String())
	assert.Equal(t, "Ada Lovelace", data.FullName)
	assert.Equal(t, "ada@example.com", data.Email)
}
