package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/shared/events"
	sharedmocks "github.com/venuehub/registration-system/shared/mocks"
	"github.com/venuehub/registration-system/user-service/domain"
	"github.com/venuehub/registration-system/user-service/mocks"
)

func TestCreateUser_Execute(t *testing.T) {
	tests := []struct {
		name       string
		cmd        *CreateUserCommand
		setupMocks func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "registers user and starts guest provisioning",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "Ada@Example.com",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrUserNotFound)
				hasher.EXPECT().Hash("correct horse").Return("hashed", nil)
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
				publisher.EXPECT().Publish(mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "rejects missing name",
			cmd: &CreateUserCommand{
				Email:    "ada@example.com",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
			},
			wantErrMsg: "name is required",
		},
		{
			name: "rejects malformed email",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "not-an-email",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
			},
			wantErrMsg: "email is invalid",
		},
		{
			name: "rejects short password",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "short",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
			},
			wantErrMsg: "password must be at least 8 characters",
		},
		{
			name: "rejects taken email",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
				existing, err := domain.CreateUser("Ada Lovelace", "ada@example.com", "hashed")
				require.NoError(t, err)
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(existing, nil)
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name: "propagates save failure",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrUserNotFound)
				hasher.EXPECT().Hash("correct horse").Return("hashed", nil)
				repo.EXPECT().Save(mock.Anything, mock.Anything).
					Return(errors.New("connection refused"))
			},
			wantErrMsg: "failed to save user",
		},
		{
			name: "propagates publish failure",
			cmd: &CreateUserCommand{
				Name:     "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "correct horse",
			},
			setupMocks: func(repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, publisher *sharedmocks.MockPublisher) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
					Return(nil, domain.ErrUserNotFound)
				hasher.EXPECT().Hash("correct horse").Return("hashed", nil)
				repo.EXPECT().Save(mock.Anything, mock.Anything).Return(nil)
				publisher.EXPECT().Publish(mock.Anything, mock.Anything, mock.Anything).
					Return(errors.New("sns unavailable"))
			},
			wantErrMsg: "failed to publish events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository(t)
			hasher := mocks.NewMockPasswordHasher(t)
			publisher := sharedmocks.NewMockPublisher(t)
			tt.setupMocks(repo, hasher, publisher)

			uc := NewCreateUser(repo, hasher, publisher)
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
			assert.NotEmpty(t, resp.UserID)
			assert.NotEmpty(t, resp.CorrelationID)
			assert.Equal(t, "Ada Lovelace", resp.Name)
			assert.Equal(t, "ada@example.com", resp.Email)
		})
	}
}

func TestCreateUser_PublishesStartEventWithCorrelationID(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	publisher := sharedmocks.NewMockPublisher(t)

	repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").
		Return(nil, domain.ErrUserNotFound)
	hasher.EXPECT().Hash("correct horse").Return("hashed", nil)

	var savedUser *domain.User
	repo.EXPECT().Save(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, user *domain.User) {
			savedUser = user
		}).
		Return(nil)

	var published []*events.Event
	publisher.EXPECT().Publish(mock.Anything, mock.Anything, mock.Anything).
		Run(func(ctx context.Context, evts ...*events.Event) {
			published = evts
		}).
		Return(nil)

	uc := NewCreateUser(repo, hasher, publisher)
	resp, err := uc.Execute(context.Background(), &CreateUserCommand{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	require.NotNil(t, savedUser)
	assert.Equal(t, "hashed", savedUser.PasswordHash)
	assert.Equal(t, domain.UserStatusActive, savedUser.Status)
	assert.Empty(t, savedUser.Events(), "events are cleared after publishing")

	// The registration fact and the saga start event go out in one batch
	require.Len(t, published, 2)
	assert.Equal(t, events.UserRegisteredEvent, published[0].EventType)

	start := published[1]
	assert.Equal(t, events.UserCreatingStartedEvent, start.EventType)
	assert.Equal(t, resp.CorrelationID, start.CorrelationID.String())

	var data events.UserCreatingStartedData
	require.NoError(t, start.UnmarshalPayload(&data))
	assert.Equal(t, resp.CorrelationID, data.CorrelationID.String())
	assert.Equal(t, "Ada Lovelace", data.Name)
	assert.Equal(t, "ada@example.com", data.Email)
}
