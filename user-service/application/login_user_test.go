package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/user-service/domain"
	"github.com/venuehub/registration-system/user-service/mocks"
)

func activeUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.CreateUser("Ada Lovelace", "ada@example.com", "hashed")
	require.NoError(t, err)
	user.ClearEvents()
	return user
}

func TestLoginUser_Execute(t *testing.T) {
	accessExpiry := time.Now().Add(15 * time.Minute)
	refreshExpiry := time.Now().Add(7 * 24 * time.Hour)

	tests := []struct {
		name       string
		cmd        *LoginUserCommand
		setupMocks func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "mints token pair for valid credentials",
			cmd:  &LoginUserCommand{Email: "Ada@Example.com", Password: "correct horse"},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
				user := activeUser(t)
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").Return(user, nil)
				hasher.EXPECT().Compare("hashed", "correct horse").Return(nil)
				tokens.EXPECT().MintAccessToken(user).Return("access-token", accessExpiry, nil)
				tokens.EXPECT().MintRefreshToken().Return("refresh-token", refreshExpiry, nil)
				repo.EXPECT().Save(mock.Anything, user).Return(nil)
			},
		},
		{
			name: "rejects empty credentials",
			cmd:  &LoginUserCommand{},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
			},
			wantErrMsg: "email and password are required",
		},
		{
			name: "unknown email looks like a bad password",
			cmd:  &LoginUserCommand{Email: "nobody@example.com", Password: "correct horse"},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
				repo.EXPECT().FindByEmail(mock.Anything, "nobody@example.com").
					Return(nil, domain.ErrUserNotFound)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "rejects disabled account",
			cmd:  &LoginUserCommand{Email: "ada@example.com", Password: "correct horse"},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
				user := activeUser(t)
				user.Disable()
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").Return(user, nil)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "rejects wrong password",
			cmd:  &LoginUserCommand{Email: "ada@example.com", Password: "wrong"},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").Return(activeUser(t), nil)
				hasher.EXPECT().Compare("hashed", "wrong").Return(domain.ErrInvalidCredentials)
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "propagates save failure during rotation",
			cmd:  &LoginUserCommand{Email: "ada@example.com", Password: "correct horse"},
			setupMocks: func(t *testing.T, repo *mocks.MockUserRepository, hasher *mocks.MockPasswordHasher, tokens *mocks.MockTokenService) {
				user := activeUser(t)
				repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").Return(user, nil)
				hasher.EXPECT().Compare("hashed", "correct horse").Return(nil)
				tokens.EXPECT().MintAccessToken(user).Return("access-token", accessExpiry, nil)
				tokens.EXPECT().MintRefreshToken().Return("refresh-token", refreshExpiry, nil)
				repo.EXPECT().Save(mock.Anything, user).Return(errors.New("connection refused"))
			},
			wantErrMsg: "failed to save refresh token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockUserRepository(t)
			hasher := mocks.NewMockPasswordHasher(t)
			tokens := mocks.NewMockTokenService(t)
			tt.setupMocks(t, repo, hasher, tokens)

			uc := NewLoginUser(repo, hasher, tokens)
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
			require.NotNil(t, resp.Tokens)
			assert.Equal(t, "access-token", resp.Tokens.AccessToken)
			assert.Equal(t, "refresh-token", resp.Tokens.RefreshToken)
		})
	}
}

func TestLoginUser_StoresRefreshTokenOnUser(t *testing.T) {
	repo := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenService(t)

	user := activeUser(t)
	refreshExpiry := time.Now().Add(7 * 24 * time.Hour)

	repo.EXPECT().FindByEmail(mock.Anything, "ada@example.com").Return(user, nil)
	hasher.EXPECT().Compare("hashed", "correct horse").Return(nil)
	tokens.EXPECT().MintAccessToken(user).Return("access-token", time.Now().Add(15*time.Minute), nil)
	tokens.EXPECT().MintRefreshToken().Return("refresh-token", refreshExpiry, nil)
	repo.EXPECT().Save(mock.Anything, user).Return(nil)

	uc := NewLoginUser(repo, hasher, tokens)
	_, err := uc.Execute(context.Background(), &LoginUserCommand{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	// The stored token replaces whatever was there, so an old refresh token
	// can no longer be exchanged
	assert.Equal(t, "refresh-token", user.RefreshToken)
	assert.Equal(t, refreshExpiry, user.RefreshTokenExpiry)
	assert.Equal(t, 2, user.Version.Value)
}
