package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/user-service/domain"
	"github.com/venuehub/registration-system/user-service/mocks"
)

func TestRefreshToken_Execute(t *testing.T) {
	accessExpiry := time.Now().Add(15 * time.Minute)
	refreshExpiry := time.Now().Add(7 * 24 * time.Hour)

	userWithToken := func(t *testing.T, token string, expiry time.Time) *domain.User {
		t.Helper()
		user := activeUser(t)
		user.SetRefreshToken(token, expiry)
		return user
	}

	t.Run("rotates the pair for a valid token", func(t *testing.T) {
		repo := mocks.NewMockUserRepository(t)
		tokens := mocks.NewMockTokenService(t)

		user := userWithToken(t, "old-refresh", refreshExpiry)
		repo.EXPECT().FindByID(mock.Anything, user.ID).Return(user, nil)
		tokens.EXPECT().MintAccessToken(user).Return("new-access", accessExpiry, nil)
		tokens.EXPECT().MintRefreshToken().Return("new-refresh", refreshExpiry, nil)
		repo.EXPECT().Save(mock.Anything, user).Return(nil)

		uc := NewRefreshToken(repo, tokens)
		resp, err := uc.Execute(context.Background(), &RefreshTokenCommand{
			UserID:       user.ID.String(),
			RefreshToken: "old-refresh",
		})
		require.NoError(t, err)

		require.NotNil(t, resp.Tokens)
		assert.Equal(t, "new-access", resp.Tokens.AccessToken)
		assert.Equal(t, "new-refresh", resp.Tokens.RefreshToken)

		// Single use: the presented token is gone after the exchange
		assert.Equal(t, "new-refresh", user.RefreshToken)
	})

	t.Run("rejects a mismatched token", func(t *testing.T) {
		repo := mocks.NewMockUserRepository(t)
		tokens := mocks.NewMockTokenService(t)

		user := userWithToken(t, "stored-refresh", refreshExpiry)
		repo.EXPECT().FindByID(mock.Anything, user.ID).Return(user, nil)

		uc := NewRefreshToken(repo, tokens)
		_, err := uc.Execute(context.Background(), &RefreshTokenCommand{
			UserID:       user.ID.String(),
			RefreshToken: "someone-elses-token",
		})
		assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		repo := mocks.NewMockUserRepository(t)
		tokens := mocks.NewMockTokenService(t)

		user := userWithToken(t, "old-refresh", time.Now().Add(-time.Hour))
		repo.EXPECT().FindByID(mock.Anything, user.ID).Return(user, nil)

		uc := NewRefreshToken(repo, tokens)
		_, err := uc.Execute(context.Background(), &RefreshTokenCommand{
			UserID:       user.ID.String(),
			RefreshToken: "old-refresh",
		})
		assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
	})

	t.Run("unknown user maps to invalid token", func(t *testing.T) {
		repo := mocks.NewMockUserRepository(t)
		tokens := mocks.NewMockTokenService(t)

		user := activeUser(t)
		repo.EXPECT().FindByID(mock.Anything, user.ID).Return(nil, domain.ErrUserNotFound)

		uc := NewRefreshToken(repo, tokens)
		_, err := uc.Execute(context.Background(), &RefreshTokenCommand{
			UserID:       user.ID.String(),
			RefreshToken: "old-refresh",
		})
		assert.ErrorIs(t, err, domain.ErrRefreshTokenInvalid)
	})

	t.Run("rejects malformed user id", func(t *testing.T) {
		repo := mocks.NewMockUserRepository(t)
		tokens := mocks.NewMockTokenService(t)

		uc := NewRefreshToken(repo, tokens)
		_, err := uc.Execute(context.Background(), &RefreshTokenCommand{
			UserID:       "not-a-uuid",
			RefreshToken: "old-refresh",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user ID")
	})
}
