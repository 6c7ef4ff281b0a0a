package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/shared/telemetry"
	"github.com/venuehub/registration-system/user-service/domain"
)

// RefreshTokenCommand represents the command to rotate a token pair
type RefreshTokenCommand struct {
	UserID       string `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenResponse carries the rotated token pair
type RefreshTokenResponse struct {
	UserID string            `json:"user_id"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// RefreshToken use case exchanges a valid refresh token for a new pair.
// Rotation is single-use: the stored token is replaced on every exchange.
type RefreshToken struct {
	userRepository domain.UserRepository
	tokenService   domain.TokenService
}

// NewRefreshToken creates a new RefreshToken use case
func NewRefreshToken(
	userRepository domain.UserRepository,
	tokenService domain.TokenService,
) *RefreshToken {
	return &RefreshToken{
		userRepository: userRepository,
		tokenService:   tokenService,
	}
}

// Execute rotates the token pair for the user
func (uc *RefreshToken) Execute(ctx context.Context, cmd *RefreshTokenCommand) (*RefreshTokenResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "refresh_token",
		trace.WithAttributes(
			attribute.String("user_id", cmd.UserID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "user_operations_total", "Total user operations", 1,
			attribute.String("operation", "refresh_token"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "user_operation_duration_seconds", "User operation duration", duration.Seconds(),
			attribute.String("operation", "refresh_token"),
			attribute.String("status", status),
		)
	}()

	if cmd.UserID == "" || cmd.RefreshToken == "" {
		err := errors.New("user_id and refresh_token are required")
		span.RecordError(err)
		return nil, err
	}

	userID, err := models.NewID(cmd.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "invalid user ID")
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrRefreshTokenInvalid
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	if err := user.ValidateRefreshToken(cmd.RefreshToken, time.Now()); err != nil {
		span.RecordError(err)
		return nil, err
	}

	accessToken, accessExpiry, err := uc.tokenService.MintAccessToken(user)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to mint access token")
	}

	refreshToken, refreshExpiry, err := uc.tokenService.MintRefreshToken()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to mint refresh token")
	}

	user.SetRefreshToken(refreshToken, refreshExpiry)
	if err := uc.userRepository.Save(ctx, user); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save refresh token")
	}

	status = "success"

	return &RefreshTokenResponse{
		UserID: user.ID.String(),
		Tokens: &domain.TokenPair{
			AccessToken:   accessToken,
			AccessExpiry:  accessExpiry,
			RefreshToken:  refreshToken,
			RefreshExpiry: refreshExpiry,
		},
	}, nil
}
