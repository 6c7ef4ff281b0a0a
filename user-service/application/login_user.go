package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/shared/telemetry"
	"github.com/venuehub/registration-system/user-service/domain"
)

// LoginUserCommand represents the command to authenticate a user
type LoginUserCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUserResponse carries the minted token pair
type LoginUserResponse struct {
	UserID string            `json:"user_id"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// LoginUser use case verifies credentials and mints a token pair. The
// refresh token is stored on the user row, so issuing a new pair revokes
// the previous refresh token.
type LoginUser struct {
	userRepository domain.UserRepository
	passwordHasher domain.PasswordHasher
	tokenService   domain.TokenService
}

// NewLoginUser creates a new LoginUser use case
func NewLoginUser(
	userRepository domain.UserRepository,
	passwordHasher domain.PasswordHasher,
	tokenService domain.TokenService,
) *LoginUser {
	return &LoginUser{
		userRepository: userRepository,
		passwordHasher: passwordHasher,
		tokenService:   tokenService,
	}
}

// Execute authenticates the user and returns a fresh token pair
func (uc *LoginUser) Execute(ctx context.Context, cmd *LoginUserCommand) (*LoginUserResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "login_user",
		trace.WithAttributes(
			attribute.String("email", domain.NormalizeEmail(cmd.Email)),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "user_operations_total", "Total user operations", 1,
			attribute.String("operation", "login_user"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "user_operation_duration_seconds", "User operation duration", duration.Seconds(),
			attribute.String("operation", "login_user"),
			attribute.String("status", status),
		)
	}()

	if cmd.Email == "" || cmd.Password == "" {
		err := errors.New("email and password are required")
		span.RecordError(err)
		return nil, err
	}

	user, err := uc.userRepository.FindByEmail(ctx, domain.NormalizeEmail(cmd.Email))
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same error as a bad password so the endpoint does not leak
			// which emails are registered
			return nil, domain.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	if user.Status != domain.UserStatusActive {
		span.RecordError(domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.passwordHasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		span.RecordError(domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := uc.mintTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	status = "success"
	span.SetAttributes(attribute.String("user_id", user.ID.String()))

	return &LoginUserResponse{
		UserID: user.ID.String(),
		Tokens: tokens,
	}, nil
}

func (uc *LoginUser) mintTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, accessExpiry, err := uc.tokenService.MintAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint access token")
	}

	refreshToken, refreshExpiry, err := uc.tokenService.MintRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to mint refresh token")
	}

	user.SetRefreshToken(refreshToken, refreshExpiry)
	if err := uc.userRepository.Save(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to save refresh token")
	}

	return &domain.TokenPair{
		AccessToken:   accessToken,
		AccessExpiry:  accessExpiry,
		RefreshToken:  refreshToken,
		RefreshExpiry: refreshExpiry,
	}, nil
}
