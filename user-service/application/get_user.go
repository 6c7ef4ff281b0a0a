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

// GetUserQuery represents the query to get a user
type GetUserQuery struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// GetUserResponse represents the response for getting a user
type GetUserResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// GetUser use case
type GetUser struct {
	userRepository domain.UserRepository
}

// NewGetUser creates a new GetUser use case
func NewGetUser(userRepository domain.UserRepository) *GetUser {
	return &GetUser{
		userRepository: userRepository,
	}
}

// Execute executes the get user use case
func (uc *GetUser) Execute(ctx context.Context, query *GetUserQuery) (*GetUserResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "get_user",
		trace.WithAttributes(
			attribute.String("user_id", query.UserID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "user_operations_total", "Total user operations", 1,
			attribute.String("operation", "get_user"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "user_operation_duration_seconds", "User operation duration", duration.Seconds(),
			attribute.String("operation", "get_user"),
			attribute.String("status", status),
		)
	}()

	var user *domain.User
	var err error

	switch {
	case query.UserID != "":
		userID, parseErr := models.NewID(query.UserID)
		if parseErr != nil {
			span.RecordError(parseErr)
			return nil, errors.Wrap(parseErr, "invalid user ID")
		}

		user, err = uc.userRepository.FindByID(ctx, userID)
	case query.Email != "":
		user, err = uc.userRepository.FindByEmail(ctx, domain.NormalizeEmail(query.Email))
	default:
		err := errors.New("either user_id or email is required")
		span.RecordError(err)
		return nil, err
	}

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	status = "success"
	return toGetUserResponse(user), nil
}

func toGetUserResponse(user *domain.User) *GetUserResponse {
	return &GetUserResponse{
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Status:    string(user.Status),
		CreatedAt: user.Timestamps.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.Timestamps.UpdatedAt.Format(time.RFC3339),
	}
}
