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

const defaultPageSize = 50

// ListUsersQuery represents the query to list users
type ListUsersQuery struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ListUsersResponse represents the response for listing users
type ListUsersResponse struct {
	Users []*GetUserResponse `json:"users"`
}

// ListUsers use case
type ListUsers struct {
	userRepository domain.UserRepository
}

// NewListUsers creates a new ListUsers use case
func NewListUsers(userRepository domain.UserRepository) *ListUsers {
	return &ListUsers{
		userRepository: userRepository,
	}
}

// Execute executes the list users use case
func (uc *ListUsers) Execute(ctx context.Context, query *ListUsersQuery) (*ListUsersResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "list_users",
		trace.WithAttributes(
			attribute.Int("limit", query.Limit),
			attribute.Int("offset", query.Offset),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "user_operations_total", "Total user operations", 1,
			attribute.String("operation", "list_users"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "user_operation_duration_seconds", "User operation duration", duration.Seconds(),
			attribute.String("operation", "list_users"),
			attribute.String("status", status),
		)
	}()

	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	users, err := uc.userRepository.FindAll(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list users")
	}

	response := &ListUsersResponse{
		Users: make([]*GetUserResponse, 0, len(users)),
	}
	for _, user := range users {
		response.Users = append(response.Users, toGetUserResponse(user))
	}

	status = "success"
	span.SetAttributes(attribute.Int("count", len(users)))

	return response, nil
}
