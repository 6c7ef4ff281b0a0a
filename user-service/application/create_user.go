package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/shared/telemetry"
	"github.com/venuehub/registration-system/user-service/domain"
)

// CreateUserCommand represents the command to register a new user
type CreateUserCommand struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserResponse represents the response after registering a user
type CreateUserResponse struct {
	UserID        string `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// CreateUser use case registers a user and kicks off guest provisioning.
// The user row is persisted before anything hits the bus, so a consumer can
// never observe a start event for a user that does not exist.
type CreateUser struct {
	userRepository domain.UserRepository
	passwordHasher domain.PasswordHasher
	eventPublisher events.Publisher
}

// NewCreateUser creates a new CreateUser use case
func NewCreateUser(
	userRepository domain.UserRepository,
	passwordHasher domain.PasswordHasher,
	eventPublisher events.Publisher,
) *CreateUser {
	return &CreateUser{
		userRepository: userRepository,
		passwordHasher: passwordHasher,
		eventPublisher: eventPublisher,
	}
}

// Execute registers the user and publishes the start of guest provisioning
func (uc *CreateUser) Execute(ctx context.Context, cmd *CreateUserCommand) (*CreateUserResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "create_user",
		trace.WithAttributes(
			attribute.String("email", domain.NormalizeEmail(cmd.Email)),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)

		telemetry.RecordCounter(ctx, "user_operations_total", "Total user operations", 1,
			attribute.String("operation", "create_user"),
			attribute.String("status", status),
		)

		telemetry.RecordHistogram(ctx, "user_operation_duration_seconds", "User operation duration", duration.Seconds(),
			attribute.String("operation", "create_user"),
			attribute.String("status", status),
		)
	}()

	if err := uc.validateCommand(cmd); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "invalid command")
	}

	existing, err := uc.userRepository.FindByEmail(ctx, domain.NormalizeEmail(cmd.Email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to check existing user")
	}
	if existing != nil {
		span.RecordError(domain.ErrEmailTaken)
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := uc.passwordHasher.Hash(cmd.Password)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user, err := domain.CreateUser(cmd.Name, cmd.Email, passwordHash)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to create user")
	}

	if err := uc.userRepository.Save(ctx, user); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save user")
	}

	correlationID := models.GenerateUUID()

	outgoing := user.Events()
	outgoing = append(outgoing, events.NewEvent(
		user.ID,
		events.UserCreatingStartedEvent,
		events.UserCreatingStartedData{
			CorrelationID: correlationID,
			Name:          user.Name,
			Email:         user.Email,
		},
	).WithCorrelationID(correlationID))

	if err := uc.eventPublisher.Publish(ctx, outgoing...); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to publish events")
	}

	user.ClearEvents()

	status = "success"
	span.SetAttributes(
		attribute.String("user_id", user.ID.String()),
		attribute.String("correlation_id", correlationID.String()),
	)

	return &CreateUserResponse{
		UserID:        user.ID.String(),
		CorrelationID: correlationID.String(),
		Name:          user.Name,
		Email:         user.Email,
	}, nil
}

func (uc *CreateUser) validateCommand(cmd *CreateUserCommand) error {
	if cmd.Name == "" {
		return errors.New("name is required")
	}

	if err := domain.ValidateEmail(domain.NormalizeEmail(cmd.Email)); err != nil {
		return err
	}

	if len(cmd.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	return nil
}
