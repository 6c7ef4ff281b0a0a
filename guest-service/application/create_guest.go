package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/telemetry"
)

// CreateGuestCommand represents the command to create a guest record
type CreateGuestCommand struct {
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
}

// CreateGuestResponse represents the response after creating a guest
type CreateGuestResponse struct {
	GuestID     string `json:"guest_id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
}

// CreateGuest use case creates a guest record
type CreateGuest struct {
	guestRepository domain.GuestRepository
	eventPublisher  events.Publisher
}

// NewCreateGuest creates a new CreateGuest use case
func NewCreateGuest(
	guestRepository domain.GuestRepository,
	eventPublisher events.Publisher,
) *CreateGuest {
	return &CreateGuest{
		guestRepository: guestRepository,
		eventPublisher:  eventPublisher,
	}
}

// Execute creates the guest record
func (uc *CreateGuest) Execute(ctx context.Context, cmd *CreateGuestCommand) (*CreateGuestResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "create_guest",
		trace.WithAttributes(
			attribute.String("email", cmd.Email),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "guest_operations_total", "Total guest operations", 1,
			attribute.String("operation", "create_guest"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "guest_operation_duration_seconds", "Guest operation duration", duration.Seconds(),
			attribute.String("operation", "create_guest"),
			attribute.String("status", status),
		)
	}()

	guest, err := domain.CreateGuest(cmd.FullName, cmd.Email, cmd.PhoneNumber)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "invalid command")
	}

	existing, err := uc.guestRepository.FindByEmail(ctx, guest.Email)
	if err != nil && !errors.Is(err, domain.ErrGuestNotFound) {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to check existing guest")
	}
	if existing != nil {
		span.RecordError(domain.ErrGuestExists)
		return nil, domain.ErrGuestExists
	}

	if err := uc.guestRepository.Save(ctx, guest); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save guest")
	}

	if len(guest.Events()) > 0 {
		if err := uc.eventPublisher.Publish(ctx, guest.Events()...); err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, "failed to publish events")
		}
	}
	guest.ClearEvents()

	status = "success"
	span.SetAttributes(attribute.String("guest_id", guest.ID.String()))

	return &CreateGuestResponse{
		GuestID:     guest.ID.String(),
		FullName:    guest.FullName,
		Email:       guest.Email,
		PhoneNumber: guest.PhoneNumber,
	}, nil
}
