package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/shared/telemetry"
)

// GetGuestQuery represents the query to get a guest
type GetGuestQuery struct {
	GuestID string `json:"guest_id,omitempty"`
	Email   string `json:"email,omitempty"`
}

// GetGuestResponse represents the response for getting a guest
type GetGuestResponse struct {
	GuestID     string `json:"guest_id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// GetGuest use case
type GetGuest struct {
	guestRepository domain.GuestRepository
}

// NewGetGuest creates a new GetGuest use case
func NewGetGuest(guestRepository domain.GuestRepository) *GetGuest {
	return &GetGuest{
		guestRepository: guestRepository,
	}
}

// Execute executes the get guest use case
func (uc *GetGuest) Execute(ctx context.Context, query *GetGuestQuery) (*GetGuestResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "get_guest",
		trace.WithAttributes(
			attribute.String("guest_id", query.GuestID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "guest_operations_total", "Total guest operations", 1,
			attribute.String("operation", "get_guest"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "guest_operation_duration_seconds", "Guest operation duration", duration.Seconds(),
			attribute.String("operation", "get_guest"),
			attribute.String("status", status),
		)
	}()

	var guest *domain.Guest
	var err error

	switch {
	case query.GuestID != "":
		guestID, parseErr := models.NewID(query.GuestID)
		if parseErr != nil {
			span.RecordError(parseErr)
			return nil, errors.Wrap(parseErr, "invalid guest ID")
		}

		guest, err = uc.guestRepository.FindByID(ctx, guestID)
	case query.Email != "":
		guest, err = uc.guestRepository.FindByEmail(ctx, query.Email)
	default:
		err := errors.New("either guest_id or email is required")
		span.RecordError(err)
		return nil, err
	}

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrGuestNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to find guest")
	}

	status = "success"
	return toGetGuestResponse(guest), nil
}

func toGetGuestResponse(guest *domain.Guest) *GetGuestResponse {
	return &GetGuestResponse{
		GuestID:     guest.ID.String(),
		FullName:    guest.FullName,
		Email:       guest.Email,
		PhoneNumber: guest.PhoneNumber,
		CreatedAt:   guest.Timestamps.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   guest.Timestamps.UpdatedAt.Format(time.RFC3339),
	}
}
