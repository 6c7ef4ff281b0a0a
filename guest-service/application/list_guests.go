package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/shared/telemetry"
)

const defaultPageSize = 50

// ListGuestsQuery represents the query to list guests
type ListGuestsQuery struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ListGuestsResponse represents the response for listing guests
type ListGuestsResponse struct {
	Guests []*GetGuestResponse `json:"guests"`
}

// ListGuests use case
type ListGuests struct {
	guestRepository domain.GuestRepository
}

// NewListGuests creates a new ListGuests use case
func NewListGuests(guestRepository domain.GuestRepository) *ListGuests {
	return &ListGuests{
		guestRepository: guestRepository,
	}
}

// Execute executes the list guests use case
func (uc *ListGuests) Execute(ctx context.Context, query *ListGuestsQuery) (*ListGuestsResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "list_guests",
		trace.WithAttributes(
			attribute.Int("limit", query.Limit),
			attribute.Int("offset", query.Offset),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		duration := time.Since(start)
		telemetry.RecordCounter(ctx, "guest_operations_total", "Total guest operations", 1,
			attribute.String("operation", "list_guests"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "guest_operation_duration_seconds", "Guest operation duration", duration.Seconds(),
			attribute.String("operation", "list_guests"),
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

	guests, err := uc.guestRepository.FindAll(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to list guests")
	}

	response := &ListGuestsResponse{
		Guests: make([]*GetGuestResponse, 0, len(guests)),
	}
	for _, guest := range guests {
		response.Guests = append(response.Guests, toGetGuestResponse(guest))
	}

	status = "success"
	span.SetAttributes(attribute.Int("count", len(guests)))

	return response, nil
}
