package domain

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/models"
)

var (
	ErrGuestNotFound = errors.New("guest not found")
	ErrGuestExists   = errors.New("guest already exists for this email")
)

// Guest aggregate root
type Guest struct {
	ID          models.ID `json:"id"`
	FullName    string    `json:"fullname"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phonenumber"`

	Timestamps models.Timestamps
	Version    models.Version

	events []*events.Event
}

// CreateGuest factory method
func CreateGuest(fullName, email, phoneNumber string) (*Guest, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" {
		return nil, errors.New("fullname is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}

	guest := &Guest{
		ID:          models.GenerateUUID(),
		FullName:    fullName,
		Email:       email,
		PhoneNumber: strings.TrimSpace(phoneNumber),
		Timestamps:  models.NewTimestamps(),
		Version:     models.NewVersion(),
	}

	event := events.NewEvent(guest.ID, events.GuestRecordCreatedEvent, GuestRecordCreatedData{
		GuestID:  guest.ID,
		FullName: guest.FullName,
		Email:    guest.Email,
	})

	guest.recordEvent(event)
	return guest, nil
}

// Events returns domain events
func (g *Guest) Events() []*events.Event {
	return g.events
}

// ClearEvents clears domain events
func (g *Guest) ClearEvents() {
	g.events = make([]*events.Event, 0)
}

func (g *Guest) recordEvent(event *events.Event) {
	g.events = append(g.events, event)
}

// GuestRecordCreatedData represents data for the guest record created event
type GuestRecordCreatedData struct {
	GuestID  models.ID `json:"guest_id"`
	FullName string    `json:"fullname"`
	Email    string    `json:"email"`
}

// GuestRepository persists guest aggregates
type GuestRepository interface {
	Save(ctx context.Context, guest *Guest) error
	FindByID(ctx context.Context, id models.ID) (*Guest, error)
	FindByEmail(ctx context.Context, email string) (*Guest, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Guest, error)
}
