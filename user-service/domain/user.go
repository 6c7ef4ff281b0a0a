package domain

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/shared/events"
	"github.com/venuehub/registration-system/shared/models"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenInvalid = errors.New("refresh token is invalid or expired")
)

// User aggregate root
type User struct {
	ID           models.ID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`

	RefreshToken       string    `json:"-"`
	RefreshTokenExpiry time.Time `json:"-"`

	Timestamps models.Timestamps
	Version    models.Version

	events []*events.Event
}

// CreateUser factory method. Normalizes the email and records the
// registration domain event.
func CreateUser(name, email, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, errors.New("name is required")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, errors.New("password hash is required")
	}

	user := &User{
		ID:           models.GenerateUUID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       UserStatusActive,
		Timestamps:   models.NewTimestamps(),
		Version:      models.NewVersion(),
	}

	event := events.NewEvent(user.ID, events.UserRegisteredEvent, UserRegisteredData{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})

	user.recordEvent(event)
	return user, nil
}

// SetRefreshToken stores a new refresh token with its expiry
func (u *User) SetRefreshToken(token string, expiry time.Time) {
	u.RefreshToken = token
	u.RefreshTokenExpiry = expiry
	u.Timestamps = u.Timestamps.Update()
	u.Version = u.Version.Update()
}

// ValidateRefreshToken checks the presented token against the stored one
func (u *User) ValidateRefreshToken(token string, now time.Time) error {
	if u.RefreshToken == "" || u.RefreshToken != token {
		return ErrRefreshTokenInvalid
	}
	if now.After(u.RefreshTokenExpiry) {
		return ErrRefreshTokenInvalid
	}
	return nil
}

// Disable marks the account as disabled
func (u *User) Disable() {
	u.Status = UserStatusDisabled
	u.Timestamps = u.Timestamps.Update()
	u.Version = u.Version.Update()
}

// Events returns domain events
func (u *User) Events() []*events.Event {
	return u.events
}

// ClearEvents clears domain events
func (u *User) ClearEvents() {
	u.events = make([]*events.Event, 0)
}

func (u *User) recordEvent(event *events.Event) {
	u.events = append(u.events, event)
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail applies the minimal structural check used across services
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return errors.New("email is invalid")
	}
	return nil
}

// UserRegisteredData represents data for the user registered event
type UserRegisteredData struct {
	UserID models.ID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// UserRepository persists user aggregates
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id models.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, limit, offset int) ([]*User, error)
}

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
