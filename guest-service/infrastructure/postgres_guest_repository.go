package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/guest-service/domain"
	"github.com/venuehub/registration-system/shared/models"
)

// PostgresGuestRepository implements GuestRepository using PostgreSQL
type PostgresGuestRepository struct {
	db *sqlx.DB
}

// NewPostgresGuestRepository creates a new PostgresGuestRepository
func NewPostgresGuestRepository(db *sqlx.DB) *PostgresGuestRepository {
	return &PostgresGuestRepository{db: db}
}

// postgresGuest represents a guest row in the database
type postgresGuest struct {
	ID          string     `db:"id"`
	FullName    string     `db:"fullname"`
	Email       string     `db:"email"`
	PhoneNumber string     `db:"phonenumber"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	Version     int        `db:"version"`
}

// Save persists a guest. New aggregates are inserted; existing ones are
// updated with an optimistic-locking version check.
func (r *PostgresGuestRepository) Save(ctx context.Context, guest *domain.Guest) error {
	if guest.Version.Value == 1 {
		return r.insertGuest(ctx, guest)
	}
	return r.updateGuest(ctx, guest)
}

func (r *PostgresGuestRepository) insertGuest(ctx context.Context, guest *domain.Guest) error {
	query := `
		INSERT INTO guests (
			id, fullname, email, phonenumber,
			created_at, updated_at, version
		) VALUES (
			:id, :fullname, :email, :phonenumber,
			:created_at, :updated_at, :version
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(guest))
	if err != nil {
		return errors.Wrap(err, "failed to insert guest")
	}

	return nil
}

func (r *PostgresGuestRepository) updateGuest(ctx context.Context, guest *domain.Guest) error {
	query := `
		UPDATE guests
		SET fullname = :fullname, email = :email, phonenumber = :phonenumber,
			updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	pgGuest := r.toPostgres(guest)

	res, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          pgGuest.ID,
		"fullname":    pgGuest.FullName,
		"email":       pgGuest.Email,
		"phonenumber": pgGuest.PhoneNumber,
		"updated_at":  pgGuest.UpdatedAt,
		"version":     pgGuest.Version,
		"old_version": pgGuest.Version - 1, // Optimistic locking
	})
	if err != nil {
		return errors.Wrap(err, "failed to update guest")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.New("guest was modified concurrently")
	}

	return nil
}

// FindByID finds a guest by ID
func (r *PostgresGuestRepository) FindByID(ctx context.Context, id models.ID) (*domain.Guest, error) {
	query := `
		SELECT id, fullname, email, phonenumber,
			   created_at, updated_at, deleted_at, version
		FROM guests
		WHERE id = $1 AND deleted_at IS NULL`

	var pgGuest postgresGuest
	err := r.db.GetContext(ctx, &pgGuest, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGuestNotFound
		}
		return nil, errors.Wrap(err, "failed to find guest")
	}

	return r.toDomain(&pgGuest)
}

// FindByEmail finds a guest by email
func (r *PostgresGuestRepository) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	query := `
		SELECT id, fullname, email, phonenumber,
			   created_at, updated_at, deleted_at, version
		FROM guests
		WHERE email = $1 AND deleted_at IS NULL
		LIMIT 1`

	var pgGuest postgresGuest
	err := r.db.GetContext(ctx, &pgGuest, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrGuestNotFound
		}
		return nil, errors.Wrap(err, "failed to find guest by email")
	}

	return r.toDomain(&pgGuest)
}

// FindAll lists guests ordered by creation time
func (r *PostgresGuestRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Guest, error) {
	query := `
		SELECT id, fullname, email, phonenumber,
			   created_at, updated_at, deleted_at, version
		FROM guests
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var pgGuests []postgresGuest
	err := r.db.SelectContext(ctx, &pgGuests, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list guests")
	}

	guests := make([]*domain.Guest, len(pgGuests))
	for i, pgGuest := range pgGuests {
		guest, err := r.toDomain(&pgGuest)
		if err != nil {
			return nil, err
		}
		guests[i] = guest
	}

	return guests, nil
}

// toPostgres converts a domain guest to a postgres row
func (r *PostgresGuestRepository) toPostgres(guest *domain.Guest) *postgresGuest {
	return &postgresGuest{
		ID:          guest.ID.String(),
		FullName:    guest.FullName,
		Email:       guest.Email,
		PhoneNumber: guest.PhoneNumber,
		CreatedAt:   guest.Timestamps.CreatedAt,
		UpdatedAt:   guest.Timestamps.UpdatedAt,
		DeletedAt:   guest.Timestamps.DeletedAt,
		Version:     guest.Version.Value,
	}
}

// toDomain converts a postgres row to a domain guest
func (r *PostgresGuestRepository) toDomain(pgGuest *postgresGuest) (*domain.Guest, error) {
	id, err := models.NewID(pgGuest.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid guest ID")
	}

	return &domain.Guest{
		ID:          id,
		FullName:    pgGuest.FullName,
		Email:       pgGuest.Email,
		PhoneNumber: pgGuest.PhoneNumber,
		Timestamps: models.Timestamps{
			CreatedAt: pgGuest.CreatedAt,
			UpdatedAt: pgGuest.UpdatedAt,
			DeletedAt: pgGuest.DeletedAt,
		},
		Version: models.Version{Value: pgGuest.Version},
	}, nil
}
