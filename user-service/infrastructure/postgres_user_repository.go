package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/venuehub/registration-system/shared/models"
	"github.com/venuehub/registration-system/user-service/domain"
)

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// postgresUser represents a user row in the database
type postgresUser struct {
	ID                 string     `db:"id"`
	Name               string     `db:"name"`
	Email              string     `db:"email"`
	PasswordHash       string     `db:"password_hash"`
	Status             string     `db:"status"`
	RefreshToken       *string    `db:"refresh_token"`
	RefreshTokenExpiry *time.Time `db:"refresh_token_expiry"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
	Version            int        `db:"version"`
}

// Save persists a user. New aggregates are inserted; existing ones are
// updated with an optimistic-locking version check.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	if user.Version.Value == 1 {
		return r.insertUser(ctx, user)
	}
	return r.updateUser(ctx, user)
}

func (r *PostgresUserRepository) insertUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, status,
			refresh_token, refresh_token_expiry,
			created_at, updated_at, version
		) VALUES (
			:id, :name, :email, :password_hash, :status,
			:refresh_token, :refresh_token_expiry,
			:created_at, :updated_at, :version
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(user))
	if err != nil {
		return errors.Wrap(err, "failed to insert user")
	}

	return nil
}

func (r *PostgresUserRepository) updateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = :name, email = :email, password_hash = :password_hash,
			status = :status, refresh_token = :refresh_token,
			refresh_token_expiry = :refresh_token_expiry,
			updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`

	pgUser := r.toPostgres(user)

	res, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                   pgUser.ID,
		"name":                 pgUser.Name,
		"email":                pgUser.Email,
		"password_hash":        pgUser.PasswordHash,
		"status":               pgUser.Status,
		"refresh_token":        pgUser.RefreshToken,
		"refresh_token_expiry": pgUser.RefreshTokenExpiry,
		"updated_at":           pgUser.UpdatedAt,
		"version":              pgUser.Version,
		"old_version":          pgUser.Version - 1, // Optimistic locking
	})
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read update result")
	}
	if affected == 0 {
		return errors.New("user was modified concurrently")
	}

	return nil
}

// FindByID finds a user by ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id models.ID) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, status,
			   refresh_token, refresh_token_expiry,
			   created_at, updated_at, deleted_at, version
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var pgUser postgresUser
	err := r.db.GetContext(ctx, &pgUser, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	return r.toDomain(&pgUser)
}

// FindByEmail finds a user by normalized email
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, status,
			   refresh_token, refresh_token_expiry,
			   created_at, updated_at, deleted_at, version
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
		LIMIT 1`

	var pgUser postgresUser
	err := r.db.GetContext(ctx, &pgUser, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return r.toDomain(&pgUser)
}

// FindAll lists users ordered by creation time
func (r *PostgresUserRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, status,
			   refresh_token, refresh_token_expiry,
			   created_at, updated_at, deleted_at, version
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var pgUsers []postgresUser
	err := r.db.SelectContext(ctx, &pgUsers, query, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*domain.User, len(pgUsers))
	for i, pgUser := range pgUsers {
		user, err := r.toDomain(&pgUser)
		if err != nil {
			return nil, err
		}
		users[i] = user
	}

	return users, nil
}

// toPostgres converts a domain user to a postgres row
func (r *PostgresUserRepository) toPostgres(user *domain.User) *postgresUser {
	var refreshToken *string
	var refreshTokenExpiry *time.Time
	if user.RefreshToken != "" {
		token := user.RefreshToken
		expiry := user.RefreshTokenExpiry
		refreshToken = &token
		refreshTokenExpiry = &expiry
	}

	return &postgresUser{
		ID:                 user.ID.String(),
		Name:               user.Name,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		Status:             string(user.Status),
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshTokenExpiry,
		CreatedAt:          user.Timestamps.CreatedAt,
		UpdatedAt:          user.Timestamps.UpdatedAt,
		DeletedAt:          user.Timestamps.DeletedAt,
		Version:            user.Version.Value,
	}
}

// toDomain converts a postgres row to a domain user
func (r *PostgresUserRepository) toDomain(pgUser *postgresUser) (*domain.User, error) {
	id, err := models.NewID(pgUser.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid user ID")
	}

	user := &domain.User{
		ID:           id,
		Name:         pgUser.Name,
		Email:        pgUser.Email,
		PasswordHash: pgUser.PasswordHash,
		Status:       domain.UserStatus(pgUser.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgUser.CreatedAt,
			UpdatedAt: pgUser.UpdatedAt,
			DeletedAt: pgUser.DeletedAt,
		},
		Version: models.Version{Value: pgUser.Version},
	}

	if pgUser.RefreshToken != nil {
		user.RefreshToken = *pgUser.RefreshToken
	}
	if pgUser.RefreshTokenExpiry != nil {
		user.RefreshTokenExpiry = *pgUser.RefreshTokenExpiry
	}

	return user, nil
}
