package saga

import (
	"context"
	"errors"

	"github.com/venuehub/registration-system/shared/models"
)

var (
	// ErrInstanceNotFound is returned when no instance exists for the
	// correlation ID.
	ErrInstanceNotFound = errors.New("saga instance not found")

	// ErrInstanceExists is returned by Create when an instance already exists
	// for the correlation ID. At most one instance per ID may ever exist.
	ErrInstanceExists = errors.New("saga instance already exists")

	// ErrVersionConflict is returned by Update when the stored version no
	// longer matches the expected one. The caller must re-read and retry the
	// transition rather than overwrite newer state.
	ErrVersionConflict = errors.New("saga instance version conflict")
)

// InstanceStore is a durable keyed store for saga instances. Implementations
// must be safe for concurrent use and must honor the conditional-write
// contract: Create fails on an existing key, Update fails on a stale version.
// Records expire after the store's retention window; expiry is operational
// cleanup, not a program-level delete.
type InstanceStore interface {
	// Get retrieves the instance for a correlation ID.
	// Returns ErrInstanceNotFound if absent or expired.
	Get(ctx context.Context, correlationID models.ID) (*Instance, error)

	// Create persists a new instance. Returns ErrInstanceExists if an
	// instance with this correlation ID is already present.
	Create(ctx context.Context, inst *Instance) error

	// Update persists the instance if the stored version equals
	// expectedVersion, bumping the version by one. Returns ErrVersionConflict
	// when a concurrent writer got there first.
	Update(ctx context.Context, inst *Instance, expectedVersion int) error
}
