package saga

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/shared/models"
)

func TestMemoryInstanceStore_CreateAndGet(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	correlationID := models.GenerateUUID()

	inst := NewInstance(correlationID)
	require.NoError(t, store.Create(context.Background(), inst))
	assert.Equal(t, 1, inst.Version)

	got, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, correlationID, got.CorrelationID)
	assert.Equal(t, StateGuestCreating, got.CurrentState)
	assert.Equal(t, 1, got.Version)
}

func TestMemoryInstanceStore_GetUnknown(t *testing.T) {
	store := NewMemoryInstanceStore(0)

	_, err := store.Get(context.Background(), models.GenerateUUID())
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestMemoryInstanceStore_CreateDuplicate(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	correlationID := models.GenerateUUID()

	require.NoError(t, store.Create(context.Background(), NewInstance(correlationID)))

	err := store.Create(context.Background(), NewInstance(correlationID))
	assert.ErrorIs(t, err, ErrInstanceExists)
}

func TestMemoryInstanceStore_UpdateBumpsVersion(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	correlationID := models.GenerateUUID()

	inst := NewInstance(correlationID)
	require.NoError(t, store.Create(context.Background(), inst))

	next := inst.Clone()
	next.CurrentState = StateCompleted
	next.GuestCreated = true

	require.NoError(t, store.Update(context.Background(), next, 1))
	assert.Equal(t, 2, next.Version)

	got, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.CurrentState)
	assert.Equal(t, 2, got.Version)
}

func TestMemoryInstanceStore_UpdateVersionConflict(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	correlationID := models.GenerateUUID()

	inst := NewInstance(correlationID)
	require.NoError(t, store.Create(context.Background(), inst))

	winner := inst.Clone()
	winner.CurrentState = StateCompleted
	require.NoError(t, store.Update(context.Background(), winner, 1))

	// A writer still holding the old version must lose
	loser := inst.Clone()
	loser.CurrentState = StateFailed
	err := store.Update(context.Background(), loser, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.CurrentState)
}

func TestMemoryInstanceStore_UpdateUnknown(t *testing.T) {
	store := NewMemoryInstanceStore(0)

	err := store.Update(context.Background(), NewInstance(models.GenerateUUID()), 1)
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestMemoryInstanceStore_TTLExpiry(t *testing.T) {
	store := NewMemoryInstanceStore(10 * time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	correlationID := models.GenerateUUID()
	require.NoError(t, store.Create(context.Background(), NewInstance(correlationID)))

	now = now.Add(9 * time.Minute)
	_, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), correlationID)
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	// An expired slot can be reclaimed by a new instance
	require.NoError(t, store.Create(context.Background(), NewInstance(correlationID)))
}

func TestMemoryInstanceStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryInstanceStore(0)
	correlationID := models.GenerateUUID()

	require.NoError(t, store.Create(context.Background(), NewInstance(correlationID)))

	got, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	got.CurrentState = StateFailed

	again, err := store.Get(context.Background(), correlationID)
	require.NoError(t, err)
	assert.Equal(t, StateGuestCreating, again.CurrentState)
}
