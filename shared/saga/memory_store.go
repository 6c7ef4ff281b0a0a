package saga

import (
	"context"
	"sync"
	"time"

	"github.com/venuehub/registration-system/shared/models"
)

// MemoryInstanceStore is an in-process InstanceStore used by tests and local
// runs. Entries expire lazily after the configured TTL, mirroring the
// retention behavior of the Redis-backed store.
type MemoryInstanceStore struct {
	mux       sync.Mutex
	instances map[models.ID]*Instance
	ttl       time.Duration
	now       func() time.Time
}

// NewMemoryInstanceStore creates a memory store with the given retention
// window. A zero ttl disables expiry.
func NewMemoryInstanceStore(ttl time.Duration) *MemoryInstanceStore {
	return &MemoryInstanceStore{
		instances: make(map[models.ID]*Instance),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Get retrieves an instance, dropping it first if the TTL elapsed.
func (s *MemoryInstanceStore) Get(ctx context.Context, correlationID models.ID) (*Instance, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	inst, ok := s.instances[correlationID]
	if !ok {
		return nil, ErrInstanceNotFound
	}

	if s.expired(inst) {
		delete(s.instances, correlationID)
		return nil, ErrInstanceNotFound
	}

	return inst.Clone(), nil
}

// Create persists a new instance if none exists for the correlation ID.
func (s *MemoryInstanceStore) Create(ctx context.Context, inst *Instance) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if existing, ok := s.instances[inst.CorrelationID]; ok && !s.expired(existing) {
		return ErrInstanceExists
	}

	stored := inst.Clone()
	stored.Version = 1
	stored.UpdatedAt = s.now()
	s.instances[inst.CorrelationID] = stored

	inst.Version = stored.Version
	inst.UpdatedAt = stored.UpdatedAt
	return nil
}

// Update persists the instance if the stored version matches expectedVersion.
func (s *MemoryInstanceStore) Update(ctx context.Context, inst *Instance, expectedVersion int) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	existing, ok := s.instances[inst.CorrelationID]
	if !ok || s.expired(existing) {
		delete(s.instances, inst.CorrelationID)
		return ErrInstanceNotFound
	}

	if existing.Version != expectedVersion {
		return ErrVersionConflict
	}

	stored := inst.Clone()
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = s.now()
	s.instances[inst.CorrelationID] = stored

	inst.Version = stored.Version
	inst.UpdatedAt = stored.UpdatedAt
	return nil
}

// Len returns the number of live instances. Test helper.
func (s *MemoryInstanceStore) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()

	n := 0
	for _, inst := range s.instances {
		if !s.expired(inst) {
			n++
		}
	}
	return n
}

func (s *MemoryInstanceStore) expired(inst *Instance) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(inst.UpdatedAt) > s.ttl
}

// Compile-time check
var _ InstanceStore = (*MemoryInstanceStore)(nil)
