package saga

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/venuehub/registration-system/shared/models"
)

// RedisInstanceStore keeps saga instances in Redis, one hash per correlation
// ID. Conditional create/update run as Lua scripts so the version check and
// the write are atomic; every write refreshes the retention TTL, after which
// Redis drops the record regardless of saga outcome.
//
// Keys: {prefix}{correlationID} -> hash of instance fields.
type RedisInstanceStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

const (
	// DefaultKeyPrefix matches the saga repository key prefix used in
	// deployment.
	DefaultKeyPrefix = "user-creating-saga:"

	// DefaultInstanceTTL is the observed retention window for saga state.
	DefaultInstanceTTL = 10 * time.Minute
)

// createScript writes the hash only if the key does not exist yet.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1],
	"correlation_id", ARGV[1],
	"current_state", ARGV[2],
	"user_created", ARGV[3],
	"guest_created", ARGV[4],
	"retry_count", ARGV[5],
	"version", ARGV[6],
	"updated_at", ARGV[7])
if tonumber(ARGV[8]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[8])
end
return 1
`)

// updateScript writes the hash only if the stored version matches the
// expected one. Returns -1 when the key is gone, 0 on version mismatch.
var updateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local current = redis.call("HGET", KEYS[1], "version")
if current ~= ARGV[6] then
	return 0
end
redis.call("HSET", KEYS[1],
	"correlation_id", ARGV[1],
	"current_state", ARGV[2],
	"user_created", ARGV[3],
	"guest_created", ARGV[4],
	"retry_count", ARGV[5],
	"version", ARGV[7],
	"updated_at", ARGV[8])
if tonumber(ARGV[9]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[9])
end
return 1
`)

// NewRedisInstanceStore creates a store with the default key prefix and TTL.
func NewRedisInstanceStore(client redis.Cmdable) *RedisInstanceStore {
	return &RedisInstanceStore{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultInstanceTTL,
	}
}

// WithKeyPrefix sets a custom key prefix.
func (s *RedisInstanceStore) WithKeyPrefix(prefix string) *RedisInstanceStore {
	s.prefix = prefix
	return s
}

// WithTTL sets the retention window for instance records. Zero disables
// expiry.
func (s *RedisInstanceStore) WithTTL(ttl time.Duration) *RedisInstanceStore {
	s.ttl = ttl
	return s
}

// Get retrieves the instance for a correlation ID.
func (s *RedisInstanceStore) Get(ctx context.Context, correlationID models.ID) (*Instance, error) {
	fields, err := s.client.HGetAll(ctx, s.key(correlationID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read saga instance")
	}

	if len(fields) == 0 {
		return nil, ErrInstanceNotFound
	}

	return parseInstance(fields)
}

// Create persists a new instance, failing if one already exists.
func (s *RedisInstanceStore) Create(ctx context.Context, inst *Instance) error {
	inst.Version = 1
	inst.UpdatedAt = time.Now()

	created, err := createScript.Run(ctx, s.client,
		[]string{s.key(inst.CorrelationID)},
		instanceArgs(inst, s.ttl)...,
	).Int()
	if err != nil {
		return errors.Wrap(err, "failed to create saga instance")
	}

	if created == 0 {
		return ErrInstanceExists
	}

	return nil
}

// Update persists the instance conditionally on the expected version.
func (s *RedisInstanceStore) Update(ctx context.Context, inst *Instance, expectedVersion int) error {
	inst.Version = expectedVersion + 1
	inst.UpdatedAt = time.Now()

	args := []interface{}{
		inst.CorrelationID.String(),
		string(inst.CurrentState),
		strconv.FormatBool(inst.UserCreated),
		strconv.FormatBool(inst.GuestCreated),
		inst.RetryCount,
		strconv.Itoa(expectedVersion),
		inst.Version,
		inst.UpdatedAt.UnixMilli(),
		s.ttl.Milliseconds(),
	}

	updated, err := updateScript.Run(ctx, s.client, []string{s.key(inst.CorrelationID)}, args...).Int()
	if err != nil {
		return errors.Wrap(err, "failed to update saga instance")
	}

	switch updated {
	case -1:
		return ErrInstanceNotFound
	case 0:
		return ErrVersionConflict
	}

	return nil
}

func (s *RedisInstanceStore) key(correlationID models.ID) string {
	return s.prefix + correlationID.String()
}

func instanceArgs(inst *Instance, ttl time.Duration) []interface{} {
	return []interface{}{
		inst.CorrelationID.String(),
		string(inst.CurrentState),
		strconv.FormatBool(inst.UserCreated),
		strconv.FormatBool(inst.GuestCreated),
		inst.RetryCount,
		inst.Version,
		inst.UpdatedAt.UnixMilli(),
		ttl.Milliseconds(),
	}
}

func parseInstance(fields map[string]string) (*Instance, error) {
	correlationID, err := models.NewID(fields["correlation_id"])
	if err != nil {
		return nil, errors.Wrap(err, "invalid correlation ID in saga instance")
	}

	inst := &Instance{
		CorrelationID: correlationID,
		CurrentState:  State(fields["current_state"]),
		UserCreated:   fields["user_created"] == "true",
		GuestCreated:  fields["guest_created"] == "true",
	}

	if v := fields["retry_count"]; v != "" {
		inst.RetryCount, _ = strconv.Atoi(v)
	}

	if v := fields["version"]; v != "" {
		inst.Version, _ = strconv.Atoi(v)
	}

	if v := fields["updated_at"]; v != "" {
		ms, _ := strconv.ParseInt(v, 10, 64)
		inst.UpdatedAt = time.UnixMilli(ms)
	}

	return inst, nil
}

// Compile-time check
var _ InstanceStore = (*RedisInstanceStore)(nil)
