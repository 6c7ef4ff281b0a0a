package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuehub/registration-system/shared/models"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name    string
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"exact match", "user.created", "user.created", true},
		{"exact mismatch", "user.created", "guest.created", false},
		{"single wildcard", "user.created", "user.*", true},
		{"single wildcard mismatch length", "user.creating.started", "user.*", false},
		{"catch all", "guest.created.failure", "#", true},
		{"prefix pattern", "user.creating.started", "user.#", true},
		{"suffix pattern", "guest.created.failure", "#.failure", true},
		{"contains pattern", "user.creating.started", "#creating#", true},
		{"contains pattern mismatch", "user.created", "#creating#", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestNewTopic(t *testing.T) {
	topic, err := NewTopic("user.created")
	require.NoError(t, err)
	assert.Equal(t, "user.created", topic.String())

	_, err = NewTopic("")
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestNewEvent(t *testing.T) {
	aggregateID := models.GenerateUUID()

	event := NewEvent(aggregateID, UserCreatedEvent, UserCreatedData{Name: "Ada"})

	assert.False(t, event.ID.IsZero())
	assert.Equal(t, aggregateID, event.AggregateID)
	assert.Equal(t, UserCreatedEvent, event.EventType)
	assert.Equal(t, Topic(UserCreatedEvent), event.Topic)
	assert.Equal(t, "1.0", event.Version)
	assert.False(t, event.Timestamp.IsZero())
	assert.True(t, event.CorrelationID.IsZero())
}

func TestEventWithCorrelationID(t *testing.T) {
	correlationID := models.GenerateUUID()

	event := NewEvent(models.GenerateUUID(), GuestCreatedEvent, nil).
		WithCorrelationID(correlationID)

	assert.Equal(t, correlationID, event.CorrelationID)
}

func TestEventUnmarshalPayload(t *testing.T) {
	correlationID := models.GenerateUUID()

	t.Run("from typed data", func(t *testing.T) {
		event := NewEvent(models.GenerateUUID(), GuestCreatedFailureEvent,
			GuestCreatedFailureData{CorrelationID: correlationID, Reason: "boom"})

		var data GuestCreatedFailureData
		require.NoError(t, event.UnmarshalPayload(&data))
		assert.Equal(t, correlationID, data.CorrelationID)
		assert.Equal(t, "boom", data.Reason)
	})

	t.Run("from raw json after wire round trip", func(t *testing.T) {
		event := NewEvent(models.GenerateUUID(), UserCreatedEvent,
			UserCreatedData{CorrelationID: correlationID, Name: "Ada", Email: "ada@example.com"})

		raw, err := event.ToJSON()
		require.NoError(t, err)

		decoded, err := FromJSON(raw)
		require.NoError(t, err)
		assert.Equal(t, event.EventType, decoded.EventType)

		var data UserCreatedData
		require.NoError(t, decoded.UnmarshalPayload(&data))
		assert.Equal(t, correlationID, data.CorrelationID)
		assert.Equal(t, "Ada", data.Name)
	})

	t.Run("rejects non pointer receiver", func(t *testing.T) {
		event := NewEvent(models.GenerateUUID(), GuestCreatedEvent, GuestCreatedData{})

		var data GuestCreatedData
		err := event.UnmarshalPayload(data)
		assert.ErrorIs(t, err, ErrInvalidReceiver)
	})
}

func TestEventMarshalPayload(t *testing.T) {
	raw := json.RawMessage(`{"reason":"boom"}`)
	event := NewEvent(models.GenerateUUID(), GuestCreatedFailureEvent, raw)

	payload, err := event.MarshalPayload()
	require.NoError(t, err)
	assert.JSONEq(t, `{"reason":"boom"}`, string(payload))
}

func TestEventClone(t *testing.T) {
	event := NewEvent(models.GenerateUUID(), UserCreatedEvent, UserCreatedData{Name: "Ada"}).
		WithMetadata("source", "user-service")

	clone := event.Clone()
	clone.Metadata.Set("source", "other")

	source, ok := event.Metadata.Get("source")
	require.True(t, ok)
	assert.Equal(t, "user-service", source)
}
