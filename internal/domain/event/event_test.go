package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt := NewEvent(TypeTripApproved, 42, map[string]interface{}{KeyActorUserID: int64(3)})

	_, err := uuid.Parse(evt.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeTripApproved, evt.Type)
	assert.Equal(t, int64(42), evt.TripID)
	assert.False(t, evt.Timestamp.IsZero())
	assert.Equal(t, int64(3), evt.GetPayloadInt(KeyActorUserID))
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeTripCreated, 1, nil)
	require.NotNil(t, evt.Payload)
	assert.Equal(t, "", evt.GetPayloadString(KeyPurpose))
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := NewEvent(TypeTripCreated, 1, nil)
		assert.False(t, seen[evt.ID], "duplicate id %s", evt.ID)
		seen[evt.ID] = true
	}
}

func TestEvent_PayloadConversions(t *testing.T) {
	evt := NewEvent(TypeTripCreated, 1, map[string]interface{}{
		"int":    7,
		"float":  2.9,
		"string": "x",
		"wrong":  true,
		"int64":  int64(9),
	})

	assert.Equal(t, int64(7), evt.GetPayloadInt("int"))
	assert.Equal(t, int64(2), evt.GetPayloadInt("float"))
	assert.Equal(t, int64(9), evt.GetPayloadInt("int64"))
	assert.Equal(t, int64(0), evt.GetPayloadInt("wrong"))
	assert.Equal(t, "x", evt.GetPayloadString("string"))
	assert.Equal(t, "", evt.GetPayloadString("int"))
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeTripCreated.IsValid())
	assert.True(t, TypeTripRejected.IsValid())
	assert.False(t, Type("instance.created").IsValid())
	assert.Equal(t, "trip.approved", TypeTripApproved.String())
}
