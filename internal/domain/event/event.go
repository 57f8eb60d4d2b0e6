package event

import (
	"time"

	"github.com/google/uuid"
)

// Payload keys shared by publishers and handlers
const (
	KeyActorUserID = "actor_user_id"
	KeyStatus      = "status"
	KeyAmount      = "amount"
	KeyDistanceKm  = "distance_km"
	KeyPurpose     = "purpose"
	KeyOrigin      = "origin"
	KeyDestination = "destination"
)

// Event is something that happened to a trip request
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	TripID    int64                  `json:"trip_id"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent creates an event with a random id and the current time
func NewEvent(eventType Type, tripID int64, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TripID:    tripID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// GetPayloadInt retrieves an integer value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	switch v := e.Payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
