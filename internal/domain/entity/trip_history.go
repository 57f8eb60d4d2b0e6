package entity

import "time"

// Trip history actions
const (
	ActionCreate  = "CREATE"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

// TripHistory is the audit trail of a trip request
type TripHistory struct {
	ID             int64     `json:"id"`
	TripID         int64     `json:"trip_id"`
	ActorUserID    int64     `json:"actor_user_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Action         string    `json:"action"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
