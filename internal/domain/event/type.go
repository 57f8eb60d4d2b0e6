package event

// Type identifies a domain event
type Type string

const (
	TypeTripCreated      Type = "trip.created"
	TypeTripCostComputed Type = "trip.cost_computed"
	TypeTripApproved     Type = "trip.approved"
	TypeTripRejected     Type = "trip.rejected"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeTripCreated, TypeTripCostComputed, TypeTripApproved, TypeTripRejected:
		return true
	default:
		return false
	}
}
