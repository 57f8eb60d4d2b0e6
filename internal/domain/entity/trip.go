package entity

import (
	"time"

	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// DateLayout is the wire and storage format of trip dates
const DateLayout = "2006-01-02"

// TripRequest is a business trip (perdin) submitted by an employee
type TripRequest struct {
	ID                  int64          `json:"id"`
	Purpose             string         `json:"maksud_tujuan"`
	DepartureDate       time.Time      `json:"tanggal_berangkat"`
	ReturnDate          time.Time      `json:"tanggal_pulang"`
	OriginCityID        int64          `json:"kota_asal_id"`
	DestinationCityID   int64          `json:"kota_tujuan_id"`
	DurationDays        int            `json:"durasi"`
	ReimbursementAmount int64          `json:"total_uang"`
	Status              workflow.State `json:"status"`
	RequesterID         int64          `json:"user_id"`
	DecidedBy           *int64         `json:"decided_by,omitempty"`
	DecidedAt           *time.Time     `json:"decided_at,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// DurationDays returns the inclusive day count between two dates:
// floor((return - departure) / 1 day) + 1.
func DurationDays(departure, ret time.Time) int {
	diff := ret.Sub(departure)
	days := int(diff / (24 * time.Hour))
	if diff < 0 && diff%(24*time.Hour) != 0 {
		days--
	}
	return days + 1
}

// TripView is a trip joined with its city names, used for listings and exports
type TripView struct {
	TripRequest
	OriginCityName      string `json:"kota_asal"`
	DestinationCityName string `json:"kota_tujuan"`
	RequesterName       string `json:"pegawai"`
}
