package entity

import (
	"time"

	"github.com/garyjia/perdin-approval/internal/domain/geo"
)

// City is immutable reference data used for distance and policy inputs
type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nama"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Province  string    `json:"provinsi"`
	Island    string    `json:"pulau"`
	IsForeign bool      `json:"luar_negeri"`
	CreatedAt time.Time `json:"created_at"`
}

// Point returns the city coordinates for distance calculations
func (c *City) Point() geo.Point {
	return geo.Point{Lat: c.Latitude, Lon: c.Longitude}
}
