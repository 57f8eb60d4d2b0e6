package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	jakarta   = Point{Lat: -6.21462, Lon: 106.84513}
	bandung   = Point{Lat: -6.91746, Lon: 107.61912}
	surabaya  = Point{Lat: -7.24917, Lon: 112.75083}
	singapore = Point{Lat: 1.35208, Lon: 103.81983}
	newYork   = Point{Lat: 40.71278, Lon: -74.00594}
)

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{jakarta, bandung},
		{jakarta, singapore},
		{surabaya, newYork},
		{singapore, newYork},
	}

	for _, p := range pairs {
		assert.InDelta(t, Between(p[0], p[1]), Between(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	for _, p := range []Point{jakarta, bandung, singapore, newYork, {}} {
		assert.Equal(t, 0.0, Between(p, p))
	}
}

func TestDistanceKm_KnownRoutes(t *testing.T) {
	tests := []struct {
		name    string
		from    Point
		to      Point
		wantKm  float64
		deltaKm float64
	}{
		{"jakarta-bandung", jakarta, bandung, 115, 5},
		{"jakarta-surabaya", jakarta, surabaya, 663, 10},
		{"jakarta-singapore", jakarta, singapore, 906, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Between(tt.from, tt.to), tt.deltaKm)
		})
	}
}

func TestDistanceKm_NonNegative(t *testing.T) {
	assert.GreaterOrEqual(t, DistanceKm(90, 0, -90, 180), 0.0)
	assert.InDelta(t, EarthRadiusKm*3.141592653589793, DistanceKm(90, 0, -90, 0), 1e-6)
}
