package destination

import (
	"math"

	"github.com/golang/geo/s2"
)

const (
	earthRadiusKm = 6371.0
	jitterDegrees = 0.01
)

// distanceKm returns the great-circle distance between a and b, rounded to 0.1 km.
func distanceKm(a, b Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return math.Round(p1.Distance(p2).Radians()*earthRadiusKm*10) / 10
}

// jitter offsets c by up to ±0.01 degrees on each axis.
func jitter(c Coordinates, rnd Rand) Coordinates {
	return Coordinates{
		Lat: c.Lat + (rnd.Float64()-0.5)*2*jitterDegrees,
		Lng: c.Lng + (rnd.Float64()-0.5)*2*jitterDegrees,
	}
}
