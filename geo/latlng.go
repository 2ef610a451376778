// Package geo provides the primitive geometric types shared by the map
// engine: geographic coordinates, planar pixel points and rectangular
// bounds in both spaces.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLatLng reports a coordinate outside the valid WGS84 domain.
var ErrInvalidLatLng = errors.New("geo: invalid coordinates")

// LatLng is a geographic position in degrees. Latitude is limited to
// [-90, 90]; longitude is kept as given and may exceed [-180, 180] so
// that views spanning the antimeridian keep their continuity. Alt is an
// optional altitude in meters, carried but never interpreted.
type LatLng struct {
	Lat float64
	Lng float64
	Alt float64
}

// NewLatLng validates lat and lng and returns the resulting position.
// Latitude outside [-90, 90] or a non-finite component is rejected with
// ErrInvalidLatLng.
func NewLatLng(lat, lng float64) (LatLng, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return LatLng{}, fmt.Errorf("%w: (%v, %v)", ErrInvalidLatLng, lat, lng)
	}
	if lat < -90 || lat > 90 {
		return LatLng{}, fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidLatLng, lat)
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

// Check reports whether the position would pass NewLatLng validation.
func (ll LatLng) Check() error {
	_, err := NewLatLng(ll.Lat, ll.Lng)
	return err
}

// Equals reports whether two positions are within maxMargin degrees of
// each other on both axes. A margin of zero requires exact equality.
func (ll LatLng) Equals(other LatLng, maxMargin float64) bool {
	return math.Abs(ll.Lat-other.Lat) <= maxMargin &&
		math.Abs(ll.Lng-other.Lng) <= maxMargin
}

func (ll LatLng) String() string {
	return fmt.Sprintf("LatLng(%.6f, %.6f)", ll.Lat, ll.Lng)
}

// WrapNum maps x into the half-open range [lo, hi) by modular
// arithmetic. With includeMax set, x equal to hi is returned unchanged
// so that closed ranges keep their upper edge.
func WrapNum(x, lo, hi float64, includeMax bool) float64 {
	if includeMax && x == hi {
		return x
	}
	d := hi - lo
	return math.Mod(math.Mod(x-lo, d)+d, d) + lo
}
