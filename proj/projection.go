// Package proj maps geographic coordinates onto planar pixel space. A
// Projection turns latitude and longitude into projected coordinates, a
// Transformation maps those into screen-oriented units, and a CRS ties
// both together with the zoom-dependent scale factor used by tiled
// maps.
package proj

import (
	"math"

	"github.com/OpticalFlyer/atlas/geo"
)

// Constants for the spherical Mercator projection
const (
	// EarthRadius is the equatorial radius in meters used by the
	// spherical Mercator model (EPSG:3857).
	EarthRadius = 6378137.0

	// MaxLatitude is the northernmost latitude representable in
	// spherical Mercator: arctan(sinh(pi)) in degrees. Latitudes
	// beyond it are clamped so the projected world stays square.
	MaxLatitude = 85.0511287798

	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Projection converts between geographic positions and planar
// projected coordinates. Implementations must be pure: equal inputs
// yield equal outputs.
type Projection interface {
	// Project converts a geographic position to projected coordinates.
	Project(ll geo.LatLng) geo.Point

	// Unproject is the inverse of Project.
	Unproject(p geo.Point) geo.LatLng

	// Bounds returns the extent of valid projected coordinates. An
	// invalid (zero) Bounds means the projection is unbounded.
	Bounds() geo.Bounds
}

// SphericalMercator is the projection used by most tile servers. It
// treats the earth as a sphere of radius EarthRadius and clamps
// latitude to ±MaxLatitude.
type SphericalMercator struct{}

var _ Projection = SphericalMercator{}

// Project converts a WGS84 position to spherical Mercator meters.
//
// Parameters:
//   - ll: Position in degrees. Latitude is clamped to ±MaxLatitude.
//
// Returns:
//   - Projected coordinates in meters, x in [-πR, πR], y likewise.
func (SphericalMercator) Project(ll geo.LatLng) geo.Point {
	lat := ll.Lat
	if lat > MaxLatitude {
		lat = MaxLatitude
	} else if lat < -MaxLatitude {
		lat = -MaxLatitude
	}

	sinLat := math.Sin(lat * degToRad)
	return geo.Point{
		X: EarthRadius * ll.Lng * degToRad,
		Y: EarthRadius * math.Log((1+sinLat)/(1-sinLat)) / 2,
	}
}

// Unproject converts spherical Mercator meters back to WGS84 degrees.
func (SphericalMercator) Unproject(p geo.Point) geo.LatLng {
	return geo.LatLng{
		Lat: (2*math.Atan(math.Exp(p.Y/EarthRadius)) - math.Pi/2) * radToDeg,
		Lng: p.X * radToDeg / EarthRadius,
	}
}

// Bounds returns the square extent of the projected world in meters.
func (SphericalMercator) Bounds() geo.Bounds {
	d := EarthRadius * math.Pi
	return geo.NewBounds(geo.Pt(-d, -d), geo.Pt(d, d))
}

// LonLat is the identity projection: longitude becomes x and latitude
// becomes y. It backs EPSG:4326 and flat non-geographic maps.
type LonLat struct{}

var _ Projection = LonLat{}

// Project returns the position's longitude and latitude unchanged.
func (LonLat) Project(ll geo.LatLng) geo.Point {
	return geo.Point{X: ll.Lng, Y: ll.Lat}
}

// Unproject interprets x as longitude and y as latitude.
func (LonLat) Unproject(p geo.Point) geo.LatLng {
	return geo.LatLng{Lat: p.Y, Lng: p.X}
}

// Bounds returns the full geographic extent in degrees.
func (LonLat) Bounds() geo.Bounds {
	return geo.NewBounds(geo.Pt(-180, -90), geo.Pt(180, 90))
}
