package proj

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/OpticalFlyer/atlas/geo"
)

// CRS is a coordinate reference system: a Projection plus the
// Transformation and scale law that map projected coordinates onto the
// pixel grid of a tiled map. The predefined systems EPSG3857, EPSG4326
// and Simple cover the common cases; custom systems can be built by
// filling the struct directly.
type CRS struct {
	// Code identifies the system, e.g. "EPSG:3857".
	Code string

	Projection     Projection
	Transformation Transformation

	// Infinite disables world bounds: ProjectedBounds returns an
	// invalid Bounds and tile validity is not range-checked.
	Infinite bool

	// WrapLng and WrapLat give the longitude and latitude ranges the
	// world repeats over, or nil when that axis does not wrap.
	WrapLng *[2]float64
	WrapLat *[2]float64

	// BaseScale is the pixel extent of the world at zoom zero. Zero
	// means 256, the size of one standard tile.
	BaseScale float64

	// Flat selects planar instead of great-circle distance.
	Flat bool
}

// Scale returns the number of pixels the projected world spans at the
// given zoom: BaseScale * 2^zoom. Zoom may be fractional.
func (c *CRS) Scale(zoom float64) float64 {
	base := c.BaseScale
	if base == 0 {
		base = 256
	}
	return base * math.Exp2(zoom)
}

// Zoom is the inverse of Scale.
func (c *CRS) Zoom(scale float64) float64 {
	base := c.BaseScale
	if base == 0 {
		base = 256
	}
	return math.Log2(scale / base)
}

// LatLngToPoint projects a geographic position into absolute pixel
// coordinates at the given zoom.
//
// Parameters:
//   - ll: Position in degrees.
//   - zoom: Zoom level, fractional values allowed.
//
// Returns:
//   - Absolute pixel coordinates with (0, 0) at the world's top-left.
func (c *CRS) LatLngToPoint(ll geo.LatLng, zoom float64) geo.Point {
	projected := c.Projection.Project(ll)
	return c.Transformation.Transform(projected, c.Scale(zoom))
}

// PointToLatLng converts absolute pixel coordinates at the given zoom
// back to a geographic position.
func (c *CRS) PointToLatLng(p geo.Point, zoom float64) geo.LatLng {
	untransformed := c.Transformation.Untransform(p, c.Scale(zoom))
	return c.Projection.Unproject(untransformed)
}

// ProjectedBounds returns the pixel extent of the world at the given
// zoom, or an invalid Bounds for infinite systems.
func (c *CRS) ProjectedBounds(zoom float64) geo.Bounds {
	if c.Infinite {
		return geo.Bounds{}
	}
	b := c.Projection.Bounds()
	s := c.Scale(zoom)
	return geo.NewBounds(
		c.Transformation.Transform(b.Min, s),
		c.Transformation.Transform(b.Max, s),
	)
}

// WrapLatLng normalizes a position into the system's wrap ranges,
// leaving axes without wrapping untouched.
func (c *CRS) WrapLatLng(ll geo.LatLng) geo.LatLng {
	if c.WrapLng != nil {
		ll.Lng = geo.WrapNum(ll.Lng, c.WrapLng[0], c.WrapLng[1], true)
	}
	if c.WrapLat != nil {
		ll.Lat = geo.WrapNum(ll.Lat, c.WrapLat[0], c.WrapLat[1], true)
	}
	return ll
}

// WrapLatLngBounds shifts bounds so that their center lies within the
// wrap ranges while the extents stay intact.
func (c *CRS) WrapLatLngBounds(b geo.LatLngBounds) geo.LatLngBounds {
	center := b.Center()
	wrapped := c.WrapLatLng(center)
	latShift := center.Lat - wrapped.Lat
	lngShift := center.Lng - wrapped.Lng

	if latShift == 0 && lngShift == 0 {
		return b
	}

	sw := b.SouthWest()
	ne := b.NorthEast()
	return geo.NewLatLngBounds(
		geo.LatLng{Lat: sw.Lat - latShift, Lng: sw.Lng - lngShift},
		geo.LatLng{Lat: ne.Lat - latShift, Lng: ne.Lng - lngShift},
	)
}

// Distance returns the distance between two positions in CRS units:
// meters along a great circle for earth-bound systems, Euclidean
// degrees for flat ones.
func (c *CRS) Distance(a, b geo.LatLng) float64 {
	if c.Flat {
		dx := b.Lng - a.Lng
		dy := b.Lat - a.Lat
		return math.Sqrt(dx*dx + dy*dy)
	}
	return orbgeo.DistanceHaversine(
		orb.Point{a.Lng, a.Lat},
		orb.Point{b.Lng, b.Lat},
	)
}

// mercatorTransformation shifts the projected origin to the top-left
// corner of the world and normalizes the extent to [0, 1].
var mercatorTransformation = Transformation{
	A: 0.5 / (math.Pi * EarthRadius),
	B: 0.5,
	C: -0.5 / (math.Pi * EarthRadius),
	D: 0.5,
}

var wrapLng = [2]float64{-180, 180}

// EPSG3857 is the spherical Mercator system used by OpenStreetMap and
// nearly every commercial tile provider.
var EPSG3857 = &CRS{
	Code:           "EPSG:3857",
	Projection:     SphericalMercator{},
	Transformation: mercatorTransformation,
	WrapLng:        &wrapLng,
}

// EPSG900913 is the legacy alias some older servers use for EPSG:3857.
var EPSG900913 = &CRS{
	Code:           "EPSG:900913",
	Projection:     SphericalMercator{},
	Transformation: mercatorTransformation,
	WrapLng:        &wrapLng,
}

// EPSG4326 maps longitude and latitude directly onto the pixel grid.
// The world is twice as wide as it is tall.
var EPSG4326 = &CRS{
	Code:           "EPSG:4326",
	Projection:     LonLat{},
	Transformation: Transformation{A: 1.0 / 180, B: 1, C: -1.0 / 180, D: 0.5},
	WrapLng:        &wrapLng,
}

// Simple is a flat system for non-geographic imagery such as game maps
// and floor plans. Coordinates pass through unscaled, the world does
// not wrap and has no edges, and one map unit equals one pixel at zoom
// zero.
var Simple = &CRS{
	Code:           "Simple",
	Projection:     LonLat{},
	Transformation: Transformation{A: 1, B: 0, C: -1, D: 0},
	Infinite:       true,
	BaseScale:      1,
	Flat:           true,
}
