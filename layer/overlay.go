// Package layer provides vector overlays: polylines, polygons, circles
// and markers positioned in geographic space, collected in a VectorLayer
// that projects them to viewport pixels each frame. Drawing is left to
// the render package.
package layer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"

	"github.com/OpticalFlyer/atlas/geo"
)

// Style controls how an overlay is drawn. A zero-alpha fill leaves the
// shape unfilled.
type Style struct {
	StrokeColor color.RGBA
	StrokeWidth float32
	FillColor   color.RGBA
}

// DefaultStyle returns the familiar web-map blue.
func DefaultStyle() Style {
	return Style{
		StrokeColor: color.RGBA{R: 0x33, G: 0x88, B: 0xff, A: 0xff},
		StrokeWidth: 3,
		FillColor:   color.RGBA{R: 0x33, G: 0x88, B: 0xff, A: 0x33},
	}
}

// Overlay is anything a VectorLayer can hold.
type Overlay interface {
	overlay()
}

// Polyline is an open path through geographic positions, stored as
// longitude/latitude pairs.
type Polyline struct {
	Line  orb.LineString
	Style Style
}

func NewPolyline(line orb.LineString, style Style) *Polyline {
	return &Polyline{Line: line, Style: style}
}

func (*Polyline) overlay() {}

// Polygon is a closed area. Ring 0 is the outer boundary, later rings
// cut holes.
type Polygon struct {
	Rings orb.Polygon
	Style Style
}

func NewPolygon(rings orb.Polygon, style Style) *Polygon {
	return &Polygon{Rings: rings, Style: style}
}

func (*Polygon) overlay() {}

// Circle is a circle of fixed ground radius. On earth systems Radius is
// meters; on flat systems it is map units.
type Circle struct {
	Center geo.LatLng
	Radius float64
	Style  Style
}

func NewCircle(center geo.LatLng, radius float64, style Style) *Circle {
	return &Circle{Center: center, Radius: radius, Style: style}
}

func (*Circle) overlay() {}

// Marker pins an image to a position. Anchor is the pixel inside the
// image that sits on the position, e.g. the tip of a pin. A nil image
// draws as a plain dot.
type Marker struct {
	Position geo.LatLng
	Image    *ebiten.Image
	Anchor   geo.Point
}

func NewMarker(pos geo.LatLng, img *ebiten.Image, anchor geo.Point) *Marker {
	return &Marker{Position: pos, Image: img, Anchor: anchor}
}

func (*Marker) overlay() {}
