package layer

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
)

// clipPad grows the clip window past the viewport so strokes cut at
// the edge keep their joins off screen.
const clipPad = 0.1

// Path is an overlay projected to viewport pixels, ready to stroke or
// fill. For closed paths ring 0 is the outer boundary and later rings
// are holes; the closing segment is implied, not repeated.
type Path struct {
	Rings  [][]geo.Point
	Closed bool
	Style  Style
}

// ScreenCircle is a circle projected to viewport pixels.
type ScreenCircle struct {
	Center geo.Point
	Radius float64
	Style  Style
}

// ScreenMarker is a marker projected to viewport pixels.
type ScreenMarker struct {
	Pos    geo.Point
	Image  *ebiten.Image
	Anchor geo.Point
}

// VectorLayer holds overlays and projects the visible ones to the
// screen. It implements mapview.Layer; overlays re-project from the
// live view each frame, so no work happens in the view hooks.
type VectorLayer struct {
	mapview.BaseLayer

	mv          *mapview.Map
	overlays    []Overlay
	attribution string
}

var _ mapview.Layer = (*VectorLayer)(nil)

func NewVectorLayer() *VectorLayer {
	return &VectorLayer{}
}

// OnAdd starts tracking the map's view.
func (v *VectorLayer) OnAdd(m *mapview.Map) { v.mv = m }

// OnRemove detaches from the map.
func (v *VectorLayer) OnRemove(*mapview.Map) { v.mv = nil }

// Add appends overlays in draw order.
func (v *VectorLayer) Add(overlays ...Overlay) {
	v.overlays = append(v.overlays, overlays...)
}

// Remove drops an overlay; unknown overlays are ignored.
func (v *VectorLayer) Remove(o Overlay) {
	for i, existing := range v.overlays {
		if existing == o {
			v.overlays = append(v.overlays[:i:i], v.overlays[i+1:]...)
			return
		}
	}
}

// Len returns the number of overlays held.
func (v *VectorLayer) Len() int { return len(v.overlays) }

// SetAttribution sets the credit line reported for this layer's data.
func (v *VectorLayer) SetAttribution(s string) { v.attribution = s }

// Attribution returns the credit line for this layer's data.
func (v *VectorLayer) Attribution() string { return v.attribution }

// ScreenPaths projects the visible polylines and polygons to viewport
// pixels, clipped to a slightly padded view.
func (v *VectorLayer) ScreenPaths() []Path {
	bound, ok := v.clipBound()
	if !ok {
		return nil
	}

	var out []Path
	for _, o := range v.overlays {
		switch o := o.(type) {
		case *Polyline:
			clipped := clip.Geometry(bound, o.Line)
			if clipped == nil {
				continue
			}
			switch g := clipped.(type) {
			case orb.LineString:
				out = append(out, Path{Rings: [][]geo.Point{v.projectLine(g)}, Style: o.Style})
			case orb.MultiLineString:
				for _, ls := range g {
					out = append(out, Path{Rings: [][]geo.Point{v.projectLine(ls)}, Style: o.Style})
				}
			}
		case *Polygon:
			clipped := clip.Geometry(bound, o.Rings)
			if clipped == nil {
				continue
			}
			switch g := clipped.(type) {
			case orb.Polygon:
				out = append(out, v.projectPolygon(g, o.Style))
			case orb.MultiPolygon:
				for _, p := range g {
					out = append(out, v.projectPolygon(p, o.Style))
				}
			}
		}
	}
	return out
}

// ScreenCircles projects the visible circles to viewport pixels.
func (v *VectorLayer) ScreenCircles() []ScreenCircle {
	if v.mv == nil || !v.mv.Loaded() {
		return nil
	}
	view := geo.NewBounds(geo.Pt(0, 0), v.mv.Size())

	var out []ScreenCircle
	for _, o := range v.overlays {
		c, ok := o.(*Circle)
		if !ok {
			continue
		}
		center := v.mv.LatLngToContainerPoint(c.Center)
		radius := v.circleRadiusPx(c)
		extent := radius + float64(c.Style.StrokeWidth)
		covered := geo.NewBounds(
			center.Sub(geo.Pt(extent, extent)),
			center.Add(geo.Pt(extent, extent)),
		)
		if !view.Intersects(covered) {
			continue
		}
		out = append(out, ScreenCircle{Center: center, Radius: radius, Style: c.Style})
	}
	return out
}

// ScreenMarkers projects the visible markers to viewport pixels.
func (v *VectorLayer) ScreenMarkers() []ScreenMarker {
	if v.mv == nil || !v.mv.Loaded() {
		return nil
	}
	view := geo.NewBounds(geo.Pt(0, 0), v.mv.Size()).Pad(0.25)

	var out []ScreenMarker
	for _, o := range v.overlays {
		m, ok := o.(*Marker)
		if !ok {
			continue
		}
		pos := v.mv.LatLngToContainerPoint(m.Position)
		if !view.Contains(pos) {
			continue
		}
		out = append(out, ScreenMarker{Pos: pos, Image: m.Image, Anchor: m.Anchor})
	}
	return out
}

func (v *VectorLayer) clipBound() (orb.Bound, bool) {
	if v.mv == nil || !v.mv.Loaded() {
		return orb.Bound{}, false
	}
	b, err := v.mv.Bounds()
	if err != nil {
		return orb.Bound{}, false
	}
	b = b.Pad(clipPad)
	return orb.Bound{
		Min: orb.Point{b.West(), b.South()},
		Max: orb.Point{b.East(), b.North()},
	}, true
}

func (v *VectorLayer) projectLine(ls orb.LineString) []geo.Point {
	pts := make([]geo.Point, len(ls))
	for i, p := range ls {
		pts[i] = v.mv.LatLngToContainerPoint(geo.LatLng{Lat: p[1], Lng: p[0]})
	}
	return pts
}

func (v *VectorLayer) projectPolygon(p orb.Polygon, style Style) Path {
	rings := make([][]geo.Point, 0, len(p))
	for _, r := range p {
		// Rings arrive with the first position repeated at the end;
		// the closing segment is implied on screen.
		if len(r) > 1 && r[0] == r[len(r)-1] {
			r = r[:len(r)-1]
		}
		rings = append(rings, v.projectLine(orb.LineString(r)))
	}
	return Path{Rings: rings, Closed: true, Style: style}
}

// circleRadiusPx converts a circle's ground radius to pixels by
// projecting a second point that far north of the center.
func (v *VectorLayer) circleRadiusPx(c *Circle) float64 {
	deltaLat := c.Radius
	if !v.mv.CRS().Flat {
		deltaLat = c.Radius / orb.EarthRadius * (180 / math.Pi)
	}
	_, zoom := v.mv.View()
	center := v.mv.Project(c.Center, zoom)
	top := v.mv.Project(geo.LatLng{Lat: c.Center.Lat + deltaLat, Lng: c.Center.Lng}, zoom)
	return math.Abs(center.Y - top.Y)
}
