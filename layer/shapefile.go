package layer

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/OpticalFlyer/atlas/geo"
)

// LoadShapefile reads a shapefile and converts its features into
// overlays: point shapes become markers, arcs become polylines and
// polygon shapes become polygons with their holes attached. Z and M
// variants load with the extra dimensions dropped.
func LoadShapefile(path string, style Style) ([]Overlay, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile %s failed: %w", path, err)
	}
	defer r.Close()

	var overlays []Overlay
	for r.Next() {
		_, s := r.Shape()
		switch s := s.(type) {
		case *shp.Point:
			overlays = append(overlays, markerAt(s.X, s.Y))
		case *shp.PointZ:
			overlays = append(overlays, markerAt(s.X, s.Y))
		case *shp.PointM:
			overlays = append(overlays, markerAt(s.X, s.Y))
		case *shp.MultiPoint:
			for _, p := range s.Points {
				overlays = append(overlays, markerAt(p.X, p.Y))
			}
		case *shp.PolyLine:
			overlays = append(overlays, polylineParts(s.Parts, s.Points, style)...)
		case *shp.PolyLineZ:
			overlays = append(overlays, polylineParts(s.Parts, s.Points, style)...)
		case *shp.PolyLineM:
			overlays = append(overlays, polylineParts(s.Parts, s.Points, style)...)
		case *shp.Polygon:
			overlays = append(overlays, polygonParts(s.Parts, s.Points, style)...)
		case *shp.PolygonZ:
			overlays = append(overlays, polygonParts(s.Parts, s.Points, style)...)
		case *shp.PolygonM:
			overlays = append(overlays, polygonParts(s.Parts, s.Points, style)...)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile %s failed: %w", path, err)
	}
	return overlays, nil
}

func markerAt(x, y float64) *Marker {
	return NewMarker(geo.LatLng{Lat: y, Lng: x}, nil, geo.Point{})
}

// splitParts cuts a shape's flat point list into its parts.
func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	if len(points) == 0 {
		return nil
	}
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) >= end {
			continue
		}
		part := make([]orb.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}

func polylineParts(parts []int32, points []shp.Point, style Style) []Overlay {
	var out []Overlay
	for _, part := range splitParts(parts, points) {
		if len(part) < 2 {
			continue
		}
		out = append(out, NewPolyline(orb.LineString(part), style))
	}
	return out
}

func polygonParts(parts []int32, points []shp.Point, style Style) []Overlay {
	var out []Overlay
	var current *Polygon
	for _, part := range splitParts(parts, points) {
		if len(part) < 3 {
			continue
		}
		ring := orb.Ring(part)
		// Shapefile outer rings wind clockwise, holes the other way.
		if signedArea(ring) < 0 || current == nil {
			current = NewPolygon(orb.Polygon{ring}, style)
			out = append(out, current)
		} else {
			current.Rings = append(current.Rings, ring)
		}
	}
	return out
}

func signedArea(r orb.Ring) float64 {
	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}
