package mapview

import "github.com/OpticalFlyer/atlas/geo"

// Project converts a geographic position to absolute pixel coordinates
// at the given zoom.
func (m *Map) Project(ll geo.LatLng, zoom float64) geo.Point {
	return m.crs.LatLngToPoint(ll, zoom)
}

// Unproject converts absolute pixel coordinates at the given zoom back
// to a geographic position.
func (m *Map) Unproject(p geo.Point, zoom float64) geo.LatLng {
	return m.crs.PointToLatLng(p, zoom)
}

// LatLngToLayerPoint converts a geographic position to pixel
// coordinates relative to the pixel origin.
func (m *Map) LatLngToLayerPoint(ll geo.LatLng) geo.Point {
	projected := m.Project(ll, m.zoom).Round()
	return projected.Sub(m.pixelOrigin)
}

// LayerPointToLatLng converts origin-relative pixel coordinates back
// to a geographic position.
func (m *Map) LayerPointToLatLng(p geo.Point) geo.LatLng {
	return m.Unproject(p.Add(m.pixelOrigin), m.zoom)
}

// LayerPointToContainerPoint converts origin-relative coordinates to
// viewport coordinates. This renderer applies no extra pane offset, so
// the two spaces coincide; the method exists so call sites state which
// space they mean.
func (m *Map) LayerPointToContainerPoint(p geo.Point) geo.Point {
	return p
}

// ContainerPointToLayerPoint is the inverse of
// LayerPointToContainerPoint.
func (m *Map) ContainerPointToLayerPoint(p geo.Point) geo.Point {
	return p
}

// LatLngToContainerPoint converts a geographic position to viewport
// coordinates with (0, 0) at the top-left corner.
func (m *Map) LatLngToContainerPoint(ll geo.LatLng) geo.Point {
	return m.LayerPointToContainerPoint(m.LatLngToLayerPoint(ll))
}

// ContainerPointToLatLng converts viewport coordinates back to a
// geographic position.
func (m *Map) ContainerPointToLatLng(p geo.Point) geo.LatLng {
	return m.LayerPointToLatLng(m.ContainerPointToLayerPoint(p))
}

// PixelBounds returns the absolute pixel rectangle the viewport covers
// at the current zoom.
func (m *Map) PixelBounds() geo.Bounds {
	return geo.NewBounds(m.pixelOrigin, m.pixelOrigin.Add(m.size))
}

// Bounds returns the geographic rectangle the viewport covers, or
// ErrViewNotSet before the first SetView.
func (m *Map) Bounds() (geo.LatLngBounds, error) {
	if !m.loaded {
		return geo.LatLngBounds{}, ErrViewNotSet
	}
	px := m.PixelBounds()
	sw := m.Unproject(geo.Pt(px.Min.X, px.Max.Y), m.zoom)
	ne := m.Unproject(geo.Pt(px.Max.X, px.Min.Y), m.zoom)
	return geo.NewLatLngBounds(sw, ne), nil
}
