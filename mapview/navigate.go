package mapview

import (
	"errors"
	"math"
	"time"

	"github.com/OpticalFlyer/atlas/anim"
	"github.com/OpticalFlyer/atlas/geo"
)

// ErrInvalidBounds reports an empty LatLngBounds passed to a fitting
// operation.
var ErrInvalidBounds = errors.New("mapview: invalid bounds")

// PanBy shifts the view by the given pixel offset: positive x moves
// the view east, positive y moves it south. The move is immediate;
// call EndMove when the gesture driving it settles.
func (m *Map) PanBy(offset geo.Point) error {
	if !m.loaded {
		return ErrViewNotSet
	}
	if offset.Equals(geo.Pt(0, 0)) {
		return nil
	}

	centerPx := m.Project(m.center, m.zoom).Add(offset)
	center := m.limitCenter(m.Unproject(centerPx, m.zoom), m.zoom)

	m.moveStart(false)
	m.move(center, m.zoom, false, false)
	return nil
}

// SetZoomAround changes the zoom immediately while keeping the
// geographic point under the given viewport position fixed, the way a
// pinch gesture does. The zoom range is enforced but snapping is not,
// so continuous gestures stay smooth; settle to a snapped level with
// AnimateZoom or SetView when the gesture ends.
func (m *Map) SetZoomAround(anchor geo.Point, zoom float64) error {
	if !m.loaded {
		return ErrViewNotSet
	}

	zoom = math.Max(m.opts.MinZoom, math.Min(m.opts.MaxZoom, zoom))
	if zoom == m.zoom {
		return nil
	}
	center := m.limitCenter(m.anchoredCenter(anchor, zoom), zoom)

	m.moveStart(true)
	m.move(center, zoom, true, false)
	return nil
}

// EndMove settles the current gesture, firing the end events and
// letting layers run their settle work. It is a no-op while no gesture
// is active.
func (m *Map) EndMove() {
	if !m.loaded || !m.moving {
		return
	}
	m.moveEnd(m.zoom != m.gestureStartZoom)
}

// AnimateZoom starts an animated zoom to the given level. A nil anchor
// zooms around the view center; otherwise the geographic point under
// the anchor stays fixed, keeping the cursor position stable during
// wheel zooms. Jumps beyond ZoomAnimationThreshold, and maps with
// animation disabled, fall back to an immediate SetView.
func (m *Map) AnimateZoom(zoom float64, anchor *geo.Point) error {
	if !m.loaded {
		return ErrViewNotSet
	}

	zoom = m.limitZoom(zoom)
	a := m.size.DivBy(2)
	if anchor != nil {
		a = *anchor
	}

	if !m.opts.ZoomAnimation || math.Abs(zoom-m.zoom) > m.opts.ZoomAnimationThreshold {
		center := m.limitCenter(m.anchoredCenter(a, zoom), zoom)
		return m.SetView(center, zoom)
	}
	if zoom == m.zoom && !m.zoomAnimActive {
		return nil
	}

	// Retargeting a running animation restarts it from the current
	// fractional state, so rapid wheel steps chain smoothly.
	m.panAnimActive = false
	m.zoomAnimActive = true
	m.zoomFrom = m.zoom
	m.zoomTo = zoom
	m.zoomAnchorLL = m.ContainerPointToLatLng(a)
	m.zoomAnchorOff = a.Sub(m.size.DivBy(2))
	m.zoomTarget = m.limitCenter(m.anchoredCenter(a, zoom), zoom)
	m.zoomClock = anim.Animation{Duration: zoomAnimDuration}
	m.zoomClock.Start(time.Now())

	m.moveStart(true)
	target := ViewEvent{Center: m.zoomTarget, Zoom: zoom}
	for _, e := range m.snapshotLayers() {
		e.layer.OnZoomAnim(target)
	}
	return nil
}

// ZoomIn zooms in by the configured ZoomDelta.
func (m *Map) ZoomIn() error {
	return m.AnimateZoom(m.zoom+m.opts.ZoomDelta, nil)
}

// ZoomOut zooms out by the configured ZoomDelta.
func (m *Map) ZoomOut() error {
	return m.AnimateZoom(m.zoom-m.opts.ZoomDelta, nil)
}

// ZoomTo animates the zoom to the given level about the view center.
func (m *Map) ZoomTo(zoom float64) error {
	return m.AnimateZoom(zoom, nil)
}

// PanTo animates the center to the given position at the current
// zoom.
func (m *Map) PanTo(center geo.LatLng) error {
	if !m.loaded {
		return ErrViewNotSet
	}
	if err := center.Check(); err != nil {
		return err
	}

	center = m.limitCenter(center, m.zoom)
	if center.Equals(m.center, 0) {
		return nil
	}

	m.zoomAnimActive = false
	m.panAnimActive = true
	m.panFrom = m.Project(m.center, m.zoom)
	m.panTo = m.Project(center, m.zoom)
	m.panTargetLL = center
	m.panClock = anim.Animation{Duration: panAnimDuration}
	m.panClock.Start(time.Now())

	m.moveStart(false)
	return nil
}

// anchoredCenter returns the center that keeps the geographic point
// under the given viewport position fixed when the zoom changes to
// targetZoom.
func (m *Map) anchoredCenter(anchor geo.Point, targetZoom float64) geo.LatLng {
	anchorLL := m.ContainerPointToLatLng(anchor)
	offset := anchor.Sub(m.size.DivBy(2))
	centerPx := m.Project(anchorLL, targetZoom).Sub(offset)
	return m.Unproject(centerPx, targetZoom)
}

func (m *Map) stepZoomAnimation(now time.Time) {
	if !m.zoomAnimActive {
		return
	}

	t := m.zoomClock.Progress(now)
	if t >= 1 {
		m.zoomAnimActive = false
		m.zoomClock.Stop()
		m.move(m.zoomTarget, m.zoomTo, false, true)
		m.moveEnd(true)
		return
	}

	z := m.zoomFrom + (m.zoomTo-m.zoomFrom)*anim.EaseOut(t)
	centerPx := m.Project(m.zoomAnchorLL, z).Sub(m.zoomAnchorOff)
	m.move(m.Unproject(centerPx, z), z, true, false)
}

func (m *Map) stepPanAnimation(now time.Time) {
	if !m.panAnimActive {
		return
	}

	t := m.panClock.Progress(now)
	if t >= 1 {
		m.panAnimActive = false
		m.panClock.Stop()
		m.move(m.panTargetLL, m.zoom, false, false)
		m.moveEnd(false)
		return
	}

	e := anim.EaseOut(t)
	px := geo.Pt(
		m.panFrom.X+(m.panTo.X-m.panFrom.X)*e,
		m.panFrom.Y+(m.panTo.Y-m.panFrom.Y)*e,
	)
	m.move(m.Unproject(px, m.zoom), m.zoom, false, false)
}

// GetBoundsZoom returns the highest zoom at which the given geographic
// rectangle fits the viewport, shrunk by padding pixels. With inside
// set the sense inverts: the lowest zoom at which the view lies
// entirely within the rectangle.
func (m *Map) GetBoundsZoom(bounds geo.LatLngBounds, inside bool, padding geo.Point) (float64, error) {
	if !bounds.IsValid() {
		return 0, ErrInvalidBounds
	}

	size := m.size.Sub(padding)
	ref := m.zoom
	boundsSize := geo.NewBounds(
		m.Project(bounds.SouthEast(), ref),
		m.Project(bounds.NorthWest(), ref),
	).Size()

	scaleX := size.X / boundsSize.X
	scaleY := size.Y / boundsSize.Y
	scale := math.Min(scaleX, scaleY)
	if inside {
		scale = math.Max(scaleX, scaleY)
	}

	zoom := m.scaleZoom(scale, ref)
	if snap := m.opts.ZoomSnap; snap > 0 {
		// Tolerate being within 1% of a snap step before rounding
		// down, so a view that already fits does not lose a level.
		zoom = math.Round(zoom/(snap/100)) * (snap / 100)
		if inside {
			zoom = math.Ceil(zoom/snap) * snap
		} else {
			zoom = math.Floor(zoom/snap) * snap
		}
	}
	return math.Max(m.opts.MinZoom, math.Min(m.opts.MaxZoom, zoom)), nil
}

// FitBounds jumps the view to the tightest zoom that shows the whole
// rectangle, with padding pixels kept clear on every side.
func (m *Map) FitBounds(bounds geo.LatLngBounds, padding geo.Point) error {
	if !bounds.IsValid() {
		return ErrInvalidBounds
	}

	zoom, err := m.GetBoundsZoom(bounds, false, padding.MulBy(2))
	if err != nil {
		return err
	}

	swPx := m.Project(bounds.SouthWest(), zoom)
	nePx := m.Project(bounds.NorthEast(), zoom)
	center := m.Unproject(swPx.Add(nePx).DivBy(2), zoom)
	return m.SetView(center, zoom)
}

// scaleZoom converts a linear scale factor relative to fromZoom into
// the zoom level producing it.
func (m *Map) scaleZoom(scale, fromZoom float64) float64 {
	return m.crs.Zoom(scale * m.crs.Scale(fromZoom))
}
