// Package mapview implements the interactive viewport: it owns the
// center, zoom and pixel origin, converts between geographic and
// screen coordinates, and drives registered layers through explicit
// lifecycle hooks and a per-frame Tick. All methods must be called
// from a single goroutine, normally the game loop.
package mapview

import (
	"errors"
	"math"
	"time"

	"github.com/OpticalFlyer/atlas/anim"
	"github.com/OpticalFlyer/atlas/event"
	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/proj"
)

// ErrViewNotSet reports a view query before the first SetView.
var ErrViewNotSet = errors.New("mapview: view not set")

const (
	zoomAnimDuration = 250 * time.Millisecond
	panAnimDuration  = 250 * time.Millisecond
)

// Map is the viewport. The zero value is not usable; construct with
// New.
type Map struct {
	opts   Options
	crs    *proj.CRS
	events *event.Emitter

	// View state
	size        geo.Point
	center      geo.LatLng
	zoom        float64
	pixelOrigin geo.Point
	loaded      bool

	// Gesture state
	moving           bool
	zooming          bool
	gestureStartZoom float64

	// Layer registry
	layers []layerEntry

	// Zoom animation state
	zoomAnimActive bool
	zoomClock      anim.Animation
	zoomFrom       float64
	zoomTo         float64
	zoomAnchorLL   geo.LatLng
	zoomAnchorOff  geo.Point
	zoomTarget     geo.LatLng

	// Pan animation state
	panAnimActive bool
	panClock      anim.Animation
	panFrom       geo.Point
	panTo         geo.Point
	panTargetLL   geo.LatLng
}

// New creates a map with the given options. The map has no view until
// SetView establishes one.
func New(opts Options) (*Map, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.CRS == nil {
		opts.CRS = proj.EPSG3857
	}
	if opts.ZoomAnimationThreshold == 0 {
		opts.ZoomAnimationThreshold = 4
	}
	if opts.ZoomDelta == 0 {
		opts.ZoomDelta = 1
	}

	return &Map{
		opts:   opts,
		crs:    opts.CRS,
		events: event.NewEmitter(),
		size:   geo.Pt(float64(opts.Width), float64(opts.Height)),
	}, nil
}

// Events returns the map's event emitter.
func (m *Map) Events() *event.Emitter {
	return m.events
}

// CRS returns the coordinate reference system the map was built with.
func (m *Map) CRS() *proj.CRS {
	return m.crs
}

// Options returns a copy of the effective options.
func (m *Map) Options() Options {
	return m.opts
}

// Loaded reports whether a view has been established.
func (m *Map) Loaded() bool {
	return m.loaded
}

// Size returns the viewport size in pixels.
func (m *Map) Size() geo.Point {
	return m.size
}

// PixelOrigin returns the absolute pixel coordinates of the reference
// point all layer coordinates are relative to. It is recomputed on
// every view change as round(project(center) - size/2).
func (m *Map) PixelOrigin() geo.Point {
	return m.pixelOrigin
}

// View returns the current center and zoom. The result is only
// meaningful once Loaded reports true; use Center and Zoom for the
// checked variants.
func (m *Map) View() (geo.LatLng, float64) {
	return m.center, m.zoom
}

// Center returns the current center, or ErrViewNotSet before the
// first SetView.
func (m *Map) Center() (geo.LatLng, error) {
	if !m.loaded {
		return geo.LatLng{}, ErrViewNotSet
	}
	return m.center, nil
}

// Zoom returns the current zoom level, or ErrViewNotSet before the
// first SetView.
func (m *Map) Zoom() (float64, error) {
	if !m.loaded {
		return 0, ErrViewNotSet
	}
	return m.zoom, nil
}

// MinZoom returns the lower zoom limit.
func (m *Map) MinZoom() float64 {
	return m.opts.MinZoom
}

// MaxZoom returns the upper zoom limit.
func (m *Map) MaxZoom() float64 {
	return m.opts.MaxZoom
}

// FadeAnimation reports whether layers should fade tiles in.
func (m *Map) FadeAnimation() bool {
	return m.opts.FadeAnimation
}

// AnimatingZoom returns the target zoom of a running zoom animation.
func (m *Map) AnimatingZoom() (float64, bool) {
	if !m.zoomAnimActive {
		return 0, false
	}
	return m.zoomTo, true
}

// ZoomScale returns the linear scale factor between two zoom levels:
// how much larger the world is at toZoom than at fromZoom.
func (m *Map) ZoomScale(toZoom, fromZoom float64) float64 {
	return m.crs.Scale(toZoom) / m.crs.Scale(fromZoom)
}

// SetView jumps the map to the given center and zoom, applying the
// zoom limits, zoom snapping and MaxBounds. The first call establishes
// the view and fires EventLoad.
func (m *Map) SetView(center geo.LatLng, zoom float64) error {
	if err := center.Check(); err != nil {
		return err
	}

	m.stopAnimations()

	zoom = m.limitZoom(zoom)
	center = m.limitCenter(center, zoom)

	loading := !m.loaded
	m.loaded = true

	zoomChanged := loading || zoom != m.zoom
	m.moveStart(zoomChanged)
	m.move(center, zoom, false, true)
	m.moveEnd(zoomChanged)

	if loading {
		m.events.Fire(EventLoad, ViewEvent{Center: center, Zoom: zoom})
	}
	return nil
}

// SetSize changes the viewport size, keeping the current center
// fixed.
func (m *Map) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	newSize := geo.Pt(float64(width), float64(height))
	if newSize.Equals(m.size) {
		return
	}

	old := m.size
	m.size = newSize
	m.events.Fire(EventResize, ResizeEvent{Old: old, New: newSize})

	if m.loaded {
		m.move(m.center, m.zoom, false, false)
		m.moveEnd(false)
	}
}

// Tick advances animations and all layers by one frame. now should be
// the frame timestamp. The first layer error aborts the pass and is
// returned.
func (m *Map) Tick(now time.Time) error {
	m.stepZoomAnimation(now)
	m.stepPanAnimation(now)

	var firstErr error
	for _, e := range m.snapshotLayers() {
		if err := e.layer.Tick(now); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// moveStart opens a view transition.
func (m *Map) moveStart(zoomChanged bool) {
	if zoomChanged && !m.zooming {
		m.zooming = true
		m.events.Fire(EventZoomStart, ViewEvent{Center: m.center, Zoom: m.zoom})
	}
	if !m.moving {
		m.moving = true
		m.gestureStartZoom = m.zoom
		m.events.Fire(EventMoveStart, ViewEvent{Center: m.center, Zoom: m.zoom})
	}
}

// move commits a new center and zoom and notifies layers. animating
// marks fractional steps of a zoom gesture or animation; forceReset
// runs the view-reset path even when the zoom is unchanged, as
// discrete jumps do.
func (m *Map) move(center geo.LatLng, zoom float64, animating, forceReset bool) {
	zoomChanged := zoom != m.zoom

	m.center = center
	m.zoom = zoom
	m.pixelOrigin = m.newPixelOrigin(center, zoom)

	view := ViewEvent{Center: center, Zoom: zoom}
	if zoomChanged {
		m.events.Fire(EventZoom, view)
	}
	// Frames of a running zoom animation skip layer resets: layers were
	// already pointed at the target by OnZoomAnim and rebuild on settle.
	if (zoomChanged && !m.zoomAnimActive) || forceReset {
		for _, e := range m.snapshotLayers() {
			e.layer.OnViewReset(animating)
		}
		if forceReset {
			m.events.Fire(EventViewReset, view)
		}
	}

	m.events.Fire(EventMove, view)
	for _, e := range m.snapshotLayers() {
		e.layer.OnMove()
	}
}

// moveEnd closes a view transition.
func (m *Map) moveEnd(zoomChanged bool) {
	view := ViewEvent{Center: m.center, Zoom: m.zoom}
	if zoomChanged {
		m.events.Fire(EventZoomEnd, view)
	}
	m.zooming = false
	for _, e := range m.snapshotLayers() {
		e.layer.OnMoveEnd()
	}
	m.moving = false
	m.events.Fire(EventMoveEnd, view)
}

func (m *Map) newPixelOrigin(center geo.LatLng, zoom float64) geo.Point {
	viewHalf := m.size.DivBy(2)
	return m.Project(center, zoom).Sub(viewHalf).Round()
}

// limitZoom clamps zoom to [MinZoom, MaxZoom] and snaps it to the
// nearest ZoomSnap multiple, keeping the result within the limits.
func (m *Map) limitZoom(zoom float64) float64 {
	zoom = math.Max(m.opts.MinZoom, math.Min(m.opts.MaxZoom, zoom))
	if snap := m.opts.ZoomSnap; snap > 0 {
		zoom = math.Round(zoom/snap) * snap
		zoom = math.Max(m.opts.MinZoom, math.Min(m.opts.MaxZoom, zoom))
	}
	return zoom
}

// limitCenter nudges center so the viewport stays inside MaxBounds at
// the given zoom. Offsets that round to less than one pixel leave the
// center untouched, avoiding jitter at the edges.
func (m *Map) limitCenter(center geo.LatLng, zoom float64) geo.LatLng {
	if m.opts.MaxBounds == nil || !m.opts.MaxBounds.IsValid() {
		return center
	}

	centerPoint := m.Project(center, zoom)
	viewHalf := m.size.DivBy(2)
	viewBounds := geo.NewBounds(centerPoint.Sub(viewHalf), centerPoint.Add(viewHalf))
	offset := m.boundsOffset(viewBounds, *m.opts.MaxBounds, zoom)

	if offset.Round().Equals(geo.Pt(0, 0)) {
		return center
	}
	return m.Unproject(centerPoint.Add(offset), zoom)
}

// boundsOffset returns the smallest pixel shift that brings pxBounds
// inside the projection of maxBounds at the given zoom.
func (m *Map) boundsOffset(pxBounds geo.Bounds, maxBounds geo.LatLngBounds, zoom float64) geo.Point {
	projected := geo.NewBounds(
		m.Project(maxBounds.NorthWest(), zoom),
		m.Project(maxBounds.SouthEast(), zoom),
	)
	minOffset := projected.Min.Sub(pxBounds.Min)
	maxOffset := projected.Max.Sub(pxBounds.Max)

	return geo.Pt(
		rebound(minOffset.X, -maxOffset.X),
		rebound(minOffset.Y, -maxOffset.Y),
	)
}

// rebound resolves the one-dimensional shift from the overshoot past
// each edge, positive when that edge is violated. When both edges are
// violated the view is larger than the bounds and the shift centers it;
// otherwise it pushes just far enough to clear the violated edge.
func rebound(left, right float64) float64 {
	if left+right > 0 {
		return math.Round(left-right) / 2
	}
	return math.Max(0, math.Ceil(left)) - math.Max(0, math.Floor(right))
}

func (m *Map) stopAnimations() {
	if m.zoomAnimActive {
		m.zoomAnimActive = false
		m.zoomClock.Stop()
	}
	if m.panAnimActive {
		m.panAnimActive = false
		m.panClock.Stop()
	}
}
