package tilemap

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/OpticalFlyer/atlas/anim"
	"github.com/OpticalFlyer/atlas/event"
	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
	"github.com/OpticalFlyer/atlas/proj"
)

// fadeDuration is how long a freshly loaded tile takes to become
// fully opaque.
const fadeDuration = 200 * time.Millisecond

const (
	retainParentDepth = 5
	retainChildDepth  = 2
)

// Element is whatever a Source produces for one tile, typically a
// decoded image or a GPU texture wrapper. Elements must be comparable
// (pointers are typical): the layer matches completions to tiles by
// identity.
type Element any

// DoneFunc reports the outcome of a tile load. Sources may call it
// from any goroutine, and may call it again after an error to deliver
// a late replacement. A nil error with a nil element is a valid empty
// tile.
type DoneFunc func(err error, el Element)

// Source produces tile elements. CreateTile must return promptly and
// deliver its result through done; ctx is cancelled when the layer no
// longer wants the tile, in which case done may be skipped entirely.
type Source interface {
	CreateTile(ctx context.Context, coords TileCoord, done DoneFunc) Element
	Dispose(el Element)
}

// Tile is one cell of the grid.
type Tile struct {
	Coords  TileCoord
	Element Element

	// Pos is the tile's pixel position relative to its level origin.
	Pos geo.Point

	// Current marks tiles inside the present view; stale tiles keep
	// drawing until pruned. Active means the tile has finished fading
	// in and can shadow its ancestors.
	Current bool
	Active  bool

	// LoadedAt is zero until the load finishes (with or without an
	// error). Opacity ramps from 0 to 1 over fadeDuration once it is
	// set.
	LoadedAt time.Time
	Opacity  float64

	retain bool
	cancel context.CancelFunc
}

// Loaded reports whether the tile's load has finished, successfully
// or not.
func (t *Tile) Loaded() bool {
	return !t.LoadedAt.IsZero()
}

// Level is one zoom plane of tiles. Draw levels in ascending ZIndex
// order so the current zoom lands on top.
type Level struct {
	Zoom   int
	Origin geo.Point
	ZIndex int

	count int
}

// MapView is the slice of the map the tile layer needs. *mapview.Map
// satisfies it.
type MapView interface {
	CRS() *proj.CRS
	Size() geo.Point
	View() (geo.LatLng, float64)
	PixelOrigin() geo.Point
	Project(ll geo.LatLng, zoom float64) geo.Point
	Unproject(p geo.Point, zoom float64) geo.LatLng
	ZoomScale(toZoom, fromZoom float64) float64
	AnimatingZoom() (float64, bool)
	FadeAnimation() bool
	Loaded() bool
}

var _ MapView = (*mapview.Map)(nil)

type completion struct {
	coords TileCoord
	err    error
	el     Element
}

// TileLayer keeps the grid of tiles covering the map view in sync as
// the view moves. It implements mapview.Layer; all of its methods must
// be called from the goroutine that ticks the map.
type TileLayer struct {
	opts   Options
	source Source
	events *event.Emitter
	mv     MapView

	// Grid state
	levels      map[int]*Level
	tiles       map[string]*Tile
	tileZoom    int
	hasTileZoom bool
	globalRange *TileRange
	wrapX       *[2]int
	wrapY       *[2]int

	// Lifecycle state
	loading       bool
	noPrune       bool
	fadeActive    bool
	prunePending  bool
	updatePending bool
	throttle      anim.Throttle
	updateErr     error

	// Load completions arrive from source goroutines and drain on the
	// next Tick.
	mu          sync.Mutex
	completions []completion
}

var _ mapview.Layer = (*TileLayer)(nil)

// New creates a tile layer backed by source. The layer stays dormant
// until it is added to a map.
func New(source Source, opts Options) (*TileLayer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &TileLayer{
		opts:     opts,
		source:   source,
		events:   event.NewEmitter(),
		levels:   make(map[int]*Level),
		tiles:    make(map[string]*Tile),
		throttle: anim.Throttle{Interval: opts.UpdateInterval},
	}, nil
}

// Events returns the layer's event emitter.
func (l *TileLayer) Events() *event.Emitter { return l.events }

// Options returns the layer's configuration.
func (l *TileLayer) Options() Options { return l.opts }

// Attribution returns the credit line for the tile data.
func (l *TileLayer) Attribution() string { return l.opts.Attribution }

// Loading reports whether any requested tiles are still outstanding.
func (l *TileLayer) Loading() bool { return l.loading }

// OnAdd starts tracking the map's view.
func (l *TileLayer) OnAdd(m *mapview.Map) {
	l.attach(m)
}

func (l *TileLayer) attach(mv MapView) {
	l.mv = mv
	if mv.Loaded() {
		center, zoom := mv.View()
		l.setView(center, zoom, false, false)
	}
}

// OnRemove drops every tile and detaches from the map.
func (l *TileLayer) OnRemove(*mapview.Map) {
	l.invalidateAll()
	l.mv = nil
}

// OnViewReset rebuilds the grid for the map's current view. During a
// continuous zoom the rebuild is skipped unless UpdateWhenZooming asks
// for it.
func (l *TileLayer) OnViewReset(animating bool) {
	if l.mv == nil || !l.mv.Loaded() {
		return
	}
	center, zoom := l.mv.View()
	l.setView(center, zoom, animating, animating)
}

// OnZoomAnim starts loading tiles for the animation's target view so
// they are ready when the animation settles.
func (l *TileLayer) OnZoomAnim(target mapview.ViewEvent) {
	if l.mv == nil {
		return
	}
	l.setView(target.Center, target.Zoom, true, false)
}

// OnMove schedules a throttled grid update while the view pans.
func (l *TileLayer) OnMove() {
	if l.mv == nil || l.opts.UpdateWhenIdle {
		return
	}
	l.throttle.Request()
}

// OnMoveEnd schedules a grid update for the settled view.
func (l *TileLayer) OnMoveEnd() {
	if l.mv == nil || !l.mv.Loaded() {
		return
	}
	if _, animating := l.mv.AnimatingZoom(); animating {
		return
	}
	l.updatePending = true
}

// Tick drains finished loads, runs any due grid update and advances
// tile fades. It reports the first update failure since the last tick.
func (l *TileLayer) Tick(now time.Time) error {
	if l.mv == nil {
		return nil
	}
	l.drainCompletions(now)
	due := l.throttle.Due(now)
	if l.updatePending {
		l.updatePending = false
		due = true
	}
	if due && l.mv.Loaded() {
		// A running zoom animation already pointed the grid at its
		// target; mid-flight updates would chase intermediate views.
		if _, animating := l.mv.AnimatingZoom(); !animating {
			center, _ := l.mv.View()
			l.update(center)
		}
	}
	if l.prunePending {
		l.prunePending = false
		l.prune()
	}
	if l.fadeActive {
		l.fadePass(now)
	}
	err := l.updateErr
	l.updateErr = nil
	return err
}

func (l *TileLayer) completionFunc(coords TileCoord) DoneFunc {
	return func(err error, el Element) {
		l.mu.Lock()
		l.completions = append(l.completions, completion{coords: coords, err: err, el: el})
		l.mu.Unlock()
	}
}

func (l *TileLayer) drainCompletions(now time.Time) {
	l.mu.Lock()
	pending := l.completions
	l.completions = nil
	l.mu.Unlock()
	for _, c := range pending {
		l.tileReady(now, c.coords, c.err, c.el)
	}
}

// Redraw drops every tile and reloads the current view from scratch.
func (l *TileLayer) Redraw() {
	if l.mv == nil || !l.mv.Loaded() {
		return
	}
	l.removeAllTiles()
	center, zoom := l.mv.View()
	l.setView(center, zoom, false, false)
}

func (l *TileLayer) fadeEnabled() bool {
	return l.mv != nil && l.mv.FadeAnimation()
}

func (l *TileLayer) tileSizePt() geo.Point {
	return geo.Pt(float64(l.opts.TileSize), float64(l.opts.TileSize))
}

func (l *TileLayer) clampNative(zoom int) int {
	if l.opts.MinNativeZoom >= 0 && zoom < l.opts.MinNativeZoom {
		return l.opts.MinNativeZoom
	}
	if l.opts.MaxNativeZoom >= 0 && zoom > l.opts.MaxNativeZoom {
		return l.opts.MaxNativeZoom
	}
	return zoom
}

func (l *TileLayer) clampNativeF(zoom float64) float64 {
	if l.opts.MinNativeZoom >= 0 && zoom < float64(l.opts.MinNativeZoom) {
		return float64(l.opts.MinNativeZoom)
	}
	if l.opts.MaxNativeZoom >= 0 && zoom > float64(l.opts.MaxNativeZoom) {
		return float64(l.opts.MaxNativeZoom)
	}
	return zoom
}

// Levels returns the layer's zoom planes in draw order: ascending
// ZIndex, so the plane nearest the current zoom comes last.
func (l *TileLayer) Levels() []*Level {
	out := make([]*Level, 0, len(l.levels))
	for _, level := range l.levels {
		out = append(out, level)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].Zoom < out[j].Zoom
	})
	return out
}

// EachTile calls fn for every tile on the given zoom plane.
func (l *TileLayer) EachTile(zoom int, fn func(*Tile)) {
	for _, tile := range l.tiles {
		if tile.Coords.Z == zoom {
			fn(tile)
		}
	}
}

// TileCount returns the number of tiles currently held, loading or
// loaded, across all levels.
func (l *TileLayer) TileCount() int { return len(l.tiles) }

// LevelTransform returns the screen translation and scale that place a
// level's tiles for the map's current view. A tile draws at
// translate + tile.Pos*scale with its edge length scaled by the same
// factor.
func (l *TileLayer) LevelTransform(level *Level) (translate geo.Point, scale float64) {
	_, zoom := l.mv.View()
	scale = l.mv.ZoomScale(zoom, float64(level.Zoom))
	translate = level.Origin.MulBy(scale).Sub(l.mv.PixelOrigin())
	return translate, scale
}

// VisibleRange returns the tile rectangle the current view needs at
// the active tile zoom. ok is false when the layer has no view or no
// valid tile zoom.
func (l *TileLayer) VisibleRange() (r TileRange, ok bool) {
	if l.mv == nil || !l.mv.Loaded() || !l.hasTileZoom {
		return TileRange{}, false
	}
	center, _ := l.mv.View()
	r, err := PixelBoundsToTileRange(l.tiledPixelBounds(center), l.tileSizePt())
	if err != nil {
		return TileRange{}, false
	}
	return r, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
