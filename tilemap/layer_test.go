package tilemap

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
	"github.com/OpticalFlyer/atlas/proj"
)

// fakeTile records one CreateTile call so tests can finish or fail the
// load on their own schedule.
type fakeTile struct {
	coords TileCoord // wrapped, as the source saw them
	ctx    context.Context
	done   DoneFunc
	el     *fakeElement
	sent   bool
}

type fakeElement struct {
	coords TileCoord
}

type fakeSource struct {
	tiles    []*fakeTile
	disposed int
}

func (s *fakeSource) CreateTile(ctx context.Context, coords TileCoord, done DoneFunc) Element {
	ft := &fakeTile{coords: coords, ctx: ctx, done: done, el: &fakeElement{coords: coords}}
	s.tiles = append(s.tiles, ft)
	return ft.el
}

func (s *fakeSource) Dispose(Element) {
	s.disposed++
}

func (s *fakeSource) created() []TileCoord {
	out := make([]TileCoord, len(s.tiles))
	for i, ft := range s.tiles {
		out[i] = ft.coords
	}
	return out
}

func (s *fakeSource) completeAll(err error) int {
	n := 0
	for _, ft := range s.tiles {
		if ft.sent {
			continue
		}
		ft.sent = true
		ft.done(err, ft.el)
		n++
	}
	return n
}

func (s *fakeSource) completeZoom(z int, err error) int {
	n := 0
	for _, ft := range s.tiles {
		if ft.sent || ft.coords.Z != z {
			continue
		}
		ft.sent = true
		ft.done(err, ft.el)
		n++
	}
	return n
}

type eventLog struct {
	seq []string
}

func watchEvents(l *TileLayer) *eventLog {
	el := &eventLog{}
	names := []string{
		EventLoading, EventLoad, EventTileLoadStart,
		EventTileLoad, EventTileError, EventTileUnload, EventTileAbort,
	}
	for _, name := range names {
		l.Events().On(name, func(any) { el.seq = append(el.seq, name) })
	}
	return el
}

func (el *eventLog) count(name string) int {
	n := 0
	for _, got := range el.seq {
		if got == name {
			n++
		}
	}
	return n
}

func newEngineMap(t *testing.T, width, height int, fade bool) *mapview.Map {
	t.Helper()
	opts := mapview.DefaultOptions(width, height)
	opts.FadeAnimation = fade
	m, err := mapview.New(opts)
	require.NoError(t, err)
	return m
}

func newEngineLayer(t *testing.T, m *mapview.Map, opts Options) (*TileLayer, *fakeSource) {
	t.Helper()
	src := &fakeSource{}
	l, err := New(src, opts)
	require.NoError(t, err)
	_, err = m.AddLayer(l)
	require.NoError(t, err)
	return l, src
}

func TestNewValidatesOptions(t *testing.T) {
	src := &fakeSource{}

	_, err := New(src, Options{})
	require.Error(t, err, "zero options lack a tile size")

	bad := DefaultOptions()
	bad.KeepBuffer = -1
	_, err = New(src, bad)
	require.Error(t, err)

	bad = DefaultOptions()
	bad.MinNativeZoom = 8
	bad.MaxNativeZoom = 4
	_, err = New(src, bad)
	require.Error(t, err)
}

func TestInitialLoadFlow(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))

	require.Equal(t, 4, len(src.created()), "a 512px view at zoom 2 spans a 2x2 tile block")
	require.Equal(t, 4, l.TileCount())
	require.True(t, l.Loading())
	require.Equal(t, 1, ev.count(EventLoading))
	require.Equal(t, 4, ev.count(EventTileLoadStart))
	require.Equal(t, EventLoading, ev.seq[0], "loading must fire before the first tileloadstart")

	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	require.False(t, l.Loading())
	require.Equal(t, 4, ev.count(EventTileLoad))
	require.Equal(t, 1, ev.count(EventLoad))
	require.Equal(t, EventLoad, ev.seq[len(ev.seq)-1])
	l.EachTile(2, func(tile *Tile) {
		require.True(t, tile.Active)
		require.Equal(t, 1.0, tile.Opacity, "fade disabled loads go straight to opaque")
	})

	r, ok := l.VisibleRange()
	require.True(t, ok)
	require.Equal(t, TileRange{MinX: 1, MaxX: 2, MinY: 1, MaxY: 2}, r)
}

func TestLayerDormantUntilViewSet(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	_, src := newEngineLayer(t, m, DefaultOptions())
	require.Empty(t, src.created())

	// Adding to an already positioned map loads immediately.
	m2 := newEngineMap(t, 512, 512, false)
	require.NoError(t, m2.SetView(geo.LatLng{}, 2))
	_, src2 := newEngineLayer(t, m2, DefaultOptions())
	require.Equal(t, 4, len(src2.created()))
}

func TestPanQueuesNewColumn(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	// One tile east: the X=3 column is new, the X=1 column stays in
	// the keep buffer.
	require.NoError(t, m.PanBy(geo.Pt(256, 0)))
	require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))

	require.Equal(t, 6, len(src.created()))
	require.Equal(t, 6, l.TileCount())
	require.NotNil(t, l.tiles["3:1:2"])
	require.NotNil(t, l.tiles["3:2:2"])
	require.NotNil(t, l.tiles["1:1:2"], "buffered tiles must survive the pan")
}

func TestWrappedPanRequestsRealTiles(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	// A full world width east: grid coordinates pass X=3 but the
	// source must keep seeing wrapped ones.
	require.NoError(t, m.PanBy(geo.Pt(1024, 0)))
	require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))

	created := src.created()
	require.Equal(t, 8, len(created))
	for _, c := range created[4:] {
		require.GreaterOrEqual(t, c.X, 0)
		require.Less(t, c.X, 4, "zoom 2 only has four columns of real tiles")
	}
	require.NotNil(t, l.tiles["5:1:2"], "the grid itself keys tiles by unwrapped coordinates")
	require.NotNil(t, l.tiles["6:2:2"])
}

func TestErrorTileStaysAndFallbackReplacesIt(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	require.Equal(t, 1, len(src.created()))

	src.tiles[0].done(errors.New("boom"), src.tiles[0].el)
	require.NoError(t, m.Tick(start))

	tile := l.tiles["0:0:0"]
	require.NotNil(t, tile, "a failed tile keeps its slot")
	require.True(t, tile.Loaded())
	require.Equal(t, 1, ev.count(EventTileError))
	require.Equal(t, 1, ev.count(EventLoad), "the batch finishes even when a tile fails")
	require.Zero(t, ev.count(EventTileLoad))

	// A late second delivery, the error fallback, runs the load path.
	src.tiles[0].done(nil, src.tiles[0].el)
	require.NoError(t, m.Tick(start.Add(50*time.Millisecond)))

	require.Equal(t, 1, ev.count(EventTileLoad))
	require.Equal(t, []string{"loading", "tileloadstart", "tileerror", "load", "tileload"}, ev.seq)
}

func TestZoomChangeAbortsPendingLoads(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	require.Equal(t, 1, len(src.created()))

	require.NoError(t, m.SetView(geo.LatLng{}, 1))

	require.Equal(t, 1, ev.count(EventTileAbort))
	require.Equal(t, context.Canceled, src.tiles[0].ctx.Err())
	require.Equal(t, 1, src.disposed)
	require.Nil(t, l.tiles["0:0:0"])
	require.Equal(t, 4, l.TileCount(), "the zoom 1 block replaces the aborted tile")
}

func TestLoadedParentRetainedAcrossZoom(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	// Five levels up is still within reach of the stand-in search.
	require.NoError(t, m.SetView(geo.LatLng{}, 5))
	require.NotNil(t, l.tiles["0:0:0"], "the loaded ancestor covers the loading view")
	require.Equal(t, 5, l.TileCount())

	levels := l.Levels()
	require.Len(t, levels, 2)
	require.Equal(t, 0, levels[0].Zoom, "the distant level draws first")
	require.Equal(t, 5, levels[1].Zoom)
	require.Greater(t, levels[1].ZIndex, levels[0].ZIndex)

	// Once the new level is fully in, the ancestor goes.
	src.completeZoom(5, nil)
	require.NoError(t, m.Tick(start.Add(100*time.Millisecond)))
	require.Nil(t, l.tiles["0:0:0"])
	require.Equal(t, 4, l.TileCount())
	require.GreaterOrEqual(t, ev.count(EventTileUnload), 1)
}

func TestParentBeyondFiveLevelsNotRetained(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	src.completeAll(nil)
	require.NoError(t, m.Tick(time.Now()))

	require.NoError(t, m.SetView(geo.LatLng{}, 6))
	require.Nil(t, l.tiles["0:0:0"], "six levels is past the stand-in search")
	require.Equal(t, 4, l.TileCount())
}

func TestLoadedChildrenRetainedTwoLevelsDown(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	require.Equal(t, 5, l.TileCount(), "grandchildren stand in for the loading root")

	src.completeZoom(0, nil)
	require.NoError(t, m.Tick(start.Add(100*time.Millisecond)))
	require.Equal(t, 1, l.TileCount())
}

func TestChildrenBeyondTwoLevelsNotRetained(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())

	require.NoError(t, m.SetView(geo.LatLng{}, 3))
	src.completeAll(nil)
	require.NoError(t, m.Tick(time.Now()))

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	require.Equal(t, 1, l.TileCount(), "great-grandchildren are too deep to stand in")
}

func TestFadeRampAndPruneAfterFade(t *testing.T) {
	m := newEngineMap(t, 256, 256, true)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 1))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	l.EachTile(1, func(tile *Tile) {
		require.Zero(t, tile.Opacity, "faded loads start transparent")
		require.False(t, tile.Active)
	})

	require.NoError(t, m.Tick(start.Add(100*time.Millisecond)))
	l.EachTile(1, func(tile *Tile) {
		require.InDelta(t, 0.5, tile.Opacity, 1e-9)
	})

	require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))
	l.EachTile(1, func(tile *Tile) {
		require.Equal(t, 1.0, tile.Opacity)
		require.True(t, tile.Active)
	})

	// Zoom in: the old level must hang around while the new one fades.
	t2 := start.Add(500 * time.Millisecond)
	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeZoom(2, nil)
	require.NoError(t, m.Tick(t2))
	require.Equal(t, 8, l.TileCount())

	require.NoError(t, m.Tick(t2.Add(100*time.Millisecond)))
	require.Equal(t, 8, l.TileCount(), "mid-fade nothing is pruned")

	require.NoError(t, m.Tick(t2.Add(250*time.Millisecond)))
	require.Equal(t, 4, l.TileCount(), "the fade finishing triggers the prune")
	require.Equal(t, 4, ev.count(EventTileUnload))
	require.Nil(t, l.tiles["0:0:1"])
}

func TestZoomAnimationPreloadsTargetWithoutThrash(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 3))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))
	require.Equal(t, 4, len(src.created()))

	// The animation start retargets the grid at the destination zoom.
	require.NoError(t, m.AnimateZoom(5, nil))
	require.Equal(t, 5, l.tileZoom)
	require.Equal(t, 8, len(src.created()), "the target view preloads in one batch")
	require.Equal(t, 8, l.TileCount(), "the old level keeps drawing under the animation")

	// Mid-flight frames must not rebuild the grid.
	require.NoError(t, m.Tick(start.Add(50*time.Millisecond)))
	require.Equal(t, 5, l.tileZoom)
	require.Equal(t, 8, len(src.created()))

	src.completeZoom(5, nil)
	require.NoError(t, m.Tick(start.Add(80*time.Millisecond)))

	// Settle well past the animation. Nothing new should load: the
	// grid already matches the destination.
	require.NoError(t, m.Tick(start.Add(2*time.Second)))
	_, animating := m.AnimatingZoom()
	require.False(t, animating)
	zoom, err := m.Zoom()
	require.NoError(t, err)
	require.Equal(t, 5.0, zoom)
	require.Equal(t, 8, len(src.created()), "no grid thrash during the whole flight")
	require.Equal(t, 4, l.TileCount())
}

func TestContinuousZoomRebuildGating(t *testing.T) {
	t.Run("rebuilds on integer crossings by default", func(t *testing.T) {
		m := newEngineMap(t, 256, 256, false)
		l, src := newEngineLayer(t, m, DefaultOptions())
		require.NoError(t, m.SetView(geo.LatLng{}, 2))
		src.completeAll(nil)
		require.NoError(t, m.Tick(time.Now()))

		require.NoError(t, m.SetZoomAround(geo.Pt(128, 128), 4.4))
		require.Equal(t, 4, l.tileZoom, "the gesture crossing zoom 4 retargets the grid")
	})

	t.Run("waits for the jump reset when disabled", func(t *testing.T) {
		m := newEngineMap(t, 256, 256, false)
		opts := DefaultOptions()
		opts.UpdateWhenZooming = false
		l, src := newEngineLayer(t, m, opts)
		start := time.Now()
		require.NoError(t, m.SetView(geo.LatLng{}, 2))
		src.completeAll(nil)
		require.NoError(t, m.Tick(start))

		require.NoError(t, m.SetZoomAround(geo.Pt(128, 128), 4.4))
		require.Equal(t, 2, l.tileZoom, "no rebuild during the gesture")

		// The throttled update notices the zoom gap and resets.
		require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))
		require.Equal(t, 4, l.tileZoom)
	})
}

func TestUpdateWhenIdleDefersLoadsToMoveEnd(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	opts := DefaultOptions()
	opts.UpdateWhenIdle = true
	l, src := newEngineLayer(t, m, opts)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))
	require.Equal(t, 4, len(src.created()))

	require.NoError(t, m.PanBy(geo.Pt(512, 0)))
	require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))
	require.Equal(t, 4, len(src.created()), "mid-pan loads are deferred")

	m.EndMove()
	require.NoError(t, m.Tick(start.Add(600*time.Millisecond)))
	require.Equal(t, 8, len(src.created()))
	require.Equal(t, 8, l.TileCount())
	require.NotNil(t, l.tiles["3:1:2"])
	require.NotNil(t, l.tiles["4:2:2"])
}

func TestBoundsOptionLimitsLoads(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	opts := DefaultOptions()
	region := geo.NewLatLngBounds(
		geo.LatLng{Lat: 10, Lng: 10},
		geo.LatLng{Lat: 20, Lng: 20},
	)
	opts.Bounds = &region
	_, src := newEngineLayer(t, m, opts)

	require.NoError(t, m.SetView(geo.LatLng{}, 1))

	require.Equal(t, []TileCoord{{X: 1, Y: 0, Z: 1}}, src.created(),
		"only the northeast quadrant intersects the bounds")
}

func TestWorldEdgeValidity(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	opts := DefaultOptions()
	opts.NoWrap = true
	_, src := newEngineLayer(t, m, opts)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	require.Equal(t, 1, len(src.created()))

	// South of the single world tile there is nothing to load.
	require.NoError(t, m.PanBy(geo.Pt(0, 100)))
	require.NoError(t, m.Tick(start.Add(300*time.Millisecond)))
	require.Equal(t, 1, len(src.created()))

	// East of it the longitude axis is declared wrapping by the CRS,
	// so the column is considered valid and requested as-is.
	require.NoError(t, m.PanBy(geo.Pt(100, 0)))
	require.NoError(t, m.Tick(start.Add(600*time.Millisecond)))
	require.Equal(t, 2, len(src.created()))
	require.Equal(t, TileCoord{X: 1, Y: 0, Z: 0}, src.created()[1])
}

func TestLevelTransformAnchorsTiles(t *testing.T) {
	m := newEngineMap(t, 256, 256, false)
	l, src := newEngineLayer(t, m, DefaultOptions())

	require.NoError(t, m.SetView(geo.LatLng{}, 0))
	src.completeAll(nil)
	require.NoError(t, m.Tick(time.Now()))
	require.NoError(t, m.SetView(geo.LatLng{}, 5))

	levels := l.Levels()
	require.Len(t, levels, 2)

	current := levels[1]
	translate, scale := l.LevelTransform(current)
	require.Equal(t, 1.0, scale)
	require.Equal(t, geo.Pt(0, 0), translate)

	// The world tile keeps the origin from when its level was built, so
	// the transform shifts it far northwest; scaled up it still covers
	// the viewport (pixel 3968..4224 of its 8192px span).
	ancestor := levels[0]
	translate, scale = l.LevelTransform(ancestor)
	require.Equal(t, 32.0, scale, "five zooms apart doubles five times")
	require.Equal(t, geo.Pt(-3968, -3968), translate)
	require.Equal(t, geo.Pt(0, 0), l.tiles["0:0:0"].Pos)

	tile := l.tiles["15:15:5"]
	require.NotNil(t, tile)
	require.Equal(t, geo.Pt(-128, -128), tile.Pos,
		"the northwest visible tile starts half a viewport up and left")
}

func TestRedrawReloadsEverything(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	l, src := newEngineLayer(t, m, DefaultOptions())
	ev := watchEvents(l)
	start := time.Now()

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(start))

	l.Redraw()

	require.Equal(t, 4, ev.count(EventTileUnload))
	require.Equal(t, 8, len(src.created()))
	require.Equal(t, 4, l.TileCount())
	require.True(t, l.Loading())
}

func TestRemoveLayerDropsTiles(t *testing.T) {
	m := newEngineMap(t, 512, 512, false)
	src := &fakeSource{}
	l, err := New(src, DefaultOptions())
	require.NoError(t, err)
	id, err := m.AddLayer(l)
	require.NoError(t, err)

	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	src.completeAll(nil)
	require.NoError(t, m.Tick(time.Now()))

	require.NoError(t, m.RemoveLayer(id))
	require.Zero(t, l.TileCount())
	require.Equal(t, 4, src.disposed)

	// A detached layer ignores ticks.
	require.NoError(t, l.Tick(time.Now()))
}

// fakeView drives the layer directly, for views a real map refuses to
// produce.
type fakeView struct {
	crs    *proj.CRS
	size   geo.Point
	center geo.LatLng
	zoom   float64
	loaded bool
	fade   bool
}

func (v *fakeView) CRS() *proj.CRS              { return v.crs }
func (v *fakeView) Size() geo.Point             { return v.size }
func (v *fakeView) View() (geo.LatLng, float64) { return v.center, v.zoom }
func (v *fakeView) PixelOrigin() geo.Point {
	return v.Project(v.center, v.zoom).Sub(v.size.DivBy(2)).Round()
}
func (v *fakeView) Project(ll geo.LatLng, zoom float64) geo.Point {
	return v.crs.LatLngToPoint(ll, zoom)
}
func (v *fakeView) Unproject(p geo.Point, zoom float64) geo.LatLng {
	return v.crs.PointToLatLng(p, zoom)
}
func (v *fakeView) ZoomScale(to, from float64) float64 {
	return v.crs.Scale(to) / v.crs.Scale(from)
}
func (v *fakeView) AnimatingZoom() (float64, bool) { return 0, false }
func (v *fakeView) FadeAnimation() bool            { return v.fade }
func (v *fakeView) Loaded() bool                   { return v.loaded }

func TestTickReportsInfiniteTileRange(t *testing.T) {
	src := &fakeSource{}
	l, err := New(src, DefaultOptions())
	require.NoError(t, err)

	fv := &fakeView{
		crs:    proj.EPSG3857,
		size:   geo.Pt(math.NaN(), 256),
		zoom:   2,
		loaded: true,
	}
	l.attach(fv)

	err = l.Tick(time.Now())
	require.ErrorIs(t, err, ErrInfiniteTileRange)

	// The failure is reported once, not latched.
	require.NoError(t, l.Tick(time.Now().Add(time.Second)))
}
