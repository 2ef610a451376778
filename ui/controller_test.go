package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
)

func newTestMap(t *testing.T, width, height int) *mapview.Map {
	t.Helper()
	opts := mapview.DefaultOptions(width, height)
	opts.ZoomAnimation = false
	m, err := mapview.New(opts)
	require.NoError(t, err)
	require.NoError(t, m.SetView(geo.LatLng{}, 2))
	return m
}

type creditedLayer struct {
	mapview.BaseLayer
	credit string
}

func (l *creditedLayer) Attribution() string { return l.credit }

type plainLayer struct{ mapview.BaseLayer }

func TestZoomControlStepsZoom(t *testing.T) {
	m := newTestMap(t, 256, 256)
	zc := NewZoomControl(m)
	zc.SetPosition(10, 10)

	// Click "+" (top button), then "-" (bottom button).
	require.True(t, zc.HandleInput(23, 23, true))
	require.True(t, zc.HandleInput(23, 23, false))
	zoom, err := m.Zoom()
	require.NoError(t, err)
	require.Equal(t, 3.0, zoom)

	require.True(t, zc.HandleInput(23, 49, true))
	require.True(t, zc.HandleInput(23, 49, false))
	zoom, err = m.Zoom()
	require.NoError(t, err)
	require.Equal(t, 2.0, zoom)
}

func TestAttributionCollectsLayerCredits(t *testing.T) {
	m := newTestMap(t, 256, 256)
	for _, l := range []mapview.Layer{
		&creditedLayer{credit: "© OpenStreetMap"},
		&creditedLayer{credit: "© OpenStreetMap"},
		&creditedLayer{credit: "Survey"},
		&creditedLayer{},
		&plainLayer{},
	} {
		_, err := m.AddLayer(l)
		require.NoError(t, err)
	}

	ac := NewAttributionControl(m)
	require.NoError(t, ac.Update())
	require.Equal(t, "Atlas | © OpenStreetMap, Survey", ac.Text())

	ac.SetPrefix("")
	require.NoError(t, ac.Update())
	require.Equal(t, "© OpenStreetMap, Survey", ac.Text())
}

func TestAttributionHiddenWhenEmpty(t *testing.T) {
	m := newTestMap(t, 256, 256)
	ac := NewAttributionControl(m)
	ac.SetPrefix("")
	require.NoError(t, ac.Update())
	require.Empty(t, ac.Text())
	require.False(t, ac.HandleInput(1, 1, false))
}

func TestRoundScale(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1, 1},
		{8.7, 5},
		{35, 30},
		{99, 50},
		{120, 100},
		{980, 500},
		{4999, 3000},
		{5000, 5000},
		{15654303, 10000000},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, roundScale(tc.in), "roundScale(%v)", tc.in)
	}
}

func TestScaleControlMetricBar(t *testing.T) {
	m := newTestMap(t, 256, 256)
	require.NoError(t, m.SetView(geo.LatLng{}, 0))

	sc := NewScaleControl(m)
	require.NoError(t, sc.Update())

	// 100 px across the equator of the zoom-0 world is 140.625 degrees,
	// about 15654 km; the bar snaps down to 10000 km.
	require.Equal(t, "10000 km", sc.Label())
	require.InDelta(t, 63.9, sc.BarWidth(), 0.5)
}

func TestScaleControlHiddenBeforeView(t *testing.T) {
	m, err := mapview.New(mapview.DefaultOptions(256, 256))
	require.NoError(t, err)

	sc := NewScaleControl(m)
	require.NoError(t, sc.Update())
	require.Empty(t, sc.Label())
	require.Zero(t, sc.BarWidth())
	require.False(t, sc.HandleInput(15, 595, true))
}

func TestControllerCornerLayout(t *testing.T) {
	m := newTestMap(t, 800, 600)
	c := NewController()
	c.UpdateWindowSize(800, 600)

	zc := NewZoomControl(m)
	sc := NewScaleControl(m)
	ac := NewAttributionControl(m)
	c.AddControl(zc)
	c.AddControl(sc)
	c.AddControl(ac)
	require.NoError(t, c.Update())

	require.Equal(t, 10.0, zc.Bounds().X)
	require.Equal(t, 10.0, zc.Bounds().Y)

	require.Equal(t, 10.0, sc.Bounds().X)
	require.Equal(t, 568.0, sc.Bounds().Y)

	// "Atlas" is 5 characters: 6*5+8 = 38 wide, right-aligned.
	require.Equal(t, "Atlas", ac.Text())
	require.Equal(t, 752.0, ac.Bounds().X)
	require.Equal(t, 572.0, ac.Bounds().Y)

	// A second control in an occupied corner stacks below the first.
	zc2 := NewZoomControl(m)
	c.AddControl(zc2)
	require.NoError(t, c.Update())
	require.Equal(t, 10.0, zc2.Bounds().X)
	require.Equal(t, 72.0, zc2.Bounds().Y)
}

func TestControllerPanelSwallowsInput(t *testing.T) {
	m := newTestMap(t, 800, 600)
	c := NewController()
	c.UpdateWindowSize(800, 600)

	zc := NewZoomControl(m)
	c.AddControl(zc)
	c.AddPanel(NewPanel(0, 0, 200, 150, "Layers"))

	// The panel covers the zoom control, so the click lands on the
	// panel and the buttons never fire.
	require.True(t, c.HandleInput(23, 23, true))
	require.True(t, c.HandleInput(23, 23, false))
	zoom, err := m.Zoom()
	require.NoError(t, err)
	require.Equal(t, 2.0, zoom)

	// Outside everything the event stays with the map.
	require.False(t, c.HandleInput(400, 300, false))
}

func TestPanelForwardsInputToChildren(t *testing.T) {
	clicks := 0
	p := NewPanel(100, 100, 200, 150, "Tools")
	b := NewButton(10, 30, 26, 26, "x", func() { clicks++ })
	p.AddChild(b)
	require.Equal(t, []Component{b}, p.Children())
	require.Same(t, p, b.GetParent())

	require.True(t, p.HandleInput(115, 135, true))
	require.True(t, p.HandleInput(115, 135, false))
	require.Equal(t, 1, clicks)

	p.RemoveChild(b)
	require.Empty(t, p.Children())
	require.Nil(t, b.GetParent())
}

func TestPanelDockingAtLeftEdge(t *testing.T) {
	p := NewPanel(300, 200, 200, 150, "Layers")
	p.UpdateWindowSize(800, 600)

	p.mouseDown = true
	p.beginInteraction(310, 210)
	require.True(t, p.isDragging)

	// Dragging inside the 20px threshold docks against the left edge.
	p.dragTo(10, 300)
	require.Equal(t, dockLeft, p.dockState)
	require.True(t, p.isDockPreview)
	require.Equal(t, 0.0, p.X)
	require.Equal(t, 0.0, p.Y)
	require.Equal(t, 600.0, p.Height)
	require.Equal(t, 200.0, p.Width)

	p.endInteraction()
	require.False(t, p.isDragging)
	require.Equal(t, dockLeft, p.dockState)

	// Grabbing the title bar again undocks and restores the saved size.
	p.mouseDown = true
	p.beginInteraction(5, 10)
	require.Equal(t, dockNone, p.dockState)
	require.Equal(t, 200.0, p.Width)
	require.Equal(t, 150.0, p.Height)
	p.endInteraction()
}

func TestPanelResizeClampsToMinimum(t *testing.T) {
	p := NewPanel(300, 200, 200, 150, "Layers")
	p.UpdateWindowSize(800, 600)

	p.mouseDown = true
	p.beginInteraction(500, 275)
	require.True(t, p.isResizing)
	require.Equal(t, resizeRight, p.resizeState)

	p.resizeTo(560, 275)
	require.Equal(t, 260.0, p.Width)

	p.resizeTo(100, 275)
	require.Equal(t, minPanelWidth, p.Width)
	p.endInteraction()
}
