package layer

import (
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
)

func newTestMap(t *testing.T, center geo.LatLng, zoom float64) *mapview.Map {
	t.Helper()
	m, err := mapview.New(mapview.DefaultOptions(256, 256))
	require.NoError(t, err)
	require.NoError(t, m.SetView(center, zoom))
	return m
}

func newTestVectorLayer(t *testing.T, m *mapview.Map) *VectorLayer {
	t.Helper()
	v := NewVectorLayer()
	_, err := m.AddLayer(v)
	require.NoError(t, err)
	return v
}

func TestScreenPathsEmptyBeforeView(t *testing.T) {
	m, err := mapview.New(mapview.DefaultOptions(256, 256))
	require.NoError(t, err)

	v := newTestVectorLayer(t, m)
	v.Add(NewPolyline(orb.LineString{{0, 0}, {10, 10}}, DefaultStyle()))

	require.Nil(t, v.ScreenPaths())
	require.Nil(t, v.ScreenCircles())
	require.Nil(t, v.ScreenMarkers())
}

func TestPolylineProjectsToScreen(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)
	v.Add(NewPolyline(orb.LineString{{-45, 0}, {45, 0}}, DefaultStyle()))

	paths := v.ScreenPaths()
	require.Len(t, paths, 1)
	require.False(t, paths[0].Closed)
	require.Len(t, paths[0].Rings, 1)

	pts := paths[0].Rings[0]
	require.Len(t, pts, 2)
	require.True(t, pts[0].Equals(geo.Pt(64, 128)), "got %v", pts[0])
	require.True(t, pts[1].Equals(geo.Pt(192, 128)), "got %v", pts[1])
}

func TestPolylineClipsToPaddedView(t *testing.T) {
	// At zoom 1 a 256px viewport spans longitude -90..90; the clip
	// window pads that to -108..108.
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)
	v.Add(NewPolyline(orb.LineString{{-170, 0}, {0, 0}, {170, 0}}, DefaultStyle()))

	paths := v.ScreenPaths()
	require.Len(t, paths, 1)

	pts := paths[0].Rings[0]
	require.Len(t, pts, 3)
	require.True(t, pts[0].Equals(geo.Pt(-26, 128)), "got %v", pts[0])
	require.True(t, pts[1].Equals(geo.Pt(128, 128)), "got %v", pts[1])
	require.True(t, pts[2].Equals(geo.Pt(282, 128)), "got %v", pts[2])
}

func TestPolylineOutsideViewDropped(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)
	v.Add(NewPolyline(orb.LineString{{150, 50}, {170, 60}}, DefaultStyle()))

	require.Empty(t, v.ScreenPaths())
}

func TestPolygonWithHoleKeepsRings(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)

	outer := orb.Ring{{-40, -40}, {40, -40}, {40, 40}, {-40, 40}, {-40, -40}}
	hole := orb.Ring{{-10, -10}, {-10, 10}, {10, 10}, {10, -10}, {-10, -10}}
	v.Add(NewPolygon(orb.Polygon{outer, hole}, DefaultStyle()))

	paths := v.ScreenPaths()
	require.Len(t, paths, 1)
	require.True(t, paths[0].Closed)
	require.Len(t, paths[0].Rings, 2)

	// The repeated closing position is dropped on projection.
	r0 := paths[0].Rings[0]
	require.Len(t, r0, 4)
	require.True(t, r0[0].Equals(geo.Pt(71, 190)), "got %v", r0[0])
	require.True(t, r0[1].Equals(geo.Pt(185, 190)), "got %v", r0[1])
	require.True(t, r0[2].Equals(geo.Pt(185, 66)), "got %v", r0[2])
	require.True(t, r0[3].Equals(geo.Pt(71, 66)), "got %v", r0[3])

	r1 := paths[0].Rings[1]
	require.Len(t, r1, 4)
	require.True(t, r1[0].Equals(geo.Pt(114, 142)), "got %v", r1[0])
}

func TestCircleRadiusInPixels(t *testing.T) {
	// At zoom 0 one pixel covers about 156543 ground meters at the
	// equator.
	m := newTestMap(t, geo.LatLng{}, 0)
	v := newTestVectorLayer(t, m)
	v.Add(NewCircle(geo.LatLng{}, 1565430, DefaultStyle()))

	circles := v.ScreenCircles()
	require.Len(t, circles, 1)
	require.True(t, circles[0].Center.Equals(geo.Pt(128, 128)), "got %v", circles[0].Center)
	require.InDelta(t, 10.1, circles[0].Radius, 0.2)
}

func TestCircleOutsideViewCulled(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)
	v.Add(
		NewCircle(geo.LatLng{}, 100000, DefaultStyle()),
		NewCircle(geo.LatLng{Lng: 170}, 100000, DefaultStyle()),
	)

	circles := v.ScreenCircles()
	require.Len(t, circles, 1)
	require.True(t, circles[0].Center.Equals(geo.Pt(128, 128)))
}

func TestMarkerProjectionAndCulling(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)
	v.Add(
		NewMarker(geo.LatLng{}, nil, geo.Pt(8, 16)),
		NewMarker(geo.LatLng{Lng: 170}, nil, geo.Point{}),
	)

	markers := v.ScreenMarkers()
	require.Len(t, markers, 1)
	require.True(t, markers[0].Pos.Equals(geo.Pt(128, 128)), "got %v", markers[0].Pos)
	require.Nil(t, markers[0].Image)
	require.True(t, markers[0].Anchor.Equals(geo.Pt(8, 16)))
}

func TestRemoveOverlay(t *testing.T) {
	m := newTestMap(t, geo.LatLng{}, 1)
	v := newTestVectorLayer(t, m)

	a := NewPolyline(orb.LineString{{-45, 0}, {45, 0}}, DefaultStyle())
	b := NewPolyline(orb.LineString{{-45, 10}, {45, 10}}, DefaultStyle())
	v.Add(a, b)
	require.Equal(t, 2, v.Len())

	v.Remove(a)
	require.Equal(t, 1, v.Len())
	require.Len(t, v.ScreenPaths(), 1)

	// Removing again is a no-op.
	v.Remove(a)
	require.Equal(t, 1, v.Len())
}

func TestVectorLayerAttribution(t *testing.T) {
	v := NewVectorLayer()
	require.Empty(t, v.Attribution())
	v.SetAttribution("Survey data")
	require.Equal(t, "Survey data", v.Attribution())
}

func TestLoadShapefilePoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.Write(&shp.Point{X: 10, Y: 20})
	w.Write(&shp.Point{X: -30, Y: 40})
	w.Close()

	overlays, err := LoadShapefile(path, DefaultStyle())
	require.NoError(t, err)
	require.Len(t, overlays, 2)

	first, ok := overlays[0].(*Marker)
	require.True(t, ok)
	require.Equal(t, geo.LatLng{Lat: 20, Lng: 10}, first.Position)
}

func TestLoadShapefilePolylineParts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.shp")
	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	w.Write(shp.NewPolyLine([][]shp.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}},
		{{X: 100, Y: 0}, {X: 110, Y: 10}},
	}))
	w.Close()

	overlays, err := LoadShapefile(path, DefaultStyle())
	require.NoError(t, err)
	require.Len(t, overlays, 2)

	first, ok := overlays[0].(*Polyline)
	require.True(t, ok)
	require.Len(t, first.Line, 3)
	require.Equal(t, orb.Point{10, 10}, first.Line[1])

	second, ok := overlays[1].(*Polyline)
	require.True(t, ok)
	require.Len(t, second.Line, 2)
}

func TestLoadShapefilePolygonWithHole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	// Outer ring clockwise, hole counter-clockwise, both closed.
	rings := [][]shp.Point{
		{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}},
		{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}, {X: 2, Y: 2}},
	}
	poly := shp.Polygon(*shp.NewPolyLine(rings))
	w.Write(&poly)
	w.Close()

	overlays, err := LoadShapefile(path, DefaultStyle())
	require.NoError(t, err)
	require.Len(t, overlays, 1)

	p, ok := overlays[0].(*Polygon)
	require.True(t, ok)
	require.Len(t, p.Rings, 2)
	require.Len(t, p.Rings[0], 5)
	require.Equal(t, orb.Point{2, 2}, p.Rings[1][0])
}

func TestLoadShapefileMissingFile(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"), DefaultStyle())
	require.Error(t, err)
}
