package proj

import (
	"testing"

	"github.com/OpticalFlyer/atlas/geo"
)

var benchPositions = []struct {
	ll   geo.LatLng
	zoom float64
}{
	{geo.LatLng{Lat: 0, Lng: 0}, 1},
	{geo.LatLng{Lat: MaxLatitude, Lng: 180}, 10},
	{geo.LatLng{Lat: -MaxLatitude, Lng: -180}, 15},
	{geo.LatLng{Lat: 45.12345, Lng: -122.67890}, 12}, // Portland, OR
}

func BenchmarkLatLngToPoint(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range benchPositions {
			EPSG3857.LatLngToPoint(c.ll, c.zoom)
		}
	}
}

func BenchmarkPointToLatLng(b *testing.B) {
	points := make([]geo.Point, len(benchPositions))
	for i, c := range benchPositions {
		points[i] = EPSG3857.LatLngToPoint(c.ll, c.zoom)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j, p := range points {
			EPSG3857.PointToLatLng(p, benchPositions[j].zoom)
		}
	}
}
