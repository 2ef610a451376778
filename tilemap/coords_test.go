package tilemap

import (
	"errors"
	"math"
	"testing"

	"github.com/OpticalFlyer/atlas/geo"
)

func TestKeyRoundTrip(t *testing.T) {
	coords := []TileCoord{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 2, Z: 3},
		{X: 523, Y: 723, Z: 11},
		{X: -1, Y: 0, Z: 2},
		{X: -7, Y: -3, Z: 5},
	}

	for _, c := range coords {
		got, err := ParseKey(c.Key())
		if err != nil {
			t.Errorf("ParseKey(%q) returned error: %v", c.Key(), err)
			continue
		}
		if got != c {
			t.Errorf("ParseKey(Key(%v)) = %v, want %v", c, got, c)
		}
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	keys := []string{"", "1", "1:2", "1:2:3:4", "a:b:c", "1:2:z", "1.5:2:3"}

	for _, key := range keys {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q) should have failed", key)
		}
	}
}

func TestPixelBoundsToTileRange(t *testing.T) {
	size := geo.Pt(256, 256)

	tests := []struct {
		name   string
		bounds geo.Bounds
		want   TileRange
	}{
		{
			name:   "exact single tile",
			bounds: geo.NewBounds(geo.Pt(0, 0), geo.Pt(256, 256)),
			want:   TileRange{MinX: 0, MaxX: 0, MinY: 0, MaxY: 0},
		},
		{
			name:   "one pixel past the edge",
			bounds: geo.NewBounds(geo.Pt(0, 0), geo.Pt(257, 256)),
			want:   TileRange{MinX: 0, MaxX: 1, MinY: 0, MaxY: 0},
		},
		{
			name:   "viewport straddling four tiles",
			bounds: geo.NewBounds(geo.Pt(200, 200), geo.Pt(400, 400)),
			want:   TileRange{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1},
		},
		{
			name:   "negative pixel space",
			bounds: geo.NewBounds(geo.Pt(-300, -10), geo.Pt(10, 10)),
			want:   TileRange{MinX: -2, MaxX: 0, MinY: -1, MaxY: 0},
		},
	}

	for _, tt := range tests {
		got, err := PixelBoundsToTileRange(tt.bounds, size)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPixelBoundsToTileRangeInfinite(t *testing.T) {
	size := geo.Pt(256, 256)
	bad := []geo.Bounds{
		geo.NewBounds(geo.Pt(math.Inf(-1), 0), geo.Pt(10, 10)),
		geo.NewBounds(geo.Pt(0, 0), geo.Pt(math.NaN(), 10)),
	}

	for _, b := range bad {
		if _, err := PixelBoundsToTileRange(b, size); !errors.Is(err, ErrInfiniteTileRange) {
			t.Errorf("PixelBoundsToTileRange(%v) error = %v, want ErrInfiniteTileRange", b, err)
		}
	}
}

func TestTileRangeOps(t *testing.T) {
	r := TileRange{MinX: 2, MaxX: 5, MinY: 1, MaxY: 3}

	if !r.Contains(2, 1) || !r.Contains(5, 3) {
		t.Error("range should contain its own corners")
	}
	if r.Contains(6, 2) || r.Contains(3, 0) {
		t.Error("range should not contain tiles outside it")
	}
	if got := r.Count(); got != 12 {
		t.Errorf("Count() = %d, want 12", got)
	}
	if c := r.Center(); c.X != 3.5 || c.Y != 2 {
		t.Errorf("Center() = %v, want (3.5, 2)", c)
	}

	grown := r.Expand(2)
	want := TileRange{MinX: 0, MaxX: 7, MinY: -1, MaxY: 5}
	if grown != want {
		t.Errorf("Expand(2) = %+v, want %+v", grown, want)
	}

	if r.Empty() {
		t.Error("non-degenerate range reported empty")
	}
	if !(TileRange{MinX: 3, MaxX: 2, MinY: 0, MaxY: 0}).Empty() {
		t.Error("inverted range should be empty")
	}
	if (TileRange{MinX: 3, MaxX: 2, MinY: 0, MaxY: 0}).Count() != 0 {
		t.Error("inverted range should count zero tiles")
	}
}

func TestWrapInt(t *testing.T) {
	tests := []struct {
		x, lo, hi int
		want      int
	}{
		{0, 0, 4, 0},
		{3, 0, 4, 3},
		{4, 0, 4, 0},
		{5, 0, 4, 1},
		{-1, 0, 4, 3},
		{-4, 0, 4, 0},
		{-9, 0, 4, 3},
		{7, 2, 6, 3},
		{5, 3, 3, 5}, // degenerate interval passes through
	}

	for _, tt := range tests {
		if got := wrapInt(tt.x, tt.lo, tt.hi); got != tt.want {
			t.Errorf("wrapInt(%d, %d, %d) = %d, want %d", tt.x, tt.lo, tt.hi, got, tt.want)
		}
	}
}
