// Package tilemap implements the tile grid and the tile lifecycle: it
// decides which tiles the current view needs, asks a Source to load
// them, retains stand-in tiles across zoom changes, fades fresh tiles
// in and prunes what is no longer visible. Rendering is left to the
// caller; the layer exposes its levels and tiles in draw order.
package tilemap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OpticalFlyer/atlas/geo"
)

// ErrInfiniteTileRange reports a view whose tile range is unbounded,
// usually a sign of a corrupt zoom or viewport size.
var ErrInfiniteTileRange = errors.New("tilemap: attempted to load an infinite number of tiles")

// TileCoord addresses a tile on the grid. X and Y may lie outside the
// world range when the map wraps; Z is the integer zoom of the grid
// the tile belongs to.
type TileCoord struct {
	X int
	Y int
	Z int
}

// Key returns the canonical "x:y:z" form used to index tiles.
func (c TileCoord) Key() string {
	return fmt.Sprintf("%d:%d:%d", c.X, c.Y, c.Z)
}

func (c TileCoord) String() string {
	return c.Key()
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (TileCoord, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return TileCoord{}, fmt.Errorf("tilemap: malformed tile key %q", key)
	}
	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return TileCoord{}, fmt.Errorf("tilemap: malformed tile key %q: %w", key, err)
		}
		v[i] = n
	}
	return TileCoord{X: v[0], Y: v[1], Z: v[2]}, nil
}

// TileRange is an inclusive rectangle of tile indices at one zoom
// level.
type TileRange struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Empty reports whether the range contains no tiles.
func (r TileRange) Empty() bool {
	return r.MaxX < r.MinX || r.MaxY < r.MinY
}

// Count returns the number of tiles in the range.
func (r TileRange) Count() int {
	if r.Empty() {
		return 0
	}
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Contains reports whether the tile column x, row y lies in the range.
func (r TileRange) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Center returns the fractional center of the range, used to order
// tile loads from the inside out.
func (r TileRange) Center() geo.Point {
	return geo.Pt(
		float64(r.MinX+r.MaxX)/2,
		float64(r.MinY+r.MaxY)/2,
	)
}

// Expand grows the range by margin tiles on every side.
func (r TileRange) Expand(margin int) TileRange {
	return TileRange{
		MinX: r.MinX - margin,
		MaxX: r.MaxX + margin,
		MinY: r.MinY - margin,
		MaxY: r.MaxY + margin,
	}
}

// PixelBoundsToTileRange returns the tiles covering a pixel rectangle:
// floor(min/size) through ceil(max/size)-1 inclusive, so edge-touching
// pixels do not drag in an extra row. Non-finite bounds yield
// ErrInfiniteTileRange.
func PixelBoundsToTileRange(bounds geo.Bounds, tileSize geo.Point) (TileRange, error) {
	if !bounds.IsFinite() {
		return TileRange{}, ErrInfiniteTileRange
	}
	min := bounds.Min.UnscaleBy(tileSize).Floor()
	max := bounds.Max.UnscaleBy(tileSize).Ceil().Sub(geo.Pt(1, 1))
	r := TileRange{
		MinX: int(min.X),
		MaxX: int(max.X),
		MinY: int(min.Y),
		MaxY: int(max.Y),
	}
	return r, nil
}

// wrapInt maps x into [lo, hi) by modular arithmetic.
func wrapInt(x, lo, hi int) int {
	d := hi - lo
	if d <= 0 {
		return x
	}
	m := (x - lo) % d
	if m < 0 {
		m += d
	}
	return lo + m
}
