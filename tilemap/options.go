package tilemap

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/OpticalFlyer/atlas/geo"
)

// Options configures a TileLayer. Start from DefaultOptions and
// override what you need.
type Options struct {
	// TileSize is the edge length of a tile in pixels.
	TileSize int `validate:"gt=0"`

	// MinZoom and MaxZoom bound the zooms at which the layer shows
	// tiles at all. Outside them the layer goes empty.
	MinZoom int `validate:"gte=0"`
	MaxZoom int `validate:"gtefield=MinZoom"`

	// MinNativeZoom and MaxNativeZoom bound the zooms the source can
	// actually serve. Beyond them the layer keeps loading the nearest
	// native level and scales it. Negative means unset.
	MinNativeZoom int
	MaxNativeZoom int

	// KeepBuffer is how many extra rings of tiles around the viewport
	// survive pruning while they stay loaded.
	KeepBuffer int `validate:"gte=0"`

	// UpdateWhenIdle defers tile loads to the end of a pan instead of
	// loading continuously during it.
	UpdateWhenIdle bool

	// UpdateWhenZooming makes a continuous zoom gesture rebuild the
	// grid on every integer zoom it crosses. When false the grid only
	// rebuilds once the gesture ends.
	UpdateWhenZooming bool

	// UpdateInterval throttles mid-pan grid updates.
	UpdateInterval time.Duration `validate:"gte=0"`

	// ZoomResetThreshold is the zoom distance beyond which a jump
	// rebuilds the grid outright rather than keeping stand-in levels.
	ZoomResetThreshold int `validate:"gte=0"`

	// Bounds, when set, limits tile loads to the tiles intersecting
	// the given geographical rectangle.
	Bounds *geo.LatLngBounds

	// NoWrap disables horizontal (and vertical) world wrapping: each
	// tile loads once at its true coordinate or not at all.
	NoWrap bool

	// Attribution is the credit line for the tile data.
	Attribution string
}

// DefaultOptions returns the standard web-map tile settings.
func DefaultOptions() Options {
	return Options{
		TileSize:           256,
		MinZoom:            0,
		MaxZoom:            18,
		MinNativeZoom:      -1,
		MaxNativeZoom:      -1,
		KeepBuffer:         2,
		UpdateWhenZooming:  true,
		UpdateInterval:     200 * time.Millisecond,
		ZoomResetThreshold: 1,
	}
}

func (o Options) validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(o); err != nil {
		return fmt.Errorf("invalid tile layer options: %w", err)
	}
	if o.MinNativeZoom >= 0 && o.MaxNativeZoom >= 0 && o.MinNativeZoom > o.MaxNativeZoom {
		return fmt.Errorf("invalid tile layer options: MinNativeZoom %d above MaxNativeZoom %d",
			o.MinNativeZoom, o.MaxNativeZoom)
	}
	if o.Bounds != nil && !o.Bounds.IsValid() {
		return fmt.Errorf("invalid tile layer options: Bounds is not a valid rectangle")
	}
	return nil
}
