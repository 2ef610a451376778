package mapview

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/proj"
)

// Options configures a Map. Use DefaultOptions for the customary
// starting point and override fields as needed; New validates the
// result.
type Options struct {
	// Width and Height give the viewport size in pixels.
	Width  int `validate:"gt=0"`
	Height int `validate:"gt=0"`

	// CRS selects the coordinate reference system. Nil means
	// proj.EPSG3857.
	CRS *proj.CRS

	// MinZoom and MaxZoom bound the commanded zoom level.
	MinZoom float64 `validate:"gte=0"`
	MaxZoom float64 `validate:"gtefield=MinZoom"`

	// ZoomSnap rounds commanded zoom levels to the nearest multiple.
	// Zero disables snapping and allows fractional zoom everywhere.
	ZoomSnap float64 `validate:"gte=0"`

	// ZoomDelta is the step used by ZoomIn, ZoomOut and the zoom
	// control.
	ZoomDelta float64 `validate:"gte=0"`

	// MaxBounds restricts panning so the view cannot leave the given
	// geographic rectangle. Nil leaves panning unrestricted.
	MaxBounds *geo.LatLngBounds

	// FadeAnimation makes freshly loaded tiles fade in instead of
	// appearing at once.
	FadeAnimation bool

	// ZoomAnimation animates zoom changes requested through
	// AnimateZoom, ZoomIn and ZoomOut.
	ZoomAnimation bool

	// ZoomAnimationThreshold disables the zoom animation when the
	// requested jump exceeds this many levels. Zero means 4.
	ZoomAnimationThreshold float64 `validate:"gte=0"`
}

// DefaultOptions returns the standard configuration for a viewport of
// the given size: EPSG:3857, zoom range 0-18, whole-level zoom snapping
// and both animations enabled.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:                  width,
		Height:                 height,
		CRS:                    proj.EPSG3857,
		MinZoom:                0,
		MaxZoom:                18,
		ZoomSnap:               1,
		ZoomDelta:              1,
		FadeAnimation:          true,
		ZoomAnimation:          true,
		ZoomAnimationThreshold: 4,
	}
}

func (o Options) validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(o)
	if err != nil {
		return fmt.Errorf("mapview: invalid options: %w", err)
	}
	if o.MaxBounds != nil && !o.MaxBounds.IsValid() {
		return fmt.Errorf("mapview: invalid options: empty MaxBounds")
	}
	return nil
}
