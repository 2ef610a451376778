package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/OpticalFlyer/atlas/geo"
	"github.com/OpticalFlyer/atlas/mapview"
)

const (
	scaleMaxWidth   = 100.0
	scaleTextHeight = 16.0
	scaleTickHeight = 6.0
)

var _ Control = (*ScaleControl)(nil)

// ScaleControl is a metric scale bar. Each update it measures the
// ground distance across the middle of the viewport, snaps it to a
// round number and sizes the bar to match.
type ScaleControl struct {
	x, y   float64
	parent Container
	m      *mapview.Map

	width float64
	label string
}

func NewScaleControl(m *mapview.Map) *ScaleControl {
	return &ScaleControl{m: m}
}

func (sc *ScaleControl) Corner() Corner { return BottomLeft }

func (sc *ScaleControl) SetPosition(x, y float64) {
	sc.x = x
	sc.y = y
}

func (sc *ScaleControl) SetParent(parent Container) { sc.parent = parent }

func (sc *ScaleControl) GetParent() Container { return sc.parent }

func (sc *ScaleControl) Bounds() Rectangle {
	return Rectangle{X: sc.x, Y: sc.y, Width: scaleMaxWidth, Height: scaleTextHeight + scaleTickHeight}
}

// BarWidth returns the current bar length in pixels, zero while the
// map has no view yet.
func (sc *ScaleControl) BarWidth() float64 { return sc.width }

// Label returns the current distance label, empty while hidden.
func (sc *ScaleControl) Label() string { return sc.label }

func (sc *ScaleControl) Update() error {
	if !sc.m.Loaded() {
		sc.width = 0
		sc.label = ""
		return nil
	}

	// Sample the resolution across the center of the view, where a
	// Mercator map distorts the least relative to what is on screen.
	size := sc.m.Size()
	mid := size.Y / 2
	left := sc.m.ContainerPointToLatLng(geo.Point{X: size.X/2 - scaleMaxWidth/2, Y: mid})
	right := sc.m.ContainerPointToLatLng(geo.Point{X: size.X/2 + scaleMaxWidth/2, Y: mid})
	maxMeters := sc.m.CRS().Distance(left, right)
	if maxMeters <= 0 {
		sc.width = 0
		sc.label = ""
		return nil
	}

	meters := roundScale(maxMeters)
	sc.width = scaleMaxWidth * meters / maxMeters
	if meters < 1000 {
		sc.label = fmt.Sprintf("%.0f m", meters)
	} else {
		sc.label = fmt.Sprintf("%.0f km", meters/1000)
	}
	return nil
}

// roundScale snaps a distance down to 1, 2, 3, 5 or 10 times a power
// of ten.
func roundScale(d float64) float64 {
	pow10 := math.Pow(10, math.Floor(math.Log10(d)))
	n := d / pow10
	switch {
	case n >= 10:
		return 10 * pow10
	case n >= 5:
		return 5 * pow10
	case n >= 3:
		return 3 * pow10
	case n >= 2:
		return 2 * pow10
	}
	return pow10
}

func (sc *ScaleControl) Draw(screen *ebiten.Image) {
	if sc.label == "" {
		return
	}
	barY := float32(sc.y + scaleTextHeight)
	endX := float32(sc.x + sc.width)
	vector.StrokeLine(screen, float32(sc.x), barY, endX, barY, 2, color.Black, true)
	vector.StrokeLine(screen, float32(sc.x), barY-scaleTickHeight, float32(sc.x), barY, 2, color.Black, true)
	vector.StrokeLine(screen, endX, barY-scaleTickHeight, endX, barY, 2, color.Black, true)
	ebitenutil.DebugPrintAt(screen, sc.label, int(sc.x), int(sc.y))
}

// HandleInput never swallows input; the bar is display only.
func (sc *ScaleControl) HandleInput(x, y float64, pressed bool) bool {
	return false
}
