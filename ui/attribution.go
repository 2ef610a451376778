package ui

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/OpticalFlyer/atlas/mapview"
)

const (
	attributionPadding = 4.0
	attributionHeight  = 18.0
)

var _ Control = (*AttributionControl)(nil)

// AttributionControl shows the credit lines of every layer that
// reports one, joined into a single strip in the bottom-right corner.
type AttributionControl struct {
	x, y   float64
	parent Container

	m      *mapview.Map
	prefix string
	text   string
	width  float64
}

func NewAttributionControl(m *mapview.Map) *AttributionControl {
	return &AttributionControl{m: m, prefix: "Atlas"}
}

// SetPrefix replaces the leading label. An empty prefix drops it.
func (ac *AttributionControl) SetPrefix(prefix string) { ac.prefix = prefix }

func (ac *AttributionControl) Corner() Corner { return BottomRight }

func (ac *AttributionControl) SetPosition(x, y float64) {
	ac.x = x
	ac.y = y
}

func (ac *AttributionControl) SetParent(parent Container) { ac.parent = parent }

func (ac *AttributionControl) GetParent() Container { return ac.parent }

func (ac *AttributionControl) Bounds() Rectangle {
	return Rectangle{X: ac.x, Y: ac.y, Width: ac.width, Height: attributionHeight}
}

// Text returns the strip as currently assembled.
func (ac *AttributionControl) Text() string { return ac.text }

func (ac *AttributionControl) Update() error {
	var parts []string
	seen := map[string]bool{}
	ac.m.EachLayer(func(id string, l mapview.Layer) {
		src, ok := l.(interface{ Attribution() string })
		if !ok {
			return
		}
		if a := src.Attribution(); a != "" && !seen[a] {
			seen[a] = true
			parts = append(parts, a)
		}
	})

	credits := strings.Join(parts, ", ")
	switch {
	case ac.prefix == "":
		ac.text = credits
	case credits == "":
		ac.text = ac.prefix
	default:
		ac.text = ac.prefix + " | " + credits
	}
	ac.width = float64(6*len(ac.text)) + 2*attributionPadding
	return nil
}

func (ac *AttributionControl) Draw(screen *ebiten.Image) {
	if ac.text == "" {
		return
	}
	vector.DrawFilledRect(screen, float32(ac.x), float32(ac.y),
		float32(ac.width), attributionHeight, color.RGBA{255, 255, 255, 200}, true)
	ebitenutil.DebugPrintAt(screen, ac.text, int(ac.x+attributionPadding), int(ac.y+1))
}

// HandleInput swallows clicks on the strip so they do not pan the map.
func (ac *AttributionControl) HandleInput(x, y float64, pressed bool) bool {
	return ac.text != "" && ac.Bounds().Contains(x, y)
}
