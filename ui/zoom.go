package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/OpticalFlyer/atlas/mapview"
)

const zoomButtonSize = 26.0

var _ Control = (*ZoomControl)(nil)

// ZoomControl is the classic corner widget with a zoom-in and a
// zoom-out button stacked vertically.
type ZoomControl struct {
	x, y     float64
	parent   Container
	children []Component
}

func NewZoomControl(m *mapview.Map) *ZoomControl {
	zc := &ZoomControl{}
	zc.AddChild(NewButton(0, 0, zoomButtonSize, zoomButtonSize, "+", func() {
		_ = m.ZoomIn()
	}))
	zc.AddChild(NewButton(0, zoomButtonSize, zoomButtonSize, zoomButtonSize, "-", func() {
		_ = m.ZoomOut()
	}))
	return zc
}

func (zc *ZoomControl) Corner() Corner { return TopLeft }

func (zc *ZoomControl) SetPosition(x, y float64) {
	zc.x = x
	zc.y = y
}

func (zc *ZoomControl) SetParent(parent Container) { zc.parent = parent }

func (zc *ZoomControl) GetParent() Container { return zc.parent }

func (zc *ZoomControl) AddChild(child Component) {
	child.SetParent(zc)
	zc.children = append(zc.children, child)
}

func (zc *ZoomControl) RemoveChild(child Component) {
	for i, c := range zc.children {
		if c == child {
			zc.children = append(zc.children[:i:i], zc.children[i+1:]...)
			child.SetParent(nil)
			return
		}
	}
}

func (zc *ZoomControl) Children() []Component { return zc.children }

func (zc *ZoomControl) Bounds() Rectangle {
	return Rectangle{X: zc.x, Y: zc.y, Width: zoomButtonSize, Height: 2 * zoomButtonSize}
}

func (zc *ZoomControl) Update() error {
	for _, child := range zc.children {
		if err := child.Update(); err != nil {
			return err
		}
	}
	return nil
}

func (zc *ZoomControl) Draw(screen *ebiten.Image) {
	for _, child := range zc.children {
		child.Draw(screen)
	}
}

// HandleInput takes screen coordinates. Children always see the event
// so they can drop hover state when the cursor leaves them.
func (zc *ZoomControl) HandleInput(x, y float64, pressed bool) bool {
	handled := false
	for _, child := range zc.children {
		if child.HandleInput(x-zc.x, y-zc.y, pressed) {
			handled = true
		}
	}
	return handled
}
