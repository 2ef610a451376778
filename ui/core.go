// Package ui provides the on-screen widgets of the map viewer: corner
// controls (zoom, scale bar, attribution) and floating panels.
package ui

import "github.com/hajimehoshi/ebiten/v2"

// Component represents the basic building block of the UI system.
// All UI elements must implement this interface.
type Component interface {
	Update() error
	Draw(screen *ebiten.Image)
	Bounds() Rectangle
	HandleInput(x, y float64, pressed bool) bool
	SetParent(parent Container)
	GetParent() Container
}

// Container represents a Component that can hold and manage other
// Components.
type Container interface {
	Component
	AddChild(child Component)
	RemoveChild(child Component)
	Children() []Component
}

// Rectangle represents the bounds of a Component.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether the point lies inside the rectangle.
func (r Rectangle) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Corner anchors a control to one corner of the screen.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Control is a Component pinned to a screen corner. The Controller
// stacks the controls sharing a corner and repositions them when the
// window resizes.
type Control interface {
	Component
	Corner() Corner
	SetPosition(x, y float64)
}
