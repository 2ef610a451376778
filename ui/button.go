package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var _ Component = (*Button)(nil)

// Button is a clickable rectangle with a text label. Its position is
// relative to its parent container; the click fires on release inside
// the button.
type Button struct {
	x, y          float64
	width, height float64
	text          string
	onClick       func()
	parent        Container

	// State
	isHovered bool
	isPressed bool
}

func NewButton(x, y, width, height float64, text string, onClick func()) *Button {
	return &Button{
		x:       x,
		y:       y,
		width:   width,
		height:  height,
		text:    text,
		onClick: onClick,
	}
}

func (b *Button) SetParent(parent Container) {
	b.parent = parent
}

func (b *Button) GetParent() Container {
	return b.parent
}

func (b *Button) Update() error {
	return nil
}

func (b *Button) Draw(screen *ebiten.Image) {
	var bgColor color.Color
	if b.isPressed {
		bgColor = color.RGBA{100, 100, 100, 255}
	} else if b.isHovered {
		bgColor = color.RGBA{180, 180, 180, 255}
	} else {
		bgColor = color.RGBA{150, 150, 150, 255}
	}

	absoluteX := b.x
	absoluteY := b.y
	if b.parent != nil {
		parentBounds := b.parent.Bounds()
		absoluteX += parentBounds.X
		absoluteY += parentBounds.Y
	}

	vector.DrawFilledRect(screen, float32(absoluteX), float32(absoluteY),
		float32(b.width), float32(b.height), bgColor, true)
	vector.StrokeRect(screen, float32(absoluteX), float32(absoluteY),
		float32(b.width), float32(b.height), 1, color.Black, true)

	labelX := absoluteX + (b.width-float64(6*len(b.text)))/2
	labelY := absoluteY + b.height/2 - 8
	ebitenutil.DebugPrintAt(screen, b.text, int(labelX), int(labelY))
}

// HandleInput takes parent-relative coordinates. It returns true while
// the point is inside the button.
func (b *Button) HandleInput(x, y float64, pressed bool) bool {
	if x >= b.x && x <= b.x+b.width &&
		y >= b.y && y <= b.y+b.height {
		b.isHovered = true

		if pressed {
			b.isPressed = true
		} else if b.isPressed {
			b.isPressed = false
			if b.onClick != nil {
				b.onClick()
			}
		}
		return true
	}

	b.isHovered = false
	b.isPressed = false
	return false
}

func (b *Button) Bounds() Rectangle {
	return Rectangle{
		X:      b.x,
		Y:      b.y,
		Width:  b.width,
		Height: b.height,
	}
}
