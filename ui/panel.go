package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type DockState int

const (
	dockNone DockState = iota
	dockLeft
	dockRight
	dockTop
	dockBottom
)

type resizableSides struct {
	left   bool
	right  bool
	top    bool
	bottom bool
}

const (
	titleBarHeight = 20.0
	resizeArea     = 5.0
	minPanelWidth  = 100.0
	minPanelHeight = 50.0
	previewAlpha   = 84
	panelAlpha     = 200
)

type ResizeState int

const (
	resizeNone ResizeState = iota
	resizeLeft
	resizeRight
	resizeTop
	resizeBottom
	resizeTopLeft
	resizeTopRight
	resizeBottomLeft
	resizeBottomRight
)

var _ Container = (*Panel)(nil)

// Panel is a floating window that can be dragged by its title bar,
// resized at its edges and docked against a screen edge. Child
// components are positioned relative to the panel's top-left corner.
type Panel struct {
	X, Y          float64
	Width, Height float64
	Title         string

	parent   Container
	children []Component

	// Docking state
	dockState     DockState
	isDockPreview bool

	// Undocked dimensions (saved before docking)
	undockedX, undockedY          float64
	undockedWidth, undockedHeight float64

	// Interaction state
	isDragging  bool
	isResizing  bool
	mouseDown   bool
	dragStartX  float64
	dragStartY  float64
	resizeState ResizeState
	startWidth  float64
	startHeight float64

	// Window dimensions
	windowWidth  int
	windowHeight int

	resizableSides resizableSides
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		X:              x,
		Y:              y,
		Width:          width,
		Height:         height,
		Title:          title,
		dockState:      dockNone,
		undockedX:      x,
		undockedY:      y,
		undockedWidth:  width,
		undockedHeight: height,
		windowWidth:    800,
		windowHeight:   600,
		resizableSides: resizableSides{
			left:   true,
			right:  true,
			top:    true,
			bottom: true,
		},
	}
}

func (p *Panel) SetParent(parent Container) { p.parent = parent }

func (p *Panel) GetParent() Container { return p.parent }

func (p *Panel) AddChild(child Component) {
	child.SetParent(p)
	p.children = append(p.children, child)
}

func (p *Panel) RemoveChild(child Component) {
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			child.SetParent(nil)
			return
		}
	}
}

func (p *Panel) Children() []Component { return p.children }

func (p *Panel) Bounds() Rectangle {
	return Rectangle{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

func (p *Panel) Update() error {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	p.updateCursor()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	if pressed {
		if !p.mouseDown {
			p.mouseDown = true
			p.beginInteraction(fx, fy)
		}
		if p.isDragging {
			p.dragTo(fx, fy)
		} else if p.isResizing {
			p.resizeTo(fx, fy)
		}
	} else {
		p.endInteraction()
	}

	for _, child := range p.children {
		if err := child.Update(); err != nil {
			return err
		}
	}
	return nil
}

// beginInteraction starts a drag or resize from a fresh mouse press.
func (p *Panel) beginInteraction(fx, fy float64) {
	if p.isInTitleBar(fx, fy) {
		p.isDragging = true

		if p.dockState == dockNone {
			// Save current undocked state before potential docking.
			p.undockedWidth = p.Width
			p.undockedHeight = p.Height
			p.undockedX = p.X
			p.undockedY = p.Y
		} else {
			// Undocking: restore the previous undocked dimensions and
			// keep the grab point under the cursor.
			relativeX := (fx - p.X) / p.Width
			p.dockState = dockNone
			p.isDockPreview = false
			p.Width = p.undockedWidth
			p.Height = p.undockedHeight
			p.X = fx - p.Width*relativeX
			p.Y = fy - titleBarHeight/2
			p.updateResizableSides()
		}

		p.dragStartX = fx - p.X
		p.dragStartY = fy - p.Y
		return
	}

	if state := p.getResizeArea(fx, fy); state != resizeNone {
		p.isResizing = true
		p.resizeState = state
		p.dragStartX = fx
		p.dragStartY = fy
		p.startWidth = p.Width
		p.startHeight = p.Height
	}
}

func (p *Panel) dragTo(fx, fy float64) {
	p.X = fx - p.dragStartX
	p.Y = fy - p.dragStartY
	p.checkDocking(fx, fy)
}

func (p *Panel) resizeTo(fx, fy float64) {
	deltaX := fx - p.dragStartX
	deltaY := fy - p.dragStartY

	switch p.resizeState {
	case resizeLeft:
		if p.dockState == dockRight {
			// Docked right: the panel grows leftward from the window edge.
			newWidth := max(minPanelWidth, p.startWidth-deltaX)
			p.X = float64(p.windowWidth) - newWidth
			p.Width = newWidth
		} else if p.dockState == dockNone {
			p.Width = max(minPanelWidth, p.startWidth-deltaX)
			p.X = p.dragStartX + deltaX
		}
	case resizeRight:
		if p.dockState == dockLeft || p.dockState == dockNone {
			p.Width = max(minPanelWidth, p.startWidth+deltaX)
		}
	case resizeTop:
		if p.dockState == dockBottom {
			newHeight := max(minPanelHeight, p.startHeight-deltaY)
			p.Y = float64(p.windowHeight) - newHeight
			p.Height = newHeight
		} else if p.dockState == dockNone {
			p.Height = max(minPanelHeight, p.startHeight-deltaY)
			p.Y = p.dragStartY + deltaY
		}
	case resizeBottom:
		if p.dockState == dockTop || p.dockState == dockNone {
			p.Height = max(minPanelHeight, p.startHeight+deltaY)
		}
	case resizeTopLeft:
		p.Width = max(minPanelWidth, p.startWidth-deltaX)
		p.Height = max(minPanelHeight, p.startHeight-deltaY)
		p.X = p.dragStartX + deltaX
		p.Y = p.dragStartY + deltaY
	case resizeTopRight:
		p.Width = max(minPanelWidth, p.startWidth+deltaX)
		p.Height = max(minPanelHeight, p.startHeight-deltaY)
		p.Y = p.dragStartY + deltaY
	case resizeBottomLeft:
		p.Width = max(minPanelWidth, p.startWidth-deltaX)
		p.Height = max(minPanelHeight, p.startHeight+deltaY)
		p.X = p.dragStartX + deltaX
	case resizeBottomRight:
		p.Width = max(minPanelWidth, p.startWidth+deltaX)
		p.Height = max(minPanelHeight, p.startHeight+deltaY)
	}

	if p.dockState == dockNone {
		p.undockedWidth = p.Width
		p.undockedHeight = p.Height
		p.undockedX = p.X
		p.undockedY = p.Y
	}
}

func (p *Panel) endInteraction() {
	if p.isDragging && p.isDockPreview {
		p.isDockPreview = false
		if p.dockState != dockNone {
			p.UpdateWindowSize(p.windowWidth, p.windowHeight)
		}
	}
	p.isDragging = false
	p.isResizing = false
	p.mouseDown = false
}

func (p *Panel) checkDocking(x, y float64) {
	prevDockState := p.dockState
	dockThreshold := 20.0

	currentX := p.X
	currentY := p.Y

	if x < dockThreshold {
		p.dockState = dockLeft
	} else if float64(p.windowWidth)-x < dockThreshold {
		p.dockState = dockRight
	} else if y < dockThreshold {
		p.dockState = dockTop
	} else if float64(p.windowHeight)-y < dockThreshold {
		p.dockState = dockBottom
	} else {
		p.dockState = dockNone
		if p.isDockPreview {
			// Restore to the current drag position.
			p.X = currentX
			p.Y = currentY
			p.Width = p.undockedWidth
			p.Height = p.undockedHeight
		}
		p.isDockPreview = false
		return
	}

	// Save undocked dimensions before the preview takes over.
	if prevDockState == dockNone && !p.isDockPreview {
		p.undockedWidth = p.Width
		p.undockedHeight = p.Height
		p.undockedX = p.X
		p.undockedY = p.Y
	}

	p.isDockPreview = true
	p.UpdateWindowSize(p.windowWidth, p.windowHeight)
}

func (p *Panel) UpdateWindowSize(width, height int) {
	p.windowWidth = width
	p.windowHeight = height

	switch p.dockState {
	case dockLeft:
		p.X = 0
		p.Y = 0
		p.Height = float64(height)
	case dockRight:
		p.Y = 0
		p.Height = float64(height)
		p.X = float64(width) - p.Width
	case dockTop:
		p.X = 0
		p.Y = 0
		p.Width = float64(width)
	case dockBottom:
		p.X = 0
		p.Width = float64(width)
		p.Y = float64(height) - p.Height
	}
	p.updateResizableSides()
}

func (p *Panel) getResizeArea(x, y float64) ResizeState {
	var left, right, top, bottom bool

	switch p.dockState {
	case dockLeft:
		right = x >= p.X+p.Width-resizeArea && x <= p.X+p.Width+resizeArea
	case dockRight:
		left = x >= p.X-resizeArea && x <= p.X+resizeArea
	case dockTop:
		bottom = y >= p.Y+p.Height-resizeArea && y <= p.Y+p.Height+resizeArea
	case dockBottom:
		top = y >= p.Y-resizeArea && y <= p.Y+resizeArea
	case dockNone:
		left = x >= p.X-resizeArea && x <= p.X+resizeArea && p.resizableSides.left
		right = x >= p.X+p.Width-resizeArea && x <= p.X+p.Width+resizeArea && p.resizableSides.right
		top = y >= p.Y-resizeArea && y <= p.Y+resizeArea && p.resizableSides.top
		bottom = y >= p.Y+p.Height-resizeArea && y <= p.Y+p.Height+resizeArea && p.resizableSides.bottom
	}

	if p.dockState != dockNone {
		// Docked panels expose a single resizable edge.
		switch {
		case left:
			return resizeLeft
		case right:
			return resizeRight
		case top:
			return resizeTop
		case bottom:
			return resizeBottom
		}
		return resizeNone
	}

	switch {
	case left && top:
		return resizeTopLeft
	case right && top:
		return resizeTopRight
	case left && bottom:
		return resizeBottomLeft
	case right && bottom:
		return resizeBottomRight
	case left:
		return resizeLeft
	case right:
		return resizeRight
	case top:
		return resizeTop
	case bottom:
		return resizeBottom
	}
	return resizeNone
}

func (p *Panel) updateCursor() {
	x, y := ebiten.CursorPosition()
	resizeState := p.getResizeArea(float64(x), float64(y))

	switch resizeState {
	case resizeLeft, resizeRight:
		ebiten.SetCursorShape(ebiten.CursorShapeEWResize)
	case resizeTop, resizeBottom:
		ebiten.SetCursorShape(ebiten.CursorShapeNSResize)
	case resizeTopLeft, resizeBottomRight:
		ebiten.SetCursorShape(ebiten.CursorShapeNWSEResize)
	case resizeTopRight, resizeBottomLeft:
		ebiten.SetCursorShape(ebiten.CursorShapeNESWResize)
	default:
		if p.isInTitleBar(float64(x), float64(y)) {
			ebiten.SetCursorShape(ebiten.CursorShapeMove)
		} else {
			ebiten.SetCursorShape(ebiten.CursorShapeDefault)
		}
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	var bgColor, titleColor color.RGBA
	if p.isDockPreview {
		bgColor = color.RGBA{33, 150, 243, previewAlpha}
		titleColor = color.RGBA{60, 60, 60, previewAlpha}
	} else {
		bgColor = color.RGBA{100, 100, 100, panelAlpha}
		titleColor = color.RGBA{60, 60, 60, panelAlpha}
	}

	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), bgColor, true)
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(titleBarHeight), titleColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X)+4, int(p.Y)+2)

	for _, child := range p.children {
		child.Draw(screen)
	}
}

// HandleInput takes screen coordinates and swallows everything inside
// the panel, forwarding panel-relative coordinates to the children.
func (p *Panel) HandleInput(x, y float64, pressed bool) bool {
	inside := p.Bounds().Contains(x, y)
	for _, child := range p.children {
		child.HandleInput(x-p.X, y-p.Y, pressed)
	}
	return inside
}

func (p *Panel) isInTitleBar(x, y float64) bool {
	// The resize area wins over the title bar.
	if p.getResizeArea(x, y) != resizeNone {
		return false
	}
	return x >= p.X && x <= p.X+p.Width &&
		y >= p.Y && y <= p.Y+titleBarHeight
}

func (p *Panel) updateResizableSides() {
	p.resizableSides = resizableSides{
		left:   p.dockState != dockRight,
		right:  p.dockState != dockLeft,
		top:    p.dockState != dockBottom,
		bottom: p.dockState != dockTop,
	}
}
