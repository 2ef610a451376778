package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Controller owns every UI element: corner controls pinned to the
// screen edges and floating panels drawn above them.
type Controller struct {
	controls []Control
	panels   []*Panel

	windowWidth  int
	windowHeight int
}

func NewController() *Controller {
	return &Controller{
		windowWidth:  800,
		windowHeight: 600,
	}
}

// AddControl appends a corner control. Controls sharing a corner stack
// in insertion order, away from the edge.
func (c *Controller) AddControl(ctl Control) {
	c.controls = append(c.controls, ctl)
	c.layoutControls()
}

// AddPanel adds a floating panel.
func (c *Controller) AddPanel(panel *Panel) {
	panel.UpdateWindowSize(c.windowWidth, c.windowHeight)
	c.panels = append(c.panels, panel)
}

// Update updates all UI elements. Controls update before layout so a
// control that resizes itself is positioned with its new bounds.
func (c *Controller) Update() error {
	for _, ctl := range c.controls {
		if err := ctl.Update(); err != nil {
			return err
		}
	}
	c.layoutControls()
	for _, panel := range c.panels {
		if err := panel.Update(); err != nil {
			return err
		}
	}
	return nil
}

// Draw draws all UI elements, panels above controls.
func (c *Controller) Draw(screen *ebiten.Image) {
	for _, ctl := range c.controls {
		ctl.Draw(screen)
	}
	for _, panel := range c.panels {
		panel.Draw(screen)
	}
}

// HandleInput dispatches a pointer event in screen coordinates and
// reports whether the UI consumed it. Panels are tested front to back
// before the controls.
func (c *Controller) HandleInput(x, y float64, pressed bool) bool {
	handled := false
	for i := len(c.panels) - 1; i >= 0; i-- {
		if c.panels[i].HandleInput(x, y, pressed) {
			handled = true
		}
	}
	for _, ctl := range c.controls {
		if handled {
			// A covering panel took the event; feed the control a miss
			// so its hover state clears.
			ctl.HandleInput(-1, -1, pressed)
			continue
		}
		if ctl.HandleInput(x, y, pressed) {
			handled = true
		}
	}
	return handled
}

// UpdateWindowSize repositions docked panels and corner controls after
// a resize.
func (c *Controller) UpdateWindowSize(width, height int) {
	c.windowWidth = width
	c.windowHeight = height
	for _, panel := range c.panels {
		panel.UpdateWindowSize(width, height)
	}
	c.layoutControls()
}

func (c *Controller) layoutControls() {
	const margin, spacing = 10.0, 10.0
	w := float64(c.windowWidth)
	h := float64(c.windowHeight)

	topY := map[Corner]float64{TopLeft: margin, TopRight: margin}
	bottomY := map[Corner]float64{BottomLeft: h - margin, BottomRight: h - margin}

	for _, ctl := range c.controls {
		b := ctl.Bounds()
		switch corner := ctl.Corner(); corner {
		case TopLeft:
			ctl.SetPosition(margin, topY[corner])
			topY[corner] += b.Height + spacing
		case TopRight:
			ctl.SetPosition(w-margin-b.Width, topY[corner])
			topY[corner] += b.Height + spacing
		case BottomLeft:
			bottomY[corner] -= b.Height
			ctl.SetPosition(margin, bottomY[corner])
			bottomY[corner] -= spacing
		case BottomRight:
			bottomY[corner] -= b.Height
			ctl.SetPosition(w-margin-b.Width, bottomY[corner])
			bottomY[corner] -= spacing
		}
	}
}

// ShowDebugInfo draws the frame and tick rates in the top-left corner.
func (c *Controller) ShowDebugInfo(screen *ebiten.Image) {
	fps := ebiten.ActualFPS()
	tps := ebiten.ActualTPS()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f TPS: %.2f", fps, tps))
}

// IsInteractingWithUI reports whether a panel is mid-drag or
// mid-resize, so map gestures can stand down.
func (c *Controller) IsInteractingWithUI() bool {
	for _, panel := range c.panels {
		if panel.isDragging || panel.isResizing {
			return true
		}
	}
	return false
}
