package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/OpticalFlyer/atlas/geo"
)

func (a *Atlas) handleTouchEvents() {
	touches := make([]ebiten.TouchID, 0, 8)
	touches = ebiten.AppendTouchIDs(touches)

	if a.lastTouchX == nil {
		a.lastTouchX = make(map[ebiten.TouchID]float64)
		a.lastTouchY = make(map[ebiten.TouchID]float64)
	}

	for _, id := range touches {
		if _, exists := a.lastTouchX[id]; !exists {
			x, y := ebiten.TouchPosition(id)
			a.lastTouchX[id] = float64(x)
			a.lastTouchY[id] = float64(y)
		}
	}

	for id := range a.lastTouchX {
		if !containsTouchID(touches, id) {
			delete(a.lastTouchX, id)
			delete(a.lastTouchY, id)
		}
	}

	if len(touches) == 0 {
		if a.touchActive {
			a.touchActive = false
			a.settleTouch()
		}
		return
	}

	switch len(touches) {
	case 1: // Single touch - pan
		a.touchActive = true
		id := touches[0]
		x, y := ebiten.TouchPosition(id)
		dx := float64(x) - a.lastTouchX[id]
		dy := float64(y) - a.lastTouchY[id]
		if dx != 0 || dy != 0 {
			_ = a.mv.PanBy(geo.Pt(-dx, -dy))
		}
		a.lastTouchX[id] = float64(x)
		a.lastTouchY[id] = float64(y)

	case 2: // Two finger touch - pinch to zoom
		a.touchActive = true
		id1, id2 := touches[0], touches[1]
		x1, y1 := ebiten.TouchPosition(id1)
		x2, y2 := ebiten.TouchPosition(id2)

		currentDist := distance(float64(x1), float64(y1), float64(x2), float64(y2))
		prevDist := distance(a.lastTouchX[id1], a.lastTouchY[id1],
			a.lastTouchX[id2], a.lastTouchY[id2])

		if prevDist > 0 && currentDist > 0 {
			midX := (float64(x1) + float64(x2)) / 2
			midY := (float64(y1) + float64(y2)) / 2
			if zoom, err := a.mv.Zoom(); err == nil {
				// The distance ratio maps straight to a fractional zoom
				// change around the pinch midpoint.
				_ = a.mv.SetZoomAround(geo.Pt(midX, midY),
					zoom+math.Log2(currentDist/prevDist))
			}
		}

		a.lastTouchX[id1], a.lastTouchY[id1] = float64(x1), float64(y1)
		a.lastTouchX[id2], a.lastTouchY[id2] = float64(x2), float64(y2)
	}
}

// settleTouch ends the gesture. A pinch left on a fractional zoom
// glides to the nearest snapped level; the animation fires the settle
// events itself.
func (a *Atlas) settleTouch() {
	zoom, err := a.mv.Zoom()
	if err != nil {
		return
	}
	snapped := zoom
	if snap := a.mv.Options().ZoomSnap; snap > 0 {
		snapped = math.Round(zoom/snap) * snap
	}
	if snapped != zoom {
		_ = a.mv.AnimateZoom(snapped, nil)
		return
	}
	a.mv.EndMove()
}

// Helper function to check if a TouchID is in a slice
func containsTouchID(ids []ebiten.TouchID, id ebiten.TouchID) bool {
	for _, tid := range ids {
		if tid == id {
			return true
		}
	}
	return false
}

// Helper function to calculate distance between two points
func distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}
