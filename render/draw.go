package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/OpticalFlyer/atlas/tilemap"
)

// DrawTileLayer composites a tile layer onto the screen, back levels
// first so freshly loaded tiles fade in over their retained ancestors.
func DrawTileLayer(screen *ebiten.Image, l *tilemap.TileLayer) {
	size := float64(l.Options().TileSize)
	for _, level := range l.Levels() {
		translate, scale := l.LevelTransform(level)
		l.EachTile(level.Zoom, func(tile *tilemap.Tile) {
			ti, ok := tile.Element.(*TileImage)
			if !ok {
				return
			}
			eb := ti.Ebiten()
			if eb == nil {
				return
			}
			w := eb.Bounds().Dx()
			if w == 0 {
				return
			}

			op := &ebiten.DrawImageOptions{}
			op.Filter = ebiten.FilterLinear
			k := scale * size / float64(w)
			op.GeoM.Scale(k, k)
			op.GeoM.Translate(translate.X+tile.Pos.X*scale, translate.Y+tile.Pos.Y*scale)
			if tile.Opacity < 1 {
				op.ColorScale.ScaleAlpha(float32(tile.Opacity))
			}
			screen.DrawImage(eb, op)
		})
	}
}

// DrawTileDebug outlines every tile with its address. Loaded tiles get
// a red frame, pending ones yellow.
func DrawTileDebug(screen *ebiten.Image, l *tilemap.TileLayer) {
	size := float64(l.Options().TileSize)
	for _, level := range l.Levels() {
		translate, scale := l.LevelTransform(level)
		side := float32(size * scale)
		l.EachTile(level.Zoom, func(tile *tilemap.Tile) {
			x := float32(translate.X + tile.Pos.X*scale)
			y := float32(translate.Y + tile.Pos.Y*scale)

			frame := color.RGBA{R: 255, A: 255}
			if !tile.Loaded() {
				frame = color.RGBA{R: 255, G: 200, A: 255}
			}
			vector.StrokeRect(screen, x, y, side, side, 1, frame, false)

			label := fmt.Sprintf("%d/%d/%d", tile.Coords.Z, tile.Coords.X, tile.Coords.Y)
			ebitenutil.DebugPrintAt(screen, label, int(x)+2, int(y)+2)
		})
	}
}
