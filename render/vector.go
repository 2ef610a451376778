package render

import (
	"image"
	"image/color"
	"math"

	earcut "github.com/flywave/go-earcut"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/OpticalFlyer/atlas/layer"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// DrawVectorLayer draws the layer's visible overlays onto screen:
// polygon fills, then strokes, then circles and markers.
func DrawVectorLayer(screen *ebiten.Image, v *layer.VectorLayer) {
	for _, p := range v.ScreenPaths() {
		if p.Closed {
			fillPath(screen, p)
		}
		strokePath(screen, p)
	}

	for _, c := range v.ScreenCircles() {
		cx, cy, r := float32(c.Center.X), float32(c.Center.Y), float32(c.Radius)
		if c.Style.FillColor.A > 0 {
			vector.DrawFilledCircle(screen, cx, cy, r, c.Style.FillColor, true)
		}
		if c.Style.StrokeWidth > 0 {
			vector.StrokeCircle(screen, cx, cy, r, c.Style.StrokeWidth, c.Style.StrokeColor, true)
		}
	}

	for _, m := range v.ScreenMarkers() {
		drawMarker(screen, m)
	}
}

func strokePath(screen *ebiten.Image, p layer.Path) {
	if p.Style.StrokeWidth <= 0 {
		return
	}
	for _, ring := range p.Rings {
		for i := 1; i < len(ring); i++ {
			vector.StrokeLine(screen,
				float32(ring[i-1].X), float32(ring[i-1].Y),
				float32(ring[i].X), float32(ring[i].Y),
				p.Style.StrokeWidth, p.Style.StrokeColor, true)
		}
		if p.Closed && len(ring) > 2 {
			last := ring[len(ring)-1]
			vector.StrokeLine(screen,
				float32(last.X), float32(last.Y),
				float32(ring[0].X), float32(ring[0].Y),
				p.Style.StrokeWidth, p.Style.StrokeColor, true)
		}
	}
}

// fillPath triangulates the path, holes included, and fills it with a
// single DrawTriangles call.
func fillPath(screen *ebiten.Image, p layer.Path) {
	if p.Style.FillColor.A == 0 {
		return
	}

	var flat []float64
	var holes []int
	for i, ring := range p.Rings {
		if i > 0 {
			holes = append(holes, len(flat)/2)
		}
		for _, pt := range ring {
			flat = append(flat, pt.X, pt.Y)
		}
	}
	// Triangle indices are 16 bit; a path this dense is beyond what a
	// screen-space fill can show anyway.
	if len(flat) < 6 || len(flat)/2 > math.MaxUint16 {
		return
	}

	indices, err := earcut.Earcut(flat, holes, 2)
	if err != nil || len(indices) == 0 {
		return
	}

	cr := float32(p.Style.FillColor.R) / 255
	cg := float32(p.Style.FillColor.G) / 255
	cb := float32(p.Style.FillColor.B) / 255
	ca := float32(p.Style.FillColor.A) / 255

	vs := make([]ebiten.Vertex, len(flat)/2)
	for i := range vs {
		vs[i] = ebiten.Vertex{
			DstX:   float32(flat[2*i]),
			DstY:   float32(flat[2*i+1]),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	is := make([]uint16, len(indices))
	for i, idx := range indices {
		is[i] = uint16(idx)
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(vs, is, whiteSubImage, op)
}

func drawMarker(screen *ebiten.Image, m layer.ScreenMarker) {
	if m.Image == nil {
		// Stand-in pin for markers without art.
		vector.DrawFilledCircle(screen, float32(m.Pos.X), float32(m.Pos.Y), 5,
			color.RGBA{0x33, 0x88, 0xff, 0xff}, true)
		vector.StrokeCircle(screen, float32(m.Pos.X), float32(m.Pos.Y), 5, 2,
			color.White, true)
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(m.Pos.X-m.Anchor.X, m.Pos.Y-m.Anchor.Y)
	screen.DrawImage(m.Image, op)
}
