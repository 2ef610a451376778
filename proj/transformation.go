package proj

import "github.com/OpticalFlyer/atlas/geo"

// Transformation is an affine map of projected coordinates into pixel
// space: x' = scale * (A*x + B), y' = scale * (C*y + D). Tiled CRSes
// use it to shift the projected origin to the top-left corner of the
// world and to flip the y axis so that pixel y grows downward.
type Transformation struct {
	A, B, C, D float64
}

// Transform applies the transformation at the given scale. A scale of
// zero is treated as one.
func (t Transformation) Transform(p geo.Point, scale float64) geo.Point {
	if scale == 0 {
		scale = 1
	}
	return geo.Point{
		X: scale * (t.A*p.X + t.B),
		Y: scale * (t.C*p.Y + t.D),
	}
}

// Untransform inverts Transform at the given scale.
func (t Transformation) Untransform(p geo.Point, scale float64) geo.Point {
	if scale == 0 {
		scale = 1
	}
	return geo.Point{
		X: (p.X/scale - t.B) / t.A,
		Y: (p.Y/scale - t.D) / t.C,
	}
}
