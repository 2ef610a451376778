package geo

import (
	"fmt"
	"math"
)

// Point is a position in planar pixel space. Depending on context it is
// absolute (world pixels at some zoom), relative to the pixel origin, or
// relative to the viewport's top-left corner.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns p translated by the negation of other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// MulBy returns p scaled by a scalar factor.
func (p Point) MulBy(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// DivBy returns p divided by a scalar factor.
func (p Point) DivBy(factor float64) Point {
	return Point{X: p.X / factor, Y: p.Y / factor}
}

// ScaleBy multiplies the components of p by the components of other.
func (p Point) ScaleBy(other Point) Point {
	return Point{X: p.X * other.X, Y: p.Y * other.Y}
}

// UnscaleBy divides the components of p by the components of other.
func (p Point) UnscaleBy(other Point) Point {
	return Point{X: p.X / other.X, Y: p.Y / other.Y}
}

// Round returns p with both components rounded half away from zero.
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Floor returns p with both components rounded toward negative infinity.
func (p Point) Floor() Point {
	return Point{X: math.Floor(p.X), Y: math.Floor(p.Y)}
}

// Ceil returns p with both components rounded toward positive infinity.
func (p Point) Ceil() Point {
	return Point{X: math.Ceil(p.X), Y: math.Ceil(p.Y)}
}

// DistanceTo returns the Euclidean distance between p and other.
func (p Point) DistanceTo(other Point) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals reports exact component equality.
func (p Point) Equals(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

// IsFinite reports whether both components are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%g, %g)", p.X, p.Y)
}
