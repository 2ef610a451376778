package geo

// Bounds is an axis-aligned rectangle in planar pixel space. A zero
// Bounds is empty; use NewBounds or Extend to populate it.
type Bounds struct {
	Min Point
	Max Point

	set bool
}

// NewBounds returns the smallest rectangle containing both corners.
func NewBounds(a, b Point) Bounds {
	var bd Bounds
	bd = bd.Extend(a)
	bd = bd.Extend(b)
	return bd
}

// Extend returns the bounds grown to contain p.
func (b Bounds) Extend(p Point) Bounds {
	if !b.set {
		return Bounds{Min: p, Max: p, set: true}
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	return b
}

// IsValid reports whether the bounds contain at least one point.
func (b Bounds) IsValid() bool {
	return b.set
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Size returns the rectangle's extent as a Point.
func (b Bounds) Size() Point {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the rectangle, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// ContainsBounds reports whether other lies entirely inside b.
func (b Bounds) ContainsBounds(other Bounds) bool {
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y
}

// Intersects reports whether the rectangles share any point, touching
// edges included.
func (b Bounds) Intersects(other Bounds) bool {
	return other.Max.X >= b.Min.X && other.Min.X <= b.Max.X &&
		other.Max.Y >= b.Min.Y && other.Min.Y <= b.Max.Y
}

// Overlaps reports whether the rectangles share interior area. Unlike
// Intersects, merely touching edges do not count.
func (b Bounds) Overlaps(other Bounds) bool {
	return other.Max.X > b.Min.X && other.Min.X < b.Max.X &&
		other.Max.Y > b.Min.Y && other.Min.Y < b.Max.Y
}

// Pad returns the bounds grown by ratio of its own size on every side.
// Negative ratios shrink it.
func (b Bounds) Pad(ratio float64) Bounds {
	size := b.Size().MulBy(ratio)
	return Bounds{
		Min: b.Min.Sub(size),
		Max: b.Max.Add(size),
		set: b.set,
	}
}

// IsFinite reports whether all four coordinates are finite numbers.
func (b Bounds) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}
