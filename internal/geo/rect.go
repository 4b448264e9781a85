package geo

// Rect is an axis-aligned rectangle on the Mercator plane. Bounds are
// inclusive.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewRect builds a Rect from two opposite corners in any order.
func NewRect(a, b Point) Rect {
	return Rect{
		Min: Point{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Point{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// LeftTop returns the upper-left corner.
func (r Rect) LeftTop() Point { return Point{X: r.Min.X, Y: r.Max.Y} }

// RightBottom returns the lower-right corner.
func (r Rect) RightBottom() Point { return Point{X: r.Max.X, Y: r.Min.Y} }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// ClosestPoint returns the point of r nearest to p; p itself when inside.
func (r Rect) ClosestPoint(p Point) Point {
	return Point{X: clamp(p.X, r.Min.X, r.Max.X), Y: clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// DiagonalMeters is the great-circle length of the rectangle diagonal.
func (r Rect) DiagonalMeters() float64 {
	return DistanceOnEarth(r.LeftTop(), r.RightBottom())
}
