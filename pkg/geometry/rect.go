package geometry

import "math"

// Point is a position in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size holds width and height dimensions in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty returns true if either dimension is zero or negative.
// An empty size usually means the element has not been laid out yet.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Along returns the extent of the size along the given axis.
func (s Size) Along(a Axis) float64 {
	if a == AxisX {
		return s.Width
	}
	return s.Height
}

// Rect is a rectangle in page coordinates, in the shape of a DOMRect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromLTRB builds a Rect from its four edges.
func RectFromLTRB(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Left returns the left edge.
func (r Rect) Left() float64 { return r.X }

// Top returns the top edge.
func (r Rect) Top() float64 { return r.Y }

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the dimensions of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r. Edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Intersect returns the overlap of two rectangles.
// Returns an empty Rect if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	left := math.Max(r.Left(), other.Left())
	top := math.Max(r.Top(), other.Top())
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if left >= right || top >= bottom {
		return Rect{}
	}
	return RectFromLTRB(left, top, right, bottom)
}

// Translate returns a copy of r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Start returns the leading edge along the axis (left or top).
func (r Rect) Start(a Axis) float64 {
	if a == AxisX {
		return r.Left()
	}
	return r.Top()
}

// End returns the trailing edge along the axis (right or bottom).
func (r Rect) End(a Axis) float64 {
	if a == AxisX {
		return r.Right()
	}
	return r.Bottom()
}

// Mid returns the center coordinate along the axis.
func (r Rect) Mid(a Axis) float64 {
	return (r.Start(a) + r.End(a)) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
