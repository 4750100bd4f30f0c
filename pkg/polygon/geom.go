package polygon

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for position fixed-point detection.
const Epsilon = 1e-9

// Point is a position in the editor plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Add translates p by v.
func (p Point) Add(v Vec2) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub computes the vector from o to p.
func (p Point) Sub(o Point) Vec2 {
	return Vec2{X: p.X - o.X, Y: p.Y - o.Y}
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Midpoint returns the point halfway between p and o.
func (p Point) Midpoint(o Point) Point {
	return Point{X: 0.5 * (p.X + o.X), Y: 0.5 * (p.Y + o.Y)}
}

// Lerp linearly interpolates between p and o.
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// Near reports whether two points coincide within eps.
func (p Point) Near(o Point, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// Vec2 is a displacement in the editor plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul scales v by f.
func (v Vec2) Mul(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Negate returns -v.
func (v Vec2) Negate() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the 2D cross product (signed area) of v and o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Hypot returns the length of v.
func (v Vec2) Hypot() float64 {
	return math.Hypot(v.X, v.Y)
}

// Hypot2 returns the squared length of v.
func (v Vec2) Hypot2() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec2) Normalize() Vec2 {
	h := v.Hypot()
	if h <= Epsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / h, Y: v.Y / h}
}

// IsZero reports whether v is degenerate (length below Epsilon).
func (v Vec2) IsZero() bool {
	return v.Hypot() <= Epsilon
}
