// Package geometry provides the 2D primitives the packing engine is built
// on: points, vectors and rigid isometries (rotation + translation +
// optional reflection). No scaling or shear is representable.
package geometry

import "math"

// Point2D represents a position in the plane.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector2D represents a displacement in the plane.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by v.
func (p Point2D) Add(v Vector2D) Point2D {
	return Point2D{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the displacement from q to p.
func (p Point2D) Sub(q Point2D) Vector2D {
	return Vector2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistanceSq returns the squared distance between p and q. Useful as a
// cheap comparison that avoids the square root.
func (p Point2D) DistanceSq(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Add returns the sum of two vectors.
func (v Vector2D) Add(w Vector2D) Vector2D {
	return Vector2D{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vector2D) Sub(w Vector2D) Vector2D {
	return Vector2D{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns v multiplied by s.
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and w.
func (v Vector2D) Dot(w Vector2D) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the z component of the cross product of v and w.
func (v Vector2D) Cross(w Vector2D) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Norm returns the length of v.
func (v Vector2D) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// NormSq returns the squared length of v.
func (v Vector2D) NormSq() float64 {
	return v.X*v.X + v.Y*v.Y
}
