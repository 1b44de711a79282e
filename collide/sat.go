// Package collide implements the exact overlap test between two placed
// polygons. This is the dominant cost of the packing search; the hot path
// is a separating-axis test over the shapes' cached convex parts, guarded
// by a cheap bounding-radius pre-filter.
package collide

import (
	"gonum.org/v1/gonum/floats"

	"crystalpack/geometry"
	"crystalpack/shape"
)

// axisEps is the tolerance for axis-interval overlap decisions. Touching
// edges project to intervals sharing only an endpoint; they must not
// count as overlap, and tolerance-free comparisons at the boundary would
// flip on rounding noise.
const axisEps = 1e-9

// Intersects reports whether two placed polygons overlap with strictly
// positive area. Shared edges and shared vertices do not count. The test
// is symmetric and invariant under applying the same rigid transform to
// both operands.
func Intersects(a, b *shape.Polygon) bool {
	// Bounding-radius pre-filter: too far apart to possibly touch.
	sumR := a.BoundingRadius() + b.BoundingRadius()
	if a.Centroid().DistanceSq(b.Centroid()) > sumR*sumR {
		return false
	}

	for _, pa := range a.ConvexParts() {
		for _, pb := range b.ConvexParts() {
			if convexOverlap(pa, pb) {
				return true
			}
		}
	}
	return false
}

// convexOverlap runs the separating-axis test on two convex vertex rings.
// If the projections onto any edge normal of either ring are disjoint (or
// merely touching), the rings do not overlap.
func convexOverlap(a, b []geometry.Point2D) bool {
	projA := make([]float64, len(a))
	projB := make([]float64, len(b))

	return !hasSeparatingAxis(a, b, projA, projB) &&
		!hasSeparatingAxis(b, a, projB, projA)
}

// hasSeparatingAxis projects both rings onto every edge normal of the
// first ring, reusing the supplied scratch buffers.
func hasSeparatingAxis(edges, other []geometry.Point2D, projEdges, projOther []float64) bool {
	n := len(edges)
	for i := 0; i < n; i++ {
		v := edges[i]
		w := edges[(i+1)%n]
		// Normal of the edge v->w. Orientation is irrelevant for the
		// interval comparison.
		axis := geometry.Vector2D{X: w.Y - v.Y, Y: v.X - w.X}

		for j, p := range edges {
			projEdges[j] = axis.X*p.X + axis.Y*p.Y
		}
		for j, p := range other {
			projOther[j] = axis.X*p.X + axis.Y*p.Y
		}

		minA, maxA := floats.Min(projEdges), floats.Max(projEdges)
		minB, maxB := floats.Min(projOther), floats.Max(projOther)

		// Overlap requires a positive-measure interval intersection.
		// The projections are unnormalized, so scale the tolerance by
		// the axis length.
		eps := axisEps * axis.Norm()
		if maxA-minB <= eps || maxB-minA <= eps {
			return true
		}
	}
	return false
}
