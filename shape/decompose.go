package shape

import (
	"fmt"

	"crystalpack/geometry"
)

const convexEps = 1e-12

// decompose splits a simple counter-clockwise polygon into convex parts.
// Convex polygons are returned as a single part; concave polygons are
// ear-clipped into triangles. The decomposition happens once at shape
// construction and is cached, never recomputed during the search loop.
func decompose(verts []geometry.Point2D) ([][]geometry.Point2D, error) {
	if isConvex(verts) {
		part := make([]geometry.Point2D, len(verts))
		copy(part, verts)
		return [][]geometry.Point2D{part}, nil
	}
	return earClip(verts)
}

// isConvex reports whether every turn of the CCW boundary is a left turn
// (collinear vertices are tolerated).
func isConvex(verts []geometry.Point2D) bool {
	n := len(verts)
	for i := 0; i < n; i++ {
		if orient(verts[i], verts[(i+1)%n], verts[(i+2)%n]) < -convexEps {
			return false
		}
	}
	return true
}

// earClip triangulates a simple CCW polygon. Each triangle is a convex
// part. Standard ear-clipping: repeatedly remove a convex vertex whose
// triangle contains no other remaining vertex.
func earClip(verts []geometry.Point2D) ([][]geometry.Point2D, error) {
	idx := make([]int, len(verts))
	for i := range idx {
		idx[i] = i
	}

	var parts [][]geometry.Point2D
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := verts[idx[(i+len(idx)-1)%len(idx)]]
			cur := verts[idx[i]]
			next := verts[idx[(i+1)%len(idx)]]

			if orient(prev, cur, next) <= convexEps {
				continue // reflex or collinear vertex, not an ear
			}
			if containsOtherVertex(verts, idx, i, prev, cur, next) {
				continue
			}

			parts = append(parts, []geometry.Point2D{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// A simple polygon always has an ear; reaching this means the
			// input slipped past the construction checks.
			return nil, fmt.Errorf("%w: triangulation failed", ErrDegenerateShape)
		}
	}
	parts = append(parts, []geometry.Point2D{verts[idx[0]], verts[idx[1]], verts[idx[2]]})
	return parts, nil
}

func containsOtherVertex(verts []geometry.Point2D, idx []int, ear int, a, b, c geometry.Point2D) bool {
	for j, vi := range idx {
		if j == ear || j == (ear+len(idx)-1)%len(idx) || j == (ear+1)%len(idx) {
			continue
		}
		if pointInTriangle(verts[vi], a, b, c) {
			return true
		}
	}
	return false
}

// pointInTriangle tests strict interior containment; points on the
// triangle boundary do not block an ear.
func pointInTriangle(p, a, b, c geometry.Point2D) bool {
	return orient(a, b, p) > convexEps &&
		orient(b, c, p) > convexEps &&
		orient(c, a, p) > convexEps
}
