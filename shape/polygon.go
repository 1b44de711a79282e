// Package shape models the planar shapes being packed: simple polygons
// with counter-clockwise winding and strictly positive area. Derived
// quantities (area, centroid, bounding radius, convex decomposition) are
// computed once at construction and cached, since the search loop reads
// them millions of times.
package shape

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"crystalpack/geometry"
)

// ErrDegenerateShape is returned when a polygon cannot be constructed:
// fewer than three vertices, non-positive (or clockwise) area, a
// zero-length edge, or a self-intersecting boundary.
var ErrDegenerateShape = errors.New("shape: degenerate polygon")

const edgeEps = 1e-12

// Polygon is an immutable simple polygon. Instances reference polygons by
// ID rather than copying vertex data.
type Polygon struct {
	id   string
	name string

	vertices []geometry.Point2D

	area           float64
	centroid       geometry.Point2D
	boundingRadius float64

	// Convex decomposition, computed once. A convex polygon is its own
	// single part; concave polygons are ear-clipped into triangles.
	parts [][]geometry.Point2D
}

// NewPolygon validates the vertex list and builds a polygon with all
// derived quantities cached. Vertices must be ordered counter-clockwise
// and describe a simple (non-self-intersecting) boundary.
func NewPolygon(name string, vertices []geometry.Point2D) (*Polygon, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 vertices, got %d", ErrDegenerateShape, len(vertices))
	}
	verts := make([]geometry.Point2D, len(vertices))
	copy(verts, vertices)

	for i, v := range verts {
		if !v.IsFinite() {
			return nil, fmt.Errorf("%w: vertex %d is not finite", ErrDegenerateShape, i)
		}
		next := verts[(i+1)%len(verts)]
		if v.DistanceSq(next) <= edgeEps {
			return nil, fmt.Errorf("%w: zero-length edge at vertex %d", ErrDegenerateShape, i)
		}
	}

	area := signedArea(verts)
	if area <= 0 {
		return nil, fmt.Errorf("%w: area %v is not positive (vertices must wind counter-clockwise)", ErrDegenerateShape, area)
	}

	if selfIntersects(verts) {
		return nil, fmt.Errorf("%w: boundary self-intersects", ErrDegenerateShape)
	}

	centroid := polygonCentroid(verts, area)
	radius := 0.0
	for _, v := range verts {
		if d := centroid.Distance(v); d > radius {
			radius = d
		}
	}

	parts, err := decompose(verts)
	if err != nil {
		return nil, err
	}

	return &Polygon{
		id:             uuid.New().String()[:8],
		name:           name,
		vertices:       verts,
		area:           area,
		centroid:       centroid,
		boundingRadius: radius,
		parts:          parts,
	}, nil
}

// RegularPolygon builds a regular n-gon of the given circumradius centred
// on the origin, with the first vertex on the positive x axis.
func RegularPolygon(name string, sides int, radius float64) (*Polygon, error) {
	if sides < 3 {
		return nil, fmt.Errorf("%w: need at least 3 sides, got %d", ErrDegenerateShape, sides)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius %v is not positive", ErrDegenerateShape, radius)
	}
	verts := make([]geometry.Point2D, sides)
	for i := range verts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(sides))
		verts[i] = geometry.Point2D{X: radius * cos, Y: radius * sin}
	}
	return NewPolygon(name, verts)
}

// ID returns the polygon's identifier.
func (p *Polygon) ID() string { return p.id }

// Name returns the polygon's display name.
func (p *Polygon) Name() string { return p.name }

// Area returns the enclosed area (shoelace formula, cached).
func (p *Polygon) Area() float64 { return p.area }

// Centroid returns the area centroid.
func (p *Polygon) Centroid() geometry.Point2D { return p.centroid }

// BoundingRadius returns the maximum distance from the centroid to any
// vertex. Used as a cheap pre-filter before exact intersection testing.
func (p *Polygon) BoundingRadius() float64 { return p.boundingRadius }

// Vertices returns a copy of the vertex list.
func (p *Polygon) Vertices() []geometry.Point2D {
	out := make([]geometry.Point2D, len(p.vertices))
	copy(out, p.vertices)
	return out
}

// ConvexParts returns the cached convex decomposition. The returned
// slices are shared and must not be modified.
func (p *Polygon) ConvexParts() [][]geometry.Point2D { return p.parts }

// Transformed returns a copy of the polygon with the rigid transform
// applied to every vertex and every cached convex part. Winding is
// preserved: mirrored copies have their vertex order reversed so the
// result is counter-clockwise again. Area and bounding radius are
// invariant under isometries and are carried over unchanged.
func (p *Polygon) Transformed(t geometry.Transform) *Polygon {
	verts := make([]geometry.Point2D, len(p.vertices))
	for i, v := range p.vertices {
		verts[i] = t.Apply(v)
	}
	parts := make([][]geometry.Point2D, len(p.parts))
	for i, part := range p.parts {
		moved := make([]geometry.Point2D, len(part))
		for j, v := range part {
			moved[j] = t.Apply(v)
		}
		if t.Mirror {
			reverse(moved)
		}
		parts[i] = moved
	}
	if t.Mirror {
		reverse(verts)
	}
	return &Polygon{
		id:             p.id,
		name:           p.name,
		vertices:       verts,
		area:           p.area,
		centroid:       t.Apply(p.centroid),
		boundingRadius: p.boundingRadius,
		parts:          parts,
	}
}

func reverse(verts []geometry.Point2D) {
	for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
		verts[i], verts[j] = verts[j], verts[i]
	}
}

// signedArea computes the shoelace sum; positive for counter-clockwise
// winding.
func signedArea(verts []geometry.Point2D) float64 {
	sum := 0.0
	for i, v := range verts {
		next := verts[(i+1)%len(verts)]
		sum += v.X*next.Y - next.X*v.Y
	}
	return sum / 2
}

func polygonCentroid(verts []geometry.Point2D, area float64) geometry.Point2D {
	var cx, cy float64
	for i, v := range verts {
		next := verts[(i+1)%len(verts)]
		cross := v.X*next.Y - next.X*v.Y
		cx += (v.X + next.X) * cross
		cy += (v.Y + next.Y) * cross
	}
	return geometry.Point2D{X: cx / (6 * area), Y: cy / (6 * area)}
}

// selfIntersects checks every pair of non-adjacent edges for a proper
// crossing. Quadratic, but construction happens once per shape, never in
// the search loop.
func selfIntersects(verts []geometry.Point2D) bool {
	n := len(verts)
	for i := 0; i < n; i++ {
		a1 := verts[i]
		a2 := verts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip adjacent edges (sharing an endpoint).
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := verts[j]
			b2 := verts[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing of two segments (intersection
// in the interior of both).
func segmentsCross(a1, a2, b1, b2 geometry.Point2D) bool {
	d1 := orient(b1, b2, a1)
	d2 := orient(b1, b2, a2)
	d3 := orient(a1, a2, b1)
	d4 := orient(a1, a2, b2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(a, b, c geometry.Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
