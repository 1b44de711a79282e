package collide

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crystalpack/geometry"
	"crystalpack/shape"
)

func unitSquareAt(t testing.TB, x, y float64) *shape.Polygon {
	t.Helper()
	p, err := shape.NewPolygon("square", []geometry.Point2D{
		{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1},
	})
	require.NoError(t, err)
	return p
}

func TestOverlappingSquares(t *testing.T) {
	a := unitSquareAt(t, 0, 0)
	b := unitSquareAt(t, 0.5, 0.5)
	assert.True(t, Intersects(a, b))
	assert.True(t, Intersects(b, a), "intersection must be symmetric")
}

func TestDisjointSquares(t *testing.T) {
	a := unitSquareAt(t, 0, 0)
	b := unitSquareAt(t, 3, 0)
	assert.False(t, Intersects(a, b))
	assert.False(t, Intersects(b, a))
}

func TestTouchingEdgesDoNotOverlap(t *testing.T) {
	a := unitSquareAt(t, 0, 0)

	// Shared edge.
	b := unitSquareAt(t, 1, 0)
	assert.False(t, Intersects(a, b))

	// Shared corner.
	c := unitSquareAt(t, 1, 1)
	assert.False(t, Intersects(a, c))

	// Any actual penetration, however small above tolerance, counts.
	d := unitSquareAt(t, 1-1e-6, 0)
	assert.True(t, Intersects(a, d))
}

func TestRotatedPolygons(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	a := diamond.Transformed(geometry.NewTransform(0, 0, 0))
	b := diamond.Transformed(geometry.NewTransform(math.Pi/4, 1.2, 0))
	assert.True(t, Intersects(a, b))

	far := diamond.Transformed(geometry.NewTransform(math.Pi/4, 5, 0))
	assert.False(t, Intersects(a, far))
}

func TestRigidMotionInvariance(t *testing.T) {
	hex, err := shape.RegularPolygon("hexagon", 6, 1)
	require.NoError(t, err)

	a := hex.Transformed(geometry.NewTransform(0.3, 0, 0))
	b := hex.Transformed(geometry.NewTransform(-0.8, 1.9, 0.1))
	want := Intersects(a, b)

	moves := []geometry.Transform{
		geometry.NewTransform(1.1, -4, 7),
		geometry.NewReflection(2.4, 0.5, -3),
		geometry.NewTransform(-math.Pi/2, 100, 100),
	}
	for _, m := range moves {
		got := Intersects(a.Transformed(m), b.Transformed(m))
		assert.Equal(t, want, got, "result changed under rigid motion")
	}
}

func TestBoundingRadiusPrefilter(t *testing.T) {
	a := unitSquareAt(t, 0, 0)
	b := unitSquareAt(t, 10, 10)

	// Centroid distance far exceeds the radius sum; the answer must be
	// false regardless of the exact test.
	dist := a.Centroid().Distance(b.Centroid())
	require.Greater(t, dist, a.BoundingRadius()+b.BoundingRadius())
	assert.False(t, Intersects(a, b))
}

func TestConcaveNotchDoesNotFalsePositive(t *testing.T) {
	// A C-shaped polygon whose notch holds a small square. Their bounding
	// circles overlap heavily, and a convex-hull test would report
	// intersection; the decomposition must not.
	c, err := shape.NewPolygon("C", []geometry.Point2D{
		{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2},
		{X: 3, Y: 3}, {X: 0, Y: 3},
	})
	require.NoError(t, err)

	inner, err := shape.NewPolygon("plug", []geometry.Point2D{
		{X: 1.5, Y: 1.2}, {X: 2.5, Y: 1.2}, {X: 2.5, Y: 1.8}, {X: 1.5, Y: 1.8},
	})
	require.NoError(t, err)

	assert.False(t, Intersects(c, inner), "shape inside the notch does not overlap")

	// Push the plug into the C's lower arm.
	pushed := inner.Transformed(geometry.NewTransform(0, 0, -0.5))
	assert.True(t, Intersects(c, pushed))
}

func BenchmarkIntersectsNear(b *testing.B) {
	for _, sides := range []int{4, 16, 64, 256} {
		poly, err := shape.RegularPolygon("polygon", sides, 1)
		require.NoError(b, err)
		s1 := poly.Transformed(geometry.NewTransform(math.Pi/3, 0.2, -0.3))
		s2 := poly.Transformed(geometry.NewTransform(-math.Pi/3, -0.2, 0.3))

		b.Run(sidesName(sides), func(b *testing.B) {
			for b.Loop() {
				Intersects(s1, s2)
			}
		})
	}
}

func BenchmarkIntersectsFar(b *testing.B) {
	for _, sides := range []int{4, 64} {
		poly, err := shape.RegularPolygon("polygon", sides, 1)
		require.NoError(b, err)
		s1 := poly.Transformed(geometry.NewTransform(math.Pi/3, 0.2, -5.3))
		s2 := poly.Transformed(geometry.NewTransform(-math.Pi/3, -0.2, 5.3))

		b.Run(sidesName(sides), func(b *testing.B) {
			for b.Loop() {
				Intersects(s1, s2)
			}
		})
	}
}

func BenchmarkTransformed(b *testing.B) {
	for _, sides := range []int{4, 16, 64, 256} {
		poly, err := shape.RegularPolygon("polygon", sides, 1)
		require.NoError(b, err)
		tr := geometry.NewTransform(math.Pi/3, 0.2, -5.3)

		b.Run(sidesName(sides), func(b *testing.B) {
			for b.Loop() {
				poly.Transformed(tr)
			}
		})
	}
}

func sidesName(sides int) string {
	switch sides {
	case 4:
		return "square"
	case 16:
		return "16-gon"
	case 64:
		return "64-gon"
	default:
		return "256-gon"
	}
}
