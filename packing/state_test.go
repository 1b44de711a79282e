package packing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"crystalpack/geometry"
	"crystalpack/lattice"
	"crystalpack/shape"
	"crystalpack/wallpaper"
)

func unitSquare(t *testing.T) *shape.Polygon {
	t.Helper()
	p, err := shape.NewPolygon("square", []geometry.Point2D{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	})
	require.NoError(t, err)
	return p
}

func mustGroup(t *testing.T, name string) wallpaper.Group {
	t.Helper()
	g, err := wallpaper.GroupByName(name)
	require.NoError(t, err)
	return g
}

func mustCell(t *testing.T, family lattice.Family, a, b, gamma float64) lattice.Cell {
	t.Helper()
	c, err := lattice.NewCell(family, a, b, gamma)
	require.NoError(t, err)
	return c
}

func TestStatePerfectTiling(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	cell := mustCell(t, lattice.Monoclinic, 1, 1, math.Pi/2)

	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{
		{ShapeID: sq.ID()},
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, st.PackingFraction(), 1e-12)
	assert.True(t, st.IsValid(), "edge-to-edge tiling must count as valid")
	assert.NoError(t, st.Validate())
}

func TestStateOverlappingInstances(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	cell := mustCell(t, lattice.Monoclinic, 1, 1, math.Pi/2)

	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{
		{ShapeID: sq.ID()},
		{ShapeID: sq.ID(), X: 0.5, Y: 0.5},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, st.PackingFraction(), 1e-12)
	assert.False(t, st.IsValid())
	assert.ErrorIs(t, st.Validate(), ErrInitialOverlap)
}

func TestStateHalfFilledCell(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	cell := mustCell(t, lattice.Monoclinic, 2, 1, math.Pi/2)

	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{
		{ShapeID: sq.ID()},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, st.PackingFraction(), 1e-12)
	assert.True(t, st.IsValid())
}

func TestNewStateErrors(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	p4 := mustGroup(t, "p4")
	mono := mustCell(t, lattice.Monoclinic, 1, 1, math.Pi/2)

	_, err := NewState(p4, mono, []*shape.Polygon{sq}, []Instance{{ShapeID: sq.ID()}})
	assert.ErrorIs(t, err, ErrFamilyMismatch)

	_, err = NewState(p1, mono, []*shape.Polygon{sq}, []Instance{{ShapeID: "nope"}})
	assert.ErrorIs(t, err, ErrUnknownShape)

	_, err = NewState(p1, mono, []*shape.Polygon{sq}, nil)
	assert.Error(t, err)
}

func TestSetCellFamilyMismatch(t *testing.T) {
	sq := unitSquare(t)
	p4 := mustGroup(t, "p4")
	square := mustCell(t, lattice.Tetragonal, 8, 8, math.Pi/2)

	st, err := NewState(p4, square, []*shape.Polygon{sq}, []Instance{{ShapeID: sq.ID()}})
	require.NoError(t, err)

	mono := mustCell(t, lattice.Monoclinic, 8, 8, math.Pi/3)
	assert.ErrorIs(t, st.SetCell(mono), ErrFamilyMismatch)
	assert.Equal(t, lattice.Tetragonal, st.Cell().Family())

	bigger := mustCell(t, lattice.Tetragonal, 10, 10, math.Pi/2)
	require.NoError(t, st.SetCell(bigger))
	assert.InDelta(t, 10.0, st.Cell().A(), 1e-12)
}

func TestMoveInstanceWraps(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	cell := mustCell(t, lattice.Monoclinic, 4, 4, math.Pi/2)

	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{
		{ShapeID: sq.ID(), X: 0.5, Y: 0.5},
	})
	require.NoError(t, err)

	st.MoveInstance(0, 0.7, -0.8)
	in := st.Instance(0)
	assert.InDelta(t, 0.2, in.X, 1e-12)
	assert.InDelta(t, 0.7, in.Y, 1e-12)
}

func TestRotateInstanceWraps(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")
	cell := mustCell(t, lattice.Monoclinic, 4, 4, math.Pi/2)

	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{
		{ShapeID: sq.ID(), Angle: 3 * math.Pi / 2},
	})
	require.NoError(t, err)

	st.RotateInstance(0, math.Pi)
	assert.InDelta(t, math.Pi/2, st.Instance(0).Angle, 1e-12)

	st.RotateInstance(0, -math.Pi)
	assert.InDelta(t, 3*math.Pi/2, st.Instance(0).Angle, 1e-12)
}

func TestShellRadius(t *testing.T) {
	sq := unitSquare(t)
	p1 := mustGroup(t, "p1")

	cases := []struct {
		a, b, gamma float64
		want        int
	}{
		{1, 1, math.Pi / 2, 1},
		{2.5, 1, math.Pi / 2, 2},
		{1, 1, math.Pi/2 - 0.3, 2},
		{4, 1, math.Pi / 2, 3},
	}
	for _, tc := range cases {
		cell := mustCell(t, lattice.Monoclinic, tc.a, tc.b, tc.gamma)
		st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{{ShapeID: sq.ID()}})
		require.NoError(t, err)
		assert.Equal(t, tc.want, st.ShellRadius(), "a=%v b=%v gamma=%v", tc.a, tc.b, tc.gamma)
	}

	cell := mustCell(t, lattice.Monoclinic, 1, 1, math.Pi/2)
	st, err := NewState(p1, cell, []*shape.Polygon{sq}, []Instance{{ShapeID: sq.ID()}})
	require.NoError(t, err)
	st.SetShell(3)
	assert.Equal(t, 3, st.ShellRadius())
	st.SetShell(0)
	assert.Equal(t, 1, st.ShellRadius())
}

func TestInitialStateP1(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "p1"), 1)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, st.Cell().A(), 1e-12)
	assert.InDelta(t, 0.125, st.PackingFraction(), 1e-12)
	assert.True(t, st.IsValid())
}

func TestInitialStatePmg(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "pmg"), 1)
	require.NoError(t, err)

	assert.InDelta(t, 16.0, st.Cell().A(), 1e-12)
	assert.InDelta(t, 1.0/32.0, st.PackingFraction(), 1e-12)
	assert.Equal(t, 4, st.TotalCopies())
	assert.True(t, st.IsValid())
}

func TestInitialStateAlias(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "p2mg"), 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/32.0, st.PackingFraction(), 1e-12)
}

func TestTotalCopies(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "pmg"), 2)
	require.NoError(t, err)
	assert.Equal(t, 8, st.TotalCopies())
	assert.Equal(t, 2, st.NumInstances())
}

func TestPositionsCount(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "p2"), 1)
	require.NoError(t, err)

	positions := st.Positions()
	require.Len(t, positions, 2)

	want := st.Instance(0).Placement(st.Cell()).Translation()
	assert.InDelta(t, want.X, positions[0].Translation().X, 1e-12)
	assert.InDelta(t, want.Y, positions[0].Translation().Y, 1e-12)
}

func TestCloneIndependence(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "p2"), 1)
	require.NoError(t, err)

	clone := st.Clone()
	clone.MoveInstance(0, 0.1, 0.2)
	clone.RotateInstance(0, 1)
	smaller := mustCell(t, lattice.Monoclinic, 2, 2, math.Pi/2)
	require.NoError(t, clone.SetCell(smaller))

	assert.InDelta(t, 0.25, st.Instance(0).X, 1e-12)
	assert.Zero(t, st.Instance(0).Angle)
	assert.InDelta(t, 8.0, st.Cell().A(), 1e-12)
}

func TestIsFinite(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)

	st, err := InitialState(diamond, mustGroup(t, "p1"), 1)
	require.NoError(t, err)
	assert.True(t, st.IsFinite())

	st.MoveInstance(0, math.NaN(), 0)
	assert.False(t, st.IsFinite())
}

func TestRandomStateDeterminism(t *testing.T) {
	diamond, err := shape.RegularPolygon("diamond", 4, 1)
	require.NoError(t, err)
	group := mustGroup(t, "p2")

	a, err := RandomState(diamond, group, 2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := RandomState(diamond, group, 2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.True(t, a.IsValid())
	assert.Equal(t, a.Instances(), b.Instances())
	assert.InDelta(t, a.PackingFraction(), b.PackingFraction(), 1e-15)
}
