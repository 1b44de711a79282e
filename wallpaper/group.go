// Package wallpaper holds the closed catalog of the 17 crystallographic
// wallpaper groups and generates the symmetry-equivalent placements of a
// shape instance under a group and a unit cell. Periodic images are never
// materialized as owned data; they are computed on demand from an
// instance placement, an operator index and a lattice offset.
package wallpaper

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"crystalpack/geometry"
	"crystalpack/lattice"
)

// ErrUnknownGroup is returned for a name that is not one of the 17
// wallpaper groups (or an accepted alias).
var ErrUnknownGroup = errors.New("wallpaper: unknown group")

// Group is one of the 17 wallpaper groups: its general-position symmetry
// operators, crystal family and lattice centering. Groups are value types
// obtained from the catalog; the zero value is not a valid group.
type Group struct {
	name     string
	family   lattice.Family
	centered bool
	ops      []operator
}

// Name returns the canonical short symbol (p1, pmg, p4m, ...).
func (g Group) Name() string { return g.name }

// Family returns the crystal family the group's cell must belong to.
func (g Group) Family() lattice.Family { return g.family }

// Centered reports whether the lattice is centered (cm and cmm) rather
// than primitive.
func (g Group) Centered() bool { return g.centered }

// Order returns the number of symmetry-equivalent copies generated per
// asymmetric-unit instance: one per operator, doubled by centering.
func (g Group) Order() int {
	if g.centered {
		return 2 * len(g.ops)
	}
	return len(g.ops)
}

// CartesianOps conjugates every fractional operator through the cell
// basis, yielding the rigid transforms the group induces in physical
// space. The identity operator is always first. Centered groups
// contribute a second copy of each operator shifted by the (1/2, 1/2)
// centering translation.
func (g Group) CartesianOps(cell lattice.Cell) []geometry.Transform {
	av, bv := cell.Basis()
	// Column-major basis matrix C and its inverse.
	c00, c01 := av.X, bv.X
	c10, c11 := av.Y, bv.Y
	det := c00*c11 - c01*c10
	// Only the first column of C^-1 is needed: the decomposed angle is
	// read off the first column of L = C*M*C^-1.
	i00 := c11 / det
	i10 := -c10 / det

	out := make([]geometry.Transform, 0, g.Order())
	emit := func(op operator, extraX, extraY float64) {
		m := op.m
		// L = C * M * C^-1; orthogonal whenever the cell satisfies the
		// group's family constraints.
		t00 := c00*m[0] + c01*m[2]
		t01 := c00*m[1] + c01*m[3]
		t10 := c10*m[0] + c11*m[2]
		t11 := c10*m[1] + c11*m[3]
		l00 := t00*i00 + t01*i10
		l10 := t10*i00 + t11*i10

		fx := op.t.X + extraX
		fy := op.t.Y + extraY
		trans := cell.ToCartesian(fx, fy)

		out = append(out, geometry.Transform{
			Angle: math.Atan2(l10, l00),
			T:     geometry.Vector2D{X: trans.X, Y: trans.Y},
			// Conjugation preserves the determinant, so the fractional
			// linear part already tells rotation from reflection.
			Mirror: m[0]*m[3]-m[1]*m[2] < 0,
		})
	}

	for _, op := range g.ops {
		emit(op, 0, 0)
	}
	if g.centered {
		for _, op := range g.ops {
			emit(op, 0.5, 0.5)
		}
	}
	return out
}

// Images returns a finite, restartable lazy sequence of the cartesian
// placements of an instance under every symmetry operator combined with
// every lattice translation (i, j), |i|,|j| <= shell. The instance's own
// placement (identity operator, zero offset) is included.
func (g Group) Images(placement geometry.Transform, cell lattice.Cell, shell int) iter.Seq[geometry.Transform] {
	ops := g.CartesianOps(cell)
	av, bv := cell.Basis()
	return func(yield func(geometry.Transform) bool) {
		for i := -shell; i <= shell; i++ {
			for j := -shell; j <= shell; j++ {
				off := av.Scale(float64(i)).Add(bv.Scale(float64(j)))
				for _, op := range ops {
					op.T = op.T.Add(off)
					if !yield(op.Compose(placement)) {
						return
					}
				}
			}
		}
	}
}

// GroupByName looks up a group by canonical symbol or accepted alias
// (e.g. "p2mm" for pmm). Matching is case-insensitive.
func GroupByName(name string) (Group, error) {
	key := normalize(name)
	if canon, ok := aliases[key]; ok {
		key = canon
	}
	g, ok := catalog[key]
	if !ok {
		return Group{}, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	return g, nil
}

// Groups returns all 17 groups in catalog order.
func Groups() []Group {
	out := make([]Group, len(order))
	for i, name := range order {
		out[i] = catalog[name]
	}
	return out
}
