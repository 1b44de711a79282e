// Package lattice models the periodic unit cell: two basis lengths and
// the angle between them, constrained by the crystal family of the
// symmetry group anchored to the cell.
package lattice

import (
	"errors"
	"fmt"
	"math"

	"crystalpack/geometry"
)

// ErrDegenerateCell is returned when cell parameters violate
// a > 0, b > 0, 0 < gamma < pi, or the crystal family's constraints.
var ErrDegenerateCell = errors.New("lattice: degenerate cell")

// familyEps is the tolerance for matching a family's fixed parameters;
// accepted values are snapped to the exact constraint.
const familyEps = 1e-9

// Family enumerates the 2D crystal families. Each family fixes some cell
// parameters and leaves the rest as degrees of freedom for the optimizer.
type Family int

const (
	// Monoclinic (oblique): a, b and gamma all free.
	Monoclinic Family = iota
	// Orthorhombic (rectangular): a, b free, gamma fixed at pi/2.
	Orthorhombic
	// Tetragonal (square): a = b, gamma fixed at pi/2.
	Tetragonal
	// Hexagonal: a = b, gamma fixed at 2*pi/3.
	Hexagonal
)

func (f Family) String() string {
	switch f {
	case Monoclinic:
		return "monoclinic"
	case Orthorhombic:
		return "orthorhombic"
	case Tetragonal:
		return "tetragonal"
	case Hexagonal:
		return "hexagonal"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// FixedGamma returns the inter-axis angle the family prescribes, or
// (0, false) when gamma is a free parameter.
func (f Family) FixedGamma() (float64, bool) {
	switch f {
	case Orthorhombic, Tetragonal:
		return math.Pi / 2, true
	case Hexagonal:
		// The crystallographic convention for hexagonal lattices; the
		// three-fold symmetry operator tables assume this setting.
		return 2 * math.Pi / 3, true
	default:
		return 0, false
	}
}

// CouplesLengths reports whether the family forces a = b.
func (f Family) CouplesLengths() bool {
	return f == Tetragonal || f == Hexagonal
}

// Cell is a parametrized unit cell. The basis vectors in cartesian space
// are a = (A, 0) and b = (B*cos(gamma), B*sin(gamma)).
type Cell struct {
	a, b, gamma float64
	family      Family
}

// NewCell validates the parameters against the unit-cell invariant and
// the family constraints. Fixed parameters may be supplied within a small
// tolerance and are snapped to their exact values.
func NewCell(family Family, a, b, gamma float64) (Cell, error) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(gamma) ||
		math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsInf(gamma, 0) {
		return Cell{}, fmt.Errorf("%w: non-finite parameter", ErrDegenerateCell)
	}
	if a <= 0 || b <= 0 {
		return Cell{}, fmt.Errorf("%w: lengths a=%v b=%v must be positive", ErrDegenerateCell, a, b)
	}
	if gamma <= 0 || gamma >= math.Pi {
		return Cell{}, fmt.Errorf("%w: angle %v outside (0, pi)", ErrDegenerateCell, gamma)
	}
	if fixed, ok := family.FixedGamma(); ok {
		if math.Abs(gamma-fixed) > familyEps {
			return Cell{}, fmt.Errorf("%w: %s cells require gamma=%v, got %v", ErrDegenerateCell, family, fixed, gamma)
		}
		gamma = fixed
	}
	if family.CouplesLengths() {
		if math.Abs(a-b) > familyEps {
			return Cell{}, fmt.Errorf("%w: %s cells require a=b, got a=%v b=%v", ErrDegenerateCell, family, a, b)
		}
		b = a
	}
	return Cell{a: a, b: b, gamma: gamma, family: family}, nil
}

// Square returns a tetragonal cell with side length l, the most common
// test fixture.
func Square(l float64) (Cell, error) {
	return NewCell(Tetragonal, l, l, math.Pi/2)
}

// A returns the first basis length.
func (c Cell) A() float64 { return c.a }

// B returns the second basis length.
func (c Cell) B() float64 { return c.b }

// Gamma returns the inter-axis angle in radians.
func (c Cell) Gamma() float64 { return c.gamma }

// Family returns the crystal family the cell belongs to.
func (c Cell) Family() Family { return c.family }

// Area returns a*b*sin(gamma).
func (c Cell) Area() float64 {
	return c.a * c.b * math.Sin(c.gamma)
}

// Basis returns the two cartesian basis vectors.
func (c Cell) Basis() (geometry.Vector2D, geometry.Vector2D) {
	sin, cos := math.Sincos(c.gamma)
	return geometry.Vector2D{X: c.a, Y: 0},
		geometry.Vector2D{X: c.b * cos, Y: c.b * sin}
}

// ToCartesian maps fractional lattice coordinates to a cartesian point.
func (c Cell) ToCartesian(fx, fy float64) geometry.Point2D {
	av, bv := c.Basis()
	return geometry.Point2D{
		X: fx*av.X + fy*bv.X,
		Y: fx*av.Y + fy*bv.Y,
	}
}

// SetA replaces the first basis length, moving b with it for families
// that couple the lengths.
func (c *Cell) SetA(a float64) error {
	b := c.b
	if c.family.CouplesLengths() {
		b = a
	}
	next, err := NewCell(c.family, a, b, c.gamma)
	if err != nil {
		return err
	}
	*c = next
	return nil
}

// SetB replaces the second basis length. For families that couple the
// lengths this is the same as SetA.
func (c *Cell) SetB(b float64) error {
	a := c.a
	if c.family.CouplesLengths() {
		a = b
	}
	next, err := NewCell(c.family, a, b, c.gamma)
	if err != nil {
		return err
	}
	*c = next
	return nil
}

// SetGamma replaces the inter-axis angle. Fails for families with a
// fixed angle unless the value matches it.
func (c *Cell) SetGamma(gamma float64) error {
	next, err := NewCell(c.family, c.a, c.b, gamma)
	if err != nil {
		return err
	}
	*c = next
	return nil
}

// DegreesOfFreedom reports which of (a, b, gamma) the family leaves
// mutable. For length-coupled families only a is reported free; setting
// it moves both lengths.
func (c Cell) DegreesOfFreedom() (aFree, bFree, gammaFree bool) {
	_, gammaFixed := c.family.FixedGamma()
	return true, !c.family.CouplesLengths(), !gammaFixed
}
