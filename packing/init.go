package packing

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"crystalpack/lattice"
	"crystalpack/shape"
	"crystalpack/wallpaper"
)

// randomAttempts bounds the rejection sampling in RandomState.
const randomAttempts = 100

// defaultCell builds a cell of the group's family, generously sized so
// that n instances and all their symmetry copies fit without overlap:
// side length 4 * boundingRadius * totalCopies.
func defaultCell(poly *shape.Polygon, group wallpaper.Group, n int) (lattice.Cell, error) {
	size := 4 * poly.BoundingRadius() * float64(n*group.Order())
	gamma, fixed := group.Family().FixedGamma()
	if !fixed {
		gamma = math.Pi / 2
	}
	return lattice.NewCell(group.Family(), size, size, gamma)
}

// InitialState builds a loosely packed starting state: n instances of
// the shape spread along the cell diagonal of an oversized cell, offset
// from the origin by half the symmetry spacing to stay clear of rotation
// centers. The optimizer's job is to shrink it.
func InitialState(poly *shape.Polygon, group wallpaper.Group, n int) (*State, error) {
	if n < 1 {
		return nil, fmt.Errorf("packing: need at least one instance, got %d", n)
	}
	cell, err := defaultCell(poly, group, n)
	if err != nil {
		return nil, err
	}
	base := 0.5 / float64(group.Order())
	instances := make([]Instance, n)
	for i := range instances {
		f := wrapUnit(base + float64(i)/float64(n))
		instances[i] = Instance{ShapeID: poly.ID(), X: f, Y: f}
	}
	return NewState(group, cell, []*shape.Polygon{poly}, instances)
}

// RandomState samples instance positions and orientations uniformly in
// the oversized starting cell until a valid configuration is found, using
// only the supplied random stream.
func RandomState(poly *shape.Polygon, group wallpaper.Group, n int, rng *rand.Rand) (*State, error) {
	if n < 1 {
		return nil, fmt.Errorf("packing: need at least one instance, got %d", n)
	}
	cell, err := defaultCell(poly, group, n)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < randomAttempts; attempt++ {
		instances := make([]Instance, n)
		for i := range instances {
			instances[i] = Instance{
				ShapeID: poly.ID(),
				X:       rng.Float64(),
				Y:       rng.Float64(),
				Angle:   rng.Float64() * 2 * math.Pi,
			}
		}
		st, err := NewState(group, cell, []*shape.Polygon{poly}, instances)
		if err != nil {
			return nil, err
		}
		if st.IsValid() {
			return st, nil
		}
	}
	return nil, fmt.Errorf("packing: no valid random configuration found in %d attempts", randomAttempts)
}
