// Package packing aggregates a unit cell, the asymmetric-unit shape
// instances and a wallpaper group into a packed state, and answers the
// two questions the search loop asks of it: how dense is this packing,
// and is it free of overlaps.
package packing

import (
	"errors"
	"fmt"
	"math"

	"crystalpack/collide"
	"crystalpack/geometry"
	"crystalpack/lattice"
	"crystalpack/shape"
	"crystalpack/wallpaper"
)

var (
	// ErrInitialOverlap is returned when a caller-supplied starting
	// configuration already contains overlapping copies.
	ErrInitialOverlap = errors.New("packing: initial configuration contains overlaps")
	// ErrUnknownShape is returned when an instance references a shape id
	// that is not registered with the state.
	ErrUnknownShape = errors.New("packing: instance references unknown shape")
	// ErrFamilyMismatch is returned when the cell's crystal family does
	// not match the wallpaper group's.
	ErrFamilyMismatch = errors.New("packing: cell family does not match group family")
)

// Instance places a shape within the asymmetric unit: fractional cell
// coordinates plus a cartesian rotation and an optional reflection.
type Instance struct {
	ShapeID   string  `json:"shape_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Reflected bool    `json:"reflected"`
}

// Placement returns the instance's cartesian placement transform under
// the given cell.
func (in Instance) Placement(cell lattice.Cell) geometry.Transform {
	pos := cell.ToCartesian(in.X, in.Y)
	if in.Reflected {
		return geometry.NewReflection(in.Angle, pos.X, pos.Y)
	}
	return geometry.NewTransform(in.Angle, pos.X, pos.Y)
}

// State is a packed configuration: cell + asymmetric-unit instances +
// symmetry group. Shapes are immutable and shared between clones;
// instances and the cell are owned by the state and mutated by the
// optimizer's accepted proposals.
type State struct {
	group     wallpaper.Group
	cell      lattice.Cell
	shapes    map[string]*shape.Polygon
	instances []Instance

	// shell overrides the adaptive neighbor-shell radius when positive.
	shell int
}

// NewState validates shape references and the cell/group family match.
func NewState(group wallpaper.Group, cell lattice.Cell, shapes []*shape.Polygon, instances []Instance) (*State, error) {
	if cell.Family() != group.Family() {
		return nil, fmt.Errorf("%w: group %s needs a %s cell, got %s",
			ErrFamilyMismatch, group.Name(), group.Family(), cell.Family())
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("packing: state needs at least one instance")
	}
	byID := make(map[string]*shape.Polygon, len(shapes))
	for _, p := range shapes {
		byID[p.ID()] = p
	}
	for _, in := range instances {
		if _, ok := byID[in.ShapeID]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownShape, in.ShapeID)
		}
	}
	insts := make([]Instance, len(instances))
	copy(insts, instances)
	return &State{
		group:     group,
		cell:      cell,
		shapes:    byID,
		instances: insts,
	}, nil
}

// Group returns the wallpaper group.
func (s *State) Group() wallpaper.Group { return s.group }

// Cell returns a copy of the unit cell.
func (s *State) Cell() lattice.Cell { return s.cell }

// SetCell replaces the unit cell. The family must match the group's.
func (s *State) SetCell(c lattice.Cell) error {
	if c.Family() != s.group.Family() {
		return fmt.Errorf("%w: group %s needs a %s cell, got %s",
			ErrFamilyMismatch, s.group.Name(), s.group.Family(), c.Family())
	}
	s.cell = c
	return nil
}

// NumInstances returns the asymmetric-unit instance count.
func (s *State) NumInstances() int { return len(s.instances) }

// Instance returns the i-th instance.
func (s *State) Instance(i int) Instance { return s.instances[i] }

// Instances returns a copy of the instance list.
func (s *State) Instances() []Instance {
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// Shapes returns the registered shapes keyed by id.
func (s *State) Shapes() map[string]*shape.Polygon {
	out := make(map[string]*shape.Polygon, len(s.shapes))
	for k, v := range s.shapes {
		out[k] = v
	}
	return out
}

// MoveInstance shifts instance i by (dx, dy) in fractional coordinates,
// wrapping into [0, 1). Wrapping is sound under periodicity: the shifted
// copy is one of the instance's own lattice images.
func (s *State) MoveInstance(i int, dx, dy float64) {
	s.instances[i].X = wrapUnit(s.instances[i].X + dx)
	s.instances[i].Y = wrapUnit(s.instances[i].Y + dy)
}

// RotateInstance turns instance i by da radians.
func (s *State) RotateInstance(i int, da float64) {
	a := math.Mod(s.instances[i].Angle+da, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	s.instances[i].Angle = a
}

func wrapUnit(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
}

// SetShell fixes the neighbor-shell radius, overriding the adaptive
// heuristic. Zero restores adaptive behavior.
func (s *State) SetShell(n int) { s.shell = n }

// ShellRadius returns the neighbor-shell radius used for validity
// checks. The adaptive heuristic widens the shell for elongated or
// strongly sheared cells, where images from further lattice translations
// can still reach the home cell.
func (s *State) ShellRadius() int {
	if s.shell > 0 {
		return s.shell
	}
	ratio := s.cell.A() / s.cell.B()
	skew := math.Abs(s.cell.Gamma() - math.Pi/2)
	switch {
	case 0.5 < ratio && ratio < 2 && skew < 0.2:
		return 1
	case 0.3 < ratio && ratio < 3 && skew < 0.5:
		return 2
	default:
		return 3
	}
}

// TotalCopies returns the number of shape copies per unit cell:
// instances times group order.
func (s *State) TotalCopies() int {
	return len(s.instances) * s.group.Order()
}

// PackingFraction returns the fraction of the cell's area occupied by
// shape material.
func (s *State) PackingFraction() float64 {
	sum := 0.0
	for _, in := range s.instances {
		sum += s.shapes[in.ShapeID].Area()
	}
	return sum * float64(s.group.Order()) / s.cell.Area()
}

// Positions returns the cartesian placements of every symmetry copy in
// the home cell, in instance-major order. Renderers combine this with
// wallpaper.Group.Images to tile outward.
func (s *State) Positions() []geometry.Transform {
	ops := s.group.CartesianOps(s.cell)
	out := make([]geometry.Transform, 0, len(ops)*len(s.instances))
	for _, in := range s.instances {
		base := in.Placement(s.cell)
		for _, op := range ops {
			out = append(out, op.Compose(base))
		}
	}
	return out
}

// IsValid reports whether no two shape copies overlap: all pairs among
// the home-cell images, and every home-cell image against every image in
// the neighboring cells of the shell, excluding the trivial self-pair.
func (s *State) IsValid() bool {
	polys := s.homeImages()

	// Pairs within the home cell.
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			if collide.Intersects(polys[i], polys[j]) {
				return false
			}
		}
	}

	// Home images against periodic neighbors. Transforming a polygon is
	// itself costly, so the bounding-radius filter runs on predicted
	// centroids before any copy is materialized.
	shell := s.ShellRadius()
	av, bv := s.cell.Basis()
	for di := -shell; di <= shell; di++ {
		for dj := -shell; dj <= shell; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			off := av.Scale(float64(di)).Add(bv.Scale(float64(dj)))
			for _, home := range polys {
				for _, img := range polys {
					center := img.Centroid().Add(off)
					sumR := home.BoundingRadius() + img.BoundingRadius()
					if home.Centroid().DistanceSq(center) > sumR*sumR {
						continue
					}
					moved := img.Transformed(geometry.NewTransform(0, off.X, off.Y))
					if collide.Intersects(home, moved) {
						return false
					}
				}
			}
		}
	}
	return true
}

// homeImages materializes every symmetry copy in the home cell.
func (s *State) homeImages() []*shape.Polygon {
	ops := s.group.CartesianOps(s.cell)
	out := make([]*shape.Polygon, 0, len(ops)*len(s.instances))
	for _, in := range s.instances {
		base := in.Placement(s.cell)
		p := s.shapes[in.ShapeID]
		for _, op := range ops {
			out = append(out, p.Transformed(op.Compose(base)))
		}
	}
	return out
}

// Validate returns ErrInitialOverlap when the state is not valid. Used
// to reject caller-supplied starting configurations before a run.
func (s *State) Validate() error {
	if !s.IsValid() {
		return ErrInitialOverlap
	}
	return nil
}

// IsFinite reports whether all numeric state is finite. A false result
// signals a corrupted state from an arithmetic fault.
func (s *State) IsFinite() bool {
	if math.IsNaN(s.cell.A()) || math.IsNaN(s.cell.Gamma()) {
		return false
	}
	f := s.PackingFraction()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	for _, in := range s.instances {
		for _, v := range [...]float64{in.X, in.Y, in.Angle} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Clone performs a deep copy for checkpointing. Shapes are immutable and
// shared; everything mutable is copied.
func (s *State) Clone() *State {
	insts := make([]Instance, len(s.instances))
	copy(insts, s.instances)
	byID := make(map[string]*shape.Polygon, len(s.shapes))
	for k, v := range s.shapes {
		byID[k] = v
	}
	return &State{
		group:     s.group,
		cell:      s.cell,
		shapes:    byID,
		instances: insts,
		shell:     s.shell,
	}
}
