package packing

import (
	"fmt"

	"crystalpack/geometry"
	"crystalpack/lattice"
	"crystalpack/shape"
	"crystalpack/wallpaper"
)

// Snapshot is the JSON-serializable form of a State: cell parameters,
// shape definitions and per-instance (x, y, angle, reflected) tuples.
// Instances reference shapes by index into the Shapes slice so a
// round-trip rebuilds identical references.
type Snapshot struct {
	Group     string        `json:"group"`
	Cell      CellParams    `json:"cell"`
	Shapes    []ShapeDef    `json:"shapes"`
	Instances []InstanceDef `json:"instances"`
	Shell     int           `json:"shell,omitempty"`
}

// CellParams holds the serialized unit-cell parameters.
type CellParams struct {
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Gamma float64 `json:"gamma"`
}

// ShapeDef holds a serialized shape's name and vertices.
type ShapeDef struct {
	Name     string             `json:"name"`
	Vertices []geometry.Point2D `json:"vertices"`
}

// InstanceDef is the serialized form of an Instance.
type InstanceDef struct {
	Shape     int     `json:"shape"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Reflected bool    `json:"reflected"`
}

// Snapshot captures the state in serializable form.
func (s *State) Snapshot() Snapshot {
	// Deterministic shape ordering: first-use order over instances.
	index := make(map[string]int)
	var shapes []ShapeDef
	instances := make([]InstanceDef, len(s.instances))
	for i, in := range s.instances {
		idx, ok := index[in.ShapeID]
		if !ok {
			p := s.shapes[in.ShapeID]
			idx = len(shapes)
			index[in.ShapeID] = idx
			shapes = append(shapes, ShapeDef{Name: p.Name(), Vertices: p.Vertices()})
		}
		instances[i] = InstanceDef{
			Shape:     idx,
			X:         in.X,
			Y:         in.Y,
			Angle:     in.Angle,
			Reflected: in.Reflected,
		}
	}
	return Snapshot{
		Group: s.group.Name(),
		Cell: CellParams{
			A:     s.cell.A(),
			B:     s.cell.B(),
			Gamma: s.cell.Gamma(),
		},
		Shapes:    shapes,
		Instances: instances,
		Shell:     s.shell,
	}
}

// FromSnapshot reconstructs a State, re-validating every component the
// same way direct construction does.
func FromSnapshot(snap Snapshot) (*State, error) {
	group, err := wallpaper.GroupByName(snap.Group)
	if err != nil {
		return nil, err
	}
	cell, err := lattice.NewCell(group.Family(), snap.Cell.A, snap.Cell.B, snap.Cell.Gamma)
	if err != nil {
		return nil, err
	}
	shapes := make([]*shape.Polygon, len(snap.Shapes))
	for i, def := range snap.Shapes {
		p, err := shape.NewPolygon(def.Name, def.Vertices)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, def.Name, err)
		}
		shapes[i] = p
	}
	instances := make([]Instance, len(snap.Instances))
	for i, def := range snap.Instances {
		if def.Shape < 0 || def.Shape >= len(shapes) {
			return nil, fmt.Errorf("%w: instance %d references shape %d", ErrUnknownShape, i, def.Shape)
		}
		instances[i] = Instance{
			ShapeID:   shapes[def.Shape].ID(),
			X:         def.X,
			Y:         def.Y,
			Angle:     def.Angle,
			Reflected: def.Reflected,
		}
	}
	st, err := NewState(group, cell, shapes, instances)
	if err != nil {
		return nil, err
	}
	st.shell = snap.Shell
	return st, nil
}
