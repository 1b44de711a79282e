package wallpaper

import (
	"strings"

	"crystalpack/lattice"
)

// groupDef is a catalog row: the canonical symbol, any alternate symbols
// in common use, the crystal family, lattice centering and the
// general-position operators in International Tables shorthand.
type groupDef struct {
	name     string
	aliases  []string
	family   lattice.Family
	centered bool
	ops      []string
}

// The closed set of all 17 wallpaper groups. The identity operator is
// listed first in every group; the catalog is fixed and no group is ever
// added at runtime.
var defs = []groupDef{
	{name: "p1", family: lattice.Monoclinic,
		ops: []string{"x,y"}},
	{name: "p2", family: lattice.Monoclinic,
		ops: []string{"x,y", "-x,-y"}},
	{name: "pm", aliases: []string{"p1m1"}, family: lattice.Orthorhombic,
		ops: []string{"x,y", "-x,y"}},
	{name: "pg", aliases: []string{"p1g1"}, family: lattice.Orthorhombic,
		ops: []string{"x,y", "-x,y+1/2"}},
	{name: "cm", aliases: []string{"c1m1"}, family: lattice.Orthorhombic, centered: true,
		ops: []string{"x,y", "-x,y"}},
	{name: "pmm", aliases: []string{"p2mm"}, family: lattice.Orthorhombic,
		ops: []string{"x,y", "-x,-y", "-x,y", "x,-y"}},
	{name: "pmg", aliases: []string{"p2mg"}, family: lattice.Orthorhombic,
		ops: []string{"x,y", "-x,-y", "-x+1/2,y", "x+1/2,-y"}},
	{name: "pgg", aliases: []string{"p2gg"}, family: lattice.Orthorhombic,
		ops: []string{"x,y", "-x,-y", "-x+1/2,y+1/2", "x+1/2,-y+1/2"}},
	{name: "cmm", aliases: []string{"c2mm"}, family: lattice.Orthorhombic, centered: true,
		ops: []string{"x,y", "-x,-y", "-x,y", "x,-y"}},
	{name: "p4", family: lattice.Tetragonal,
		ops: []string{"x,y", "-x,-y", "-y,x", "y,-x"}},
	{name: "p4m", aliases: []string{"p4mm"}, family: lattice.Tetragonal,
		ops: []string{"x,y", "-x,-y", "-y,x", "y,-x", "-x,y", "x,-y", "y,x", "-y,-x"}},
	{name: "p4g", aliases: []string{"p4gm"}, family: lattice.Tetragonal,
		ops: []string{"x,y", "-x,-y", "-y,x", "y,-x",
			"-x+1/2,y+1/2", "x+1/2,-y+1/2", "y+1/2,x+1/2", "-y+1/2,-x+1/2"}},
	{name: "p3", family: lattice.Hexagonal,
		ops: []string{"x,y", "-y,x-y", "-x+y,-x"}},
	{name: "p3m1", family: lattice.Hexagonal,
		ops: []string{"x,y", "-y,x-y", "-x+y,-x", "-y,-x", "-x+y,y", "x,x-y"}},
	{name: "p31m", family: lattice.Hexagonal,
		ops: []string{"x,y", "-y,x-y", "-x+y,-x", "y,x", "x-y,-y", "-x,-x+y"}},
	{name: "p6", family: lattice.Hexagonal,
		ops: []string{"x,y", "-y,x-y", "-x+y,-x", "-x,-y", "y,-x+y", "x-y,x"}},
	{name: "p6m", aliases: []string{"p6mm"}, family: lattice.Hexagonal,
		ops: []string{"x,y", "-y,x-y", "-x+y,-x", "-x,-y", "y,-x+y", "x-y,x",
			"-y,-x", "-x+y,y", "x,x-y", "y,x", "x-y,-y", "-x,-x+y"}},
}

var (
	catalog = make(map[string]Group, len(defs))
	aliases = make(map[string]string)
	order   = make([]string, 0, len(defs))
)

func init() {
	for _, d := range defs {
		ops := make([]operator, len(d.ops))
		for i, s := range d.ops {
			op, err := parseOperator(s)
			if err != nil {
				// The catalog is compiled-in data; a parse failure is a
				// programming error, not a runtime condition.
				panic(err)
			}
			ops[i] = op
		}
		catalog[d.name] = Group{
			name:     d.name,
			family:   d.family,
			centered: d.centered,
			ops:      ops,
		}
		order = append(order, d.name)
		for _, a := range d.aliases {
			aliases[normalize(a)] = d.name
		}
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
