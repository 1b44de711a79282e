package wallpaper

import (
	"fmt"
	"strings"

	"crystalpack/geometry"
)

// operator is a symmetry operation in fractional lattice coordinates:
// f' = M*f + t, parsed from the crystallographic shorthand used by the
// International Tables, e.g. "x,y", "-x+1/2,y" or "-y,x-y". The linear
// part is generally not orthogonal in fractional space; it becomes a
// rigid isometry only after conjugation through a compatible cell basis.
type operator struct {
	// Row-major linear part: f'x = m[0]*fx + m[1]*fy, f'y = m[2]*fx + m[3]*fy.
	m [4]float64
	t geometry.Vector2D
}

// apply maps fractional coordinates through the operator.
func (o operator) apply(fx, fy float64) (float64, float64) {
	return o.m[0]*fx + o.m[1]*fy + o.t.X,
		o.m[2]*fx + o.m[3]*fy + o.t.Y
}

// parseOperator parses a two-component symmetry operation string.
func parseOperator(s string) (operator, error) {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return r == '(' || r == ')' || r == ' '
	})
	parts := strings.Split(trimmed, ",")
	if len(parts) != 2 {
		return operator{}, fmt.Errorf("wallpaper: operation %q must have two components", s)
	}

	var op operator
	for i, comp := range parts {
		cx, cy, constant, err := parseComponent(comp)
		if err != nil {
			return operator{}, fmt.Errorf("wallpaper: operation %q: %w", s, err)
		}
		op.m[2*i] = cx
		op.m[2*i+1] = cy
		if i == 0 {
			op.t.X = constant
		} else {
			op.t.Y = constant
		}
	}
	return op, nil
}

// parseComponent scans a single component like "-x+1/2" or "x-y",
// accumulating the x and y coefficients and the rational constant term.
func parseComponent(s string) (coeffX, coeffY, constant float64, err error) {
	sign := 1.0
	var pending rune // '*' or '/' awaiting its right operand

	for _, r := range s {
		switch {
		case r == 'x':
			coeffX = sign
			sign = 1
		case r == 'y':
			coeffY = sign
			sign = 1
		case r == '-':
			sign = -1
		case r == '*' || r == '/':
			pending = r
		case r >= '0' && r <= '9':
			val := float64(r - '0')
			if pending != 0 {
				if pending == '/' {
					constant = sign * constant / val
				} else {
					constant = sign * constant * val
				}
				pending = 0
			} else {
				constant = sign * val
			}
			sign = 1
		case r == '+' || r == ' ':
			// Explicit plus and whitespace carry no information.
		default:
			return 0, 0, 0, fmt.Errorf("unexpected character %q", r)
		}
	}
	return coeffX, coeffY, constant, nil
}
