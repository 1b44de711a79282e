package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidTransform is returned when a requested transform is not a pure
// isometry, e.g. when a matrix with a scale or shear component is supplied.
var ErrInvalidTransform = errors.New("geometry: transform is not a rigid isometry")

// isometryEps is the tolerance used when validating that a matrix is
// orthogonal with unit determinant.
const isometryEps = 1e-9

// Transform is a rigid isometry of the plane. A point is mapped by first
// reflecting across the x axis (when Mirror is set), then rotating by Angle
// and finally translating by T. The linear part therefore always has
// determinant +1 (rotation) or -1 (reflection), never anything else.
type Transform struct {
	Angle  float64  `json:"angle"`
	T      Vector2D `json:"t"`
	Mirror bool     `json:"mirror"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{}
}

// NewTransform returns a rotation by angle followed by a translation.
func NewTransform(angle, tx, ty float64) Transform {
	return Transform{Angle: angle, T: Vector2D{X: tx, Y: ty}}
}

// NewReflection returns a reflection across the x axis followed by a
// rotation by angle and a translation.
func NewReflection(angle, tx, ty float64) Transform {
	return Transform{Angle: angle, T: Vector2D{X: tx, Y: ty}, Mirror: true}
}

// FromMatrix builds a Transform from an explicit 2x2 linear part
//
//	| a  b |
//	| c  d |
//
// and a translation (tx, ty). It fails with ErrInvalidTransform unless the
// linear part is orthogonal with |det| = 1, i.e. a pure rotation or
// reflection.
func FromMatrix(a, b, c, d, tx, ty float64) (Transform, error) {
	for _, v := range [...]float64{a, b, c, d, tx, ty} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Transform{}, fmt.Errorf("%w: non-finite coefficient", ErrInvalidTransform)
		}
	}

	m := mat.NewDense(2, 2, []float64{a, b, c, d})
	det := mat.Det(m)
	if math.Abs(math.Abs(det)-1) > isometryEps {
		return Transform{}, fmt.Errorf("%w: determinant %v", ErrInvalidTransform, det)
	}
	// Orthonormal columns: unit length and mutually perpendicular.
	if math.Abs(a*a+c*c-1) > isometryEps ||
		math.Abs(b*b+d*d-1) > isometryEps ||
		math.Abs(a*b+c*d) > isometryEps {
		return Transform{}, fmt.Errorf("%w: columns are not orthonormal", ErrInvalidTransform)
	}

	// The first column of both R(angle) and R(angle)*F is (cos, sin).
	return Transform{
		Angle:  math.Atan2(c, a),
		T:      Vector2D{X: tx, Y: ty},
		Mirror: det < 0,
	}, nil
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point2D) Point2D {
	sin, cos := math.Sincos(t.Angle)
	x, y := p.X, p.Y
	if t.Mirror {
		y = -y
	}
	return Point2D{
		X: cos*x - sin*y + t.T.X,
		Y: sin*x + cos*y + t.T.Y,
	}
}

// ApplyVector maps a displacement through the linear part of the
// transform. The translation does not apply to vectors.
func (t Transform) ApplyVector(v Vector2D) Vector2D {
	sin, cos := math.Sincos(t.Angle)
	x, y := v.X, v.Y
	if t.Mirror {
		y = -y
	}
	return Vector2D{
		X: cos*x - sin*y,
		Y: sin*x + cos*y,
	}
}

// Compose returns the transform equivalent to applying other first and
// then t, i.e. (t.Compose(other)).Apply(p) == t.Apply(other.Apply(p)).
func (t Transform) Compose(other Transform) Transform {
	angle := other.Angle
	if t.Mirror {
		angle = -angle
	}
	shifted := t.Apply(Point2D{X: other.T.X, Y: other.T.Y})
	return Transform{
		Angle:  t.Angle + angle,
		T:      Vector2D{X: shifted.X, Y: shifted.Y},
		Mirror: t.Mirror != other.Mirror,
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := Transform{Mirror: t.Mirror}
	if t.Mirror {
		// R(a)F is its own linear inverse.
		inv.Angle = t.Angle
	} else {
		inv.Angle = -t.Angle
	}
	inv.T = inv.ApplyVector(t.T.Scale(-1))
	return inv
}

// Translation returns the position of the transformed origin.
func (t Transform) Translation() Point2D {
	return Point2D{X: t.T.X, Y: t.T.Y}
}

// IsFinite reports whether all components are finite numbers.
func (t Transform) IsFinite() bool {
	return !math.IsNaN(t.Angle) && !math.IsInf(t.Angle, 0) &&
		!math.IsNaN(t.T.X) && !math.IsInf(t.T.X, 0) &&
		!math.IsNaN(t.T.Y) && !math.IsInf(t.T.Y, 0)
}
