// Package ops implements invertible coordinate operators acting on a
// (position, time) pair.
//
// Operators hold unit-tagged parameters and act on raw coordinates expressed
// in a unit system supplied at call time, so the same operator can transform
// positions for potentials in any system. Positions are autodiff vectors:
// derivatives taken through an operator are exact.
package ops

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/mat"
)

// ErrNotOrthogonal is returned for rotation matrices that are not proper
// rotations.
var ErrNotOrthogonal = errors.New("ops: matrix is not a proper rotation")

// Operator maps (q, t) in one frame to another. Inverse must be exact.
type Operator interface {
	Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error)
	Inverse() Operator
}

// Identity leaves coordinates unchanged.
type Identity struct{}

func (Identity) Transform(_ units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	return q, t, nil
}

func (Identity) Inverse() Operator { return Identity{} }

// Translation shifts positions by Delta.
type Translation struct {
	Delta units.Quantity
}

// NewTranslation checks that delta is a length 3-vector.
func NewTranslation(delta units.Quantity) (Translation, error) {
	if err := check3(delta, "length"); err != nil {
		return Translation{}, fmt.Errorf("translation: %w", err)
	}
	return Translation{Delta: delta}, nil
}

func (o Translation) Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	d, err := vec3(o.Delta, us.Length())
	if err != nil {
		return q, t, err
	}
	return autodiff.Add(q, autodiff.Const(d)), t, nil
}

func (o Translation) Inverse() Operator { return Translation{Delta: o.Delta.Neg()} }

// GalileanTranslation shifts time by Dt and positions by Delta.
type GalileanTranslation struct {
	Dt    units.Quantity
	Delta units.Quantity
}

// NewGalileanTranslation checks that dt is a time and delta a length 3-vector.
func NewGalileanTranslation(dt, delta units.Quantity) (GalileanTranslation, error) {
	if err := dt.CheckDimension("time"); err != nil {
		return GalileanTranslation{}, fmt.Errorf("galilean translation: %w", err)
	}
	if err := check3(delta, "length"); err != nil {
		return GalileanTranslation{}, fmt.Errorf("galilean translation: %w", err)
	}
	return GalileanTranslation{Dt: dt, Delta: delta}, nil
}

func (o GalileanTranslation) Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	dt, err := o.Dt.Float(us.Time())
	if err != nil {
		return q, t, err
	}
	d, err := vec3(o.Delta, us.Length())
	if err != nil {
		return q, t, err
	}
	return autodiff.Add(q, autodiff.Const(d)), t + dt, nil
}

func (o GalileanTranslation) Inverse() Operator {
	return GalileanTranslation{Dt: o.Dt.Neg(), Delta: o.Delta.Neg()}
}

// Boost moves positions with constant velocity V: q → q + V·t.
type Boost struct {
	V units.Quantity
}

// NewBoost checks that v is a speed 3-vector.
func NewBoost(v units.Quantity) (Boost, error) {
	if err := check3(v, "speed"); err != nil {
		return Boost{}, fmt.Errorf("boost: %w", err)
	}
	return Boost{V: v}, nil
}

func (o Boost) Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	v, err := vec3(o.V, us.MustGet("speed"))
	if err != nil {
		return q, t, err
	}
	return autodiff.Add(q, autodiff.Scale(t, autodiff.Const(v))), t, nil
}

func (o Boost) Inverse() Operator { return Boost{V: o.V.Neg()} }

// Rotation applies a fixed proper rotation matrix.
type Rotation struct {
	R [3][3]float64
}

// NewRotation checks that m is orthogonal with unit determinant.
func NewRotation(m [3][3]float64) (Rotation, error) {
	r := toDense(m)
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	if !mat.EqualApprox(&rtr, eye(), 1e-10) || math.Abs(mat.Det(r)-1) > 1e-10 {
		return Rotation{}, ErrNotOrthogonal
	}
	return Rotation{R: m}, nil
}

// RotationAbout returns the counter-clockwise rotation by angle about the
// named axis ("x", "y" or "z").
func RotationAbout(axis string, angle units.Quantity) (Rotation, error) {
	a, err := angle.Float(units.Rad)
	if err != nil {
		return Rotation{}, fmt.Errorf("rotation: %w", err)
	}
	s, c := math.Sincos(a)
	switch axis {
	case "x":
		return Rotation{R: [3][3]float64{{1, 0, 0}, {0, c, -s}, {0, s, c}}}, nil
	case "y":
		return Rotation{R: [3][3]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}}, nil
	case "z":
		return Rotation{R: autodiff.RotationZ(a)}, nil
	}
	return Rotation{}, fmt.Errorf("rotation: unknown axis %q", axis)
}

func (o Rotation) Transform(_ units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	return autodiff.MatVec(o.R, q), t, nil
}

func (o Rotation) Inverse() Operator {
	var rt [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rt[i][j] = o.R[j][i]
		}
	}
	return Rotation{R: rt}
}

// ConstantRotationZ rotates positions about z by Omega·t.
type ConstantRotationZ struct {
	Omega units.Quantity
}

// NewConstantRotationZ checks that omega is a frequency or an angular speed.
func NewConstantRotationZ(omega units.Quantity) (ConstantRotationZ, error) {
	if omega.CheckDimension(units.RotationRate) != nil {
		return ConstantRotationZ{}, fmt.Errorf("constant rotation: %w: %q is not a rotation rate",
			units.ErrDimensionMismatch, omega.Unit)
	}
	return ConstantRotationZ{Omega: omega}, nil
}

// Rate returns Omega in radians per time unit of us.
func (o ConstantRotationZ) Rate(us units.System) (float64, error) {
	return o.Omega.Rate(us.Time())
}

func (o ConstantRotationZ) Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	w, err := o.Rate(us)
	if err != nil {
		return q, t, err
	}
	return autodiff.RotateZ(q, w*t), t, nil
}

func (o ConstantRotationZ) Inverse() Operator { return ConstantRotationZ{Omega: o.Omega.Neg()} }

// Pipe applies its operators in order.
type Pipe []Operator

func (p Pipe) Transform(us units.System, q autodiff.Vec, t float64) (autodiff.Vec, float64, error) {
	var err error
	for _, op := range p {
		if q, t, err = op.Transform(us, q, t); err != nil {
			return q, t, err
		}
	}
	return q, t, nil
}

// Inverse applies the inverses in reverse order.
func (p Pipe) Inverse() Operator {
	inv := make(Pipe, len(p))
	for i, op := range p {
		inv[len(p)-1-i] = op.Inverse()
	}
	return inv
}

// Compose returns the operator applying ops left to right. Nested pipes are
// flattened.
func Compose(ops ...Operator) Operator {
	var out Pipe
	for _, op := range ops {
		if p, ok := op.(Pipe); ok {
			out = append(out, flatten(p)...)
			continue
		}
		out = append(out, op)
	}
	return out
}

func flatten(p Pipe) Pipe {
	var out Pipe
	for _, op := range p {
		if inner, ok := op.(Pipe); ok {
			out = append(out, flatten(inner)...)
		} else {
			out = append(out, op)
		}
	}
	return out
}

func check3(q units.Quantity, dimension string) error {
	if len(q.Shape) != 1 || q.Shape[0] != 3 {
		return fmt.Errorf("want a 3-vector, got shape %v", q.Shape)
	}
	return q.CheckDimension(dimension)
}

func vec3(q units.Quantity, u units.Unit) ([3]float64, error) {
	vs, err := q.ValueIn(u)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{vs[0], vs[1], vs[2]}, nil
}

func toDense(m [3][3]float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

func eye() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}
