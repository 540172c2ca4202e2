package potential

import (
	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/ops"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Frame is a potential seen through a coordinate operator. Queries in the
// outer frame are mapped by the operator's inverse into the frame of
// Original before evaluation.
type Frame struct {
	Original Potential
	Operator ops.Operator
	inverse  ops.Operator
}

// NewFrame wraps p. A nil operator is the identity.
func NewFrame(p Potential, op ops.Operator) *Frame {
	if op == nil {
		op = ops.Identity{}
	}
	return &Frame{Original: p, Operator: op, inverse: op.Inverse()}
}

// Units is the unit system of the wrapped potential.
func (f *Frame) Units() units.System { return f.Original.Units() }

// Constants are the wrapped potential's constants, not a copy.
func (f *Frame) Constants() *Constants { return f.Original.Constants() }

func (f *Frame) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	qp, tp, err := f.inverse.Transform(f.Units(), q, t)
	if err != nil {
		return hyperdual.Number{}, err
	}
	return f.Original.PotentialAt(qp, tp)
}

// DensityAt evaluates the wrapped potential's density at the mapped point.
// Every operator is an isometry, so density is carried over unchanged.
func (f *Frame) DensityAt(q [3]float64, t float64) (float64, error) {
	qp, tp, err := f.inverse.Transform(f.Units(), autodiff.Const(q), t)
	if err != nil {
		return 0, err
	}
	return densityOf(f.Original, qp.Real(), tp)
}

// Simplify returns an equivalent frame with a simplified operator.
func (f *Frame) Simplify() *Frame {
	return NewFrame(f.Original, ops.Simplify(f.Operator))
}
