package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/galdyn/internal/shape"
)

// Quantity is a row-major array of values sharing one unit. An empty Shape
// is a scalar.
type Quantity struct {
	Value []float64
	Shape []int
	Unit  Unit
}

// Scalar returns a scalar quantity.
func Scalar(v float64, u Unit) Quantity {
	return Quantity{Value: []float64{v}, Shape: []int{}, Unit: u}
}

// Vector returns a one-dimensional quantity holding vs.
func Vector(u Unit, vs ...float64) Quantity {
	return Quantity{Value: append([]float64(nil), vs...), Shape: []int{len(vs)}, Unit: u}
}

// New returns a quantity of the given shape. values is not copied.
func New(values []float64, s []int, u Unit) (Quantity, error) {
	if shape.Size(s) != len(values) {
		return Quantity{}, fmt.Errorf("%w: %d values for shape %v", ErrShape, len(values), s)
	}
	return Quantity{Value: values, Shape: shape.Clone(s), Unit: u}, nil
}

// MustNew is like New but panics on a shape mismatch.
func MustNew(values []float64, s []int, u Unit) Quantity {
	q, err := New(values, s, u)
	if err != nil {
		panic(err)
	}
	return q
}

// Size is the number of elements of q.
func (q Quantity) Size() int { return shape.Size(q.Shape) }

// IsScalar reports whether q has an empty shape.
func (q Quantity) IsScalar() bool { return len(q.Shape) == 0 }

// To converts q to the compatible unit u.
func (q Quantity) To(u Unit) (Quantity, error) {
	f, err := q.Unit.Conversion(u)
	if err != nil {
		return Quantity{}, err
	}
	out := make([]float64, len(q.Value))
	for i, v := range q.Value {
		out[i] = v * f
	}
	return Quantity{Value: out, Shape: shape.Clone(q.Shape), Unit: u}, nil
}

// ValueIn strips the unit after converting to u.
func (q Quantity) ValueIn(u Unit) ([]float64, error) {
	c, err := q.To(u)
	if err != nil {
		return nil, err
	}
	return c.Value, nil
}

// RotationRate accepts a plain frequency (1 / Myr) or an angular speed
// (rad / Myr). It is understood by Check but has no unit in a System.
const RotationRate = "rotation rate"

// Rate returns a scalar rotation rate in radians per time unit. A plain
// frequency is read as radians per time.
func (q Quantity) Rate(time Unit) (float64, error) {
	to := Dimensionless.Div(time)
	if q.CheckDimension("angular speed") == nil {
		to = Rad.Div(time)
	}
	return q.Float(to)
}

// Float returns the single value of q in unit u.
func (q Quantity) Float(u Unit) (float64, error) {
	if len(q.Value) != 1 {
		return 0, fmt.Errorf("%w: quantity of shape %v is not a single value", ErrShape, q.Shape)
	}
	vs, err := q.ValueIn(u)
	if err != nil {
		return 0, err
	}
	return vs[0], nil
}

// At returns element i of the flattened quantity as a scalar.
func (q Quantity) At(i int) Quantity { return Scalar(q.Value[i], q.Unit) }

// CheckDimension returns ErrDimensionMismatch unless q has the named
// dimension.
func (q Quantity) CheckDimension(dimension string) error {
	return q.Unit.Check(dimension)
}

// Add returns q + o broadcast over both shapes, in the unit of q.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	oc, err := o.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.combine(oc, q.Unit, func(a, b float64) float64 { return a + b })
}

// Sub returns q - o broadcast over both shapes, in the unit of q.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	oc, err := o.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.combine(oc, q.Unit, func(a, b float64) float64 { return a - b })
}

// Mul returns the elementwise product in the product unit.
func (q Quantity) Mul(o Quantity) (Quantity, error) {
	return q.combine(o, q.Unit.Mul(o.Unit), func(a, b float64) float64 { return a * b })
}

// Div returns the elementwise quotient in the quotient unit.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	return q.combine(o, q.Unit.Div(o.Unit), func(a, b float64) float64 { return a / b })
}

// Scale multiplies every value of q by f.
func (q Quantity) Scale(f float64) Quantity {
	out := make([]float64, len(q.Value))
	for i, v := range q.Value {
		out[i] = v * f
	}
	return Quantity{Value: out, Shape: shape.Clone(q.Shape), Unit: q.Unit}
}

// Neg returns -q.
func (q Quantity) Neg() Quantity { return q.Scale(-1) }

// Reshape returns q with a new shape of the same size. Values are shared.
func (q Quantity) Reshape(s []int) (Quantity, error) {
	return New(q.Value, s, q.Unit)
}

func (q Quantity) combine(o Quantity, u Unit, f func(a, b float64) float64) (Quantity, error) {
	s, err := shape.Broadcast(q.Shape, o.Shape)
	if err != nil {
		return Quantity{}, err
	}
	n := shape.Size(s)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = f(q.Value[shape.Index(s, q.Shape, i)], o.Value[shape.Index(s, o.Shape, i)])
	}
	return Quantity{Value: out, Shape: s, Unit: u}, nil
}

func (q Quantity) String() string {
	var b strings.Builder
	if q.IsScalar() && len(q.Value) == 1 {
		b.WriteString(strconv.FormatFloat(q.Value[0], 'g', -1, 64))
	} else {
		b.WriteByte('[')
		for i, v := range q.Value {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte(']')
	}
	if s := q.Unit.String(); s != "" {
		b.WriteByte(' ')
		b.WriteString(s)
	}
	return b.String()
}
