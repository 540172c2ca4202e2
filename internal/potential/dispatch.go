package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/shape"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/hyperdual"
)

// canonical is a position batch and a time batch in the raw units of a
// potential, with their broadcast batch shape.
type canonical struct {
	q      []float64
	qBatch []int
	t      []float64
	tShape []int
	batch  []int
}

func (c canonical) point(i int) ([3]float64, float64) {
	j := shape.Index(c.batch, c.qBatch, i)
	k := shape.Index(c.batch, c.tShape, i)
	return [3]float64{c.q[3*j], c.q[3*j+1], c.q[3*j+2]}, c.t[k]
}

// canonicalize resolves every accepted position and time representation.
// A position that carries its own time must not be given another.
func canonicalize(us units.System, pos coords.Position, t coords.Time) (canonical, error) {
	var c canonical
	var embedded *units.Quantity

	switch p := pos.(type) {
	case coords.Vector:
		if err := coords.CheckTrailing(p.Q.Shape, 3); err != nil {
			return c, err
		}
		q, err := p.Q.ValueIn(us.Length())
		if err != nil {
			return c, err
		}
		c.q, c.qBatch = q, p.Q.Shape[:len(p.Q.Shape)-1]
	case coords.Array:
		if err := coords.CheckTrailing(p.Shape, 3); err != nil {
			return c, err
		}
		if shape.Size(p.Shape) != len(p.Values) {
			return c, fmt.Errorf("%w: %d values for shape %v", coords.ErrShape, len(p.Values), p.Shape)
		}
		c.q, c.qBatch = p.Values, p.Shape[:len(p.Shape)-1]
	case *coords.PhaseSpacePosition:
		if p == nil {
			return c, fmt.Errorf("%w: nil phase-space position", coords.ErrShape)
		}
		if t != nil && p.T != nil {
			return c, ErrAmbiguousTime
		}
		q, err := p.Q.ValueIn(us.Length())
		if err != nil {
			return c, err
		}
		c.q, c.qBatch = q, p.BatchShape()
		embedded = p.T
	case coords.FourVector:
		if t != nil {
			return c, ErrAmbiguousTime
		}
		if err := coords.CheckTrailing(p.Q.Shape, 3); err != nil {
			return c, err
		}
		q, err := p.Q.ValueIn(us.Length())
		if err != nil {
			return c, err
		}
		c.q, c.qBatch = q, p.Q.Shape[:len(p.Q.Shape)-1]
		embedded = &p.T
	default:
		return c, fmt.Errorf("%w: unsupported position %T", coords.ErrShape, pos)
	}

	switch tt := t.(type) {
	case nil:
		if embedded == nil {
			return c, ErrMissingTime
		}
		v, err := embedded.ValueIn(us.Time())
		if err != nil {
			return c, err
		}
		c.t, c.tShape = v, embedded.Shape
	case coords.TimeQuantity:
		v, err := tt.Q.ValueIn(us.Time())
		if err != nil {
			return c, err
		}
		c.t, c.tShape = v, tt.Q.Shape
	case coords.RawTime:
		if shape.Size(tt.Shape) != len(tt.Values) {
			return c, fmt.Errorf("%w: %d times for shape %v", coords.ErrShape, len(tt.Values), tt.Shape)
		}
		c.t, c.tShape = tt.Values, tt.Shape
	default:
		return c, fmt.Errorf("potential: unsupported time %T", t)
	}

	batch, err := shape.Broadcast(c.qBatch, c.tShape)
	if err != nil {
		return c, fmt.Errorf("%w: %v", coords.ErrShape, err)
	}
	c.batch = batch
	return c, nil
}

// field freezes t and returns Φ(·, t) for the autodiff package.
func field(p Potential, t float64) autodiff.Field {
	return func(q autodiff.Vec) (hyperdual.Number, error) { return p.PotentialAt(q, t) }
}

// evaluate runs fn on every point of the broadcast batch. fn writes size
// values per point.
func evaluate(p Potential, pos coords.Position, t coords.Time, dimension string, core []int,
	fn func(q [3]float64, t float64, out []float64) error) (units.Quantity, error) {
	us := p.Units()
	c, err := canonicalize(us, pos, t)
	if err != nil {
		return units.Quantity{}, err
	}
	u, err := us.Get(dimension)
	if err != nil {
		return units.Quantity{}, err
	}
	n := shape.Size(c.batch)
	size := shape.Size(core)
	out := make([]float64, n*size)
	for i := 0; i < n; i++ {
		q, ti := c.point(i)
		if err := fn(q, ti, out[i*size:(i+1)*size]); err != nil {
			return units.Quantity{}, err
		}
	}
	return units.New(out, shape.Concat(c.batch, core...), u)
}

// Energy returns Φ(q, t) per batch element.
func Energy(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "specific energy", nil, func(q [3]float64, t float64, out []float64) error {
		v, err := autodiff.Value(field(p, t), q)
		out[0] = v
		return err
	})
}

// Gradient returns ∇Φ(q, t), shape (*batch, 3).
func Gradient(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "acceleration", []int{3}, func(q [3]float64, t float64, out []float64) error {
		g, err := autodiff.Gradient(field(p, t), q)
		copy(out, g[:])
		return err
	})
}

// Acceleration returns −∇Φ(q, t).
func Acceleration(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	g, err := Gradient(p, pos, t)
	if err != nil {
		return g, err
	}
	return g.Neg(), nil
}

// Laplacian returns ∇²Φ(q, t).
func Laplacian(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "frequency squared", nil, func(q [3]float64, t float64, out []float64) error {
		v, err := autodiff.Laplacian(field(p, t), q)
		out[0] = v
		return err
	})
}

// Hessian returns ∇∇Φ(q, t), shape (*batch, 3, 3).
func Hessian(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "frequency squared", []int{3, 3}, func(q [3]float64, t float64, out []float64) error {
		h, err := autodiff.Hessian(field(p, t), q)
		for i := 0; i < 3; i++ {
			copy(out[3*i:3*i+3], h[i][:])
		}
		return err
	})
}

// Density returns the mass density: closed form when p has one, the
// Poisson density ∇²Φ / (4πG) otherwise.
func Density(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "mass density", nil, func(q [3]float64, t float64, out []float64) error {
		v, err := densityOf(p, q, t)
		out[0] = v
		return err
	})
}

// TidalTensor returns the traceless part of the Hessian,
// H − (tr H / 3) I. It assumes a Euclidean metric.
func TidalTensor(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	h, err := Hessian(p, pos, t)
	if err != nil {
		return h, err
	}
	n := h.Size() / 9
	out := make([]float64, len(h.Value))
	for i := 0; i < n; i++ {
		m := Matrix(h, i)
		tr := mat.Trace(m) / 3
		for k := 0; k < 3; k++ {
			m.Set(k, k, m.At(k, k)-tr)
		}
		copy(out[9*i:9*i+9], m.RawMatrix().Data)
	}
	return units.New(out, h.Shape, h.Unit)
}

// Matrix returns the i-th 3×3 matrix of a (*batch, 3, 3) quantity as a copy.
func Matrix(q units.Quantity, i int) *mat.Dense {
	data := make([]float64, 9)
	copy(data, q.Value[9*i:9*i+9])
	return mat.NewDense(3, 3, data)
}

// DPhiDr is the radial derivative r̂·∇Φ.
func DPhiDr(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "acceleration", nil, func(q [3]float64, t float64, out []float64) error {
		g, err := autodiff.Gradient(field(p, t), q)
		if err != nil {
			return err
		}
		r := norm(q)
		out[0] = (g[0]*q[0] + g[1]*q[1] + g[2]*q[2]) / r
		return nil
	})
}

// D2PhiDr2 is the second radial derivative r̂ᵀ H r̂.
func D2PhiDr2(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "frequency squared", nil, func(q [3]float64, t float64, out []float64) error {
		h, err := autodiff.Hessian(field(p, t), q)
		if err != nil {
			return err
		}
		r := norm(q)
		rhat := mat.NewVecDense(3, []float64{q[0] / r, q[1] / r, q[2] / r})
		out[0] = mat.Inner(rhat, toDense(h), rhat)
		return nil
	})
}

func toDense(h [3][3]float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	})
}

// CircularVelocity returns √(r dΦ/dr), the speed of a circular orbit
// through q.
func CircularVelocity(p Potential, pos coords.Position, t coords.Time) (units.Quantity, error) {
	return evaluate(p, pos, t, "speed", nil, func(q [3]float64, t float64, out []float64) error {
		g, err := autodiff.Gradient(field(p, t), q)
		if err != nil {
			return err
		}
		out[0] = math.Sqrt(g[0]*q[0] + g[1]*q[1] + g[2]*q[2])
		return nil
	})
}

// EnergyAt is Φ at a raw position and time in the units of p.
func EnergyAt(p Potential, q [3]float64, t float64) (float64, error) {
	return autodiff.Value(field(p, t), q)
}

// GradientAt is ∇Φ at a raw position and time in the units of p.
func GradientAt(p Potential, q [3]float64, t float64) ([3]float64, error) {
	return autodiff.Gradient(field(p, t), q)
}

// HessianAt is ∇∇Φ at a raw position and time in the units of p.
func HessianAt(p Potential, q [3]float64, t float64) ([3][3]float64, error) {
	return autodiff.Hessian(field(p, t), q)
}
