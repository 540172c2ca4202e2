package potential

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/num/hyperdual"
)

// Potential is a scalar gravitational potential. Implementations are
// immutable and safe for concurrent use.
type Potential interface {
	Units() units.System
	Constants() *Constants
	// PotentialAt returns Φ at raw position q (length unit of Units) and
	// raw time t (time unit of Units).
	PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error)
}

// Densitier is implemented by potentials with a closed-form density.
type Densitier interface {
	DensityAt(q [3]float64, t float64) (float64, error)
}

// Parametric is implemented by catalog potentials.
type Parametric interface {
	Potential
	Kind() string
	Fields() []ParamField
}

// ParamField names one parameter of a catalog potential.
type ParamField struct {
	Name      string
	Dimension string
	Param     params.Parameter
}

// Constants is a read-only set of named physical constants.
type Constants struct {
	values map[string]units.Quantity
}

var defaultConstants = NewConstants(map[string]units.Quantity{"G": units.G})

// DefaultConstants holds G.
func DefaultConstants() *Constants { return defaultConstants }

// NewConstants copies values into a new constant set.
func NewConstants(values map[string]units.Quantity) *Constants {
	c := &Constants{values: make(map[string]units.Quantity, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// Get returns the named constant.
func (c *Constants) Get(name string) (units.Quantity, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Names lists the constants in sorted order.
func (c *Constants) Names() []string {
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// G returns the gravitational constant in the base units of us.
func (c *Constants) G(us units.System) (float64, error) {
	g, ok := c.values["G"]
	if !ok {
		return 0, fmt.Errorf("potential: constants have no G")
	}
	return g.Float(us.Length().Pow(3).Div(us.Mass()).Div(us.Time().Pow(2)))
}

// base carries the unit system, constants and cached units shared by the
// catalog potentials.
type base struct {
	us     units.System
	consts *Constants
	g      float64
	unit   map[string]units.Unit
}

func newBase(us units.System) (base, error) {
	g, err := defaultConstants.G(us)
	if err != nil {
		return base{}, err
	}
	b := base{us: us, consts: defaultConstants, g: g, unit: map[string]units.Unit{}}
	for _, d := range []string{"mass", "length", "dimensionless"} {
		b.unit[d] = us.MustGet(d)
	}
	return b, nil
}

func (b base) Units() units.System   { return b.us }
func (b base) Constants() *Constants { return b.consts }

// value evaluates a scalar parameter at raw time t in the unit of the named
// dimension.
func (b base) value(p params.Parameter, t float64, dimension string) (float64, error) {
	if dimension == units.RotationRate {
		v, err := p.Value(units.Scalar(t, b.us.Time()))
		if err != nil {
			return 0, err
		}
		return v.Rate(b.us.Time())
	}
	u, ok := b.unit[dimension]
	if !ok {
		u = b.us.MustGet(dimension)
	}
	return params.Float(p, units.Scalar(t, b.us.Time()), u)
}

// values evaluates several parameters at once.
func (b base) values(t float64, fields ...ParamField) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := b.value(f.Param, t, f.Dimension)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

// checkParam validates the dimension of a parameter whose value is known
// ahead of time. User parameters are checked when evaluated.
func checkParam(f ParamField) error {
	if f.Param == nil {
		return fmt.Errorf("%w: %s is not set", ErrBadParameter, f.Name)
	}
	switch p := f.Param.(type) {
	case params.Constant:
		if err := p.Get().CheckDimension(f.Dimension); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	case params.Linear:
		if err := p.PointValue.CheckDimension(f.Dimension); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func checkParams(fields []ParamField) error {
	for _, f := range fields {
		if err := checkParam(f); err != nil {
			return err
		}
	}
	return nil
}

func norm(q [3]float64) float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2])
}

// densityOf returns the closed-form density of p if it has one, and the
// Poisson density ∇²Φ / (4πG) otherwise.
func densityOf(p Potential, q [3]float64, t float64) (float64, error) {
	if d, ok := p.(Densitier); ok {
		return d.DensityAt(q, t)
	}
	lap, err := autodiff.Laplacian(func(x autodiff.Vec) (hyperdual.Number, error) {
		return p.PotentialAt(x, t)
	}, q)
	if err != nil {
		return 0, err
	}
	g, err := p.Constants().G(p.Units())
	if err != nil {
		return 0, err
	}
	return lap / (4 * math.Pi * g), nil
}
