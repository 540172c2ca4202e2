package experiment

import (
	"fmt"

	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/ops"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

func quantity(q config.QuantityConfig) (units.Quantity, error) {
	u, err := units.Parse(q.Unit)
	if err != nil {
		return units.Quantity{}, err
	}
	return units.Scalar(q.Value, u), nil
}

// vector returns a (3) quantity for three values and (n, 3) for more.
func vector(v config.VectorConfig) (units.Quantity, error) {
	u, err := units.Parse(v.Unit)
	if err != nil {
		return units.Quantity{}, err
	}
	n := len(v.Values)
	if n == 0 || n%3 != 0 {
		return units.Quantity{}, fmt.Errorf("%w: %d components is not a multiple of 3", coords.ErrShape, n)
	}
	s := []int{3}
	if n > 3 {
		s = []int{n / 3, 3}
	}
	return units.New(append([]float64(nil), v.Values...), s, u)
}

// BuildParam turns a config parameter into a Constant or a Linear and
// checks it against dimension.
func BuildParam(pc config.ParamConfig, dimension string) (params.Parameter, error) {
	if !pc.IsLinear() {
		if pc.Value == nil {
			return nil, fmt.Errorf("%w: parameter has no value", config.ErrInvalid)
		}
		u, err := units.Parse(pc.Unit)
		if err != nil {
			return nil, err
		}
		return params.NewConstant(units.Scalar(*pc.Value, u), dimension)
	}
	if pc.PointTime == nil || pc.PointValue == nil {
		return nil, fmt.Errorf("%w: linear parameter needs point_time and point_value", config.ErrInvalid)
	}
	slope, err := quantity(*pc.Slope)
	if err != nil {
		return nil, err
	}
	pt, err := quantity(*pc.PointTime)
	if err != nil {
		return nil, err
	}
	pv, err := quantity(*pc.PointValue)
	if err != nil {
		return nil, err
	}
	return params.NewLinear(slope, pt, pv, dimension)
}

// BuildComponent builds one catalog potential.
func (r *Registry) BuildComponent(us units.System, comp config.ComponentConfig) (potential.Potential, error) {
	entry, err := r.GetPotentialEntry(comp.Type)
	if err != nil {
		return nil, err
	}
	dims := make(map[string]string, len(entry.Params))
	for _, spec := range entry.Params {
		dims[spec.Name] = spec.Dimension
	}
	ps := make(map[string]params.Parameter, len(comp.Params))
	for name, pc := range comp.Params {
		// Unknown names get no dimension here and are rejected by Build.
		p, err := BuildParam(pc, dims[name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", comp.Name, name, err)
		}
		ps[name] = p
	}
	p, err := potential.Build(comp.Type, us, ps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", comp.Name, err)
	}
	return p, nil
}

// BuildOperator builds one frame operator.
func (r *Registry) BuildOperator(oc config.OperatorConfig) (ops.Operator, error) {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s operator needs %s", config.ErrInvalid, oc.Type, field)
	}
	switch oc.Type {
	case "translation":
		if oc.Delta == nil {
			return nil, missing("delta")
		}
		d, err := vector(*oc.Delta)
		if err != nil {
			return nil, err
		}
		return ops.NewTranslation(d)
	case "galilean_translation":
		if oc.Delta == nil || oc.Dt == nil {
			return nil, missing("dt and delta")
		}
		d, err := vector(*oc.Delta)
		if err != nil {
			return nil, err
		}
		dt, err := quantity(*oc.Dt)
		if err != nil {
			return nil, err
		}
		return ops.NewGalileanTranslation(dt, d)
	case "boost":
		if oc.Velocity == nil {
			return nil, missing("velocity")
		}
		v, err := vector(*oc.Velocity)
		if err != nil {
			return nil, err
		}
		return ops.NewBoost(v)
	case "rotation":
		if oc.Matrix != nil {
			var m [3][3]float64
			if len(oc.Matrix) != 3 {
				return nil, fmt.Errorf("%w: rotation matrix needs 3 rows", config.ErrInvalid)
			}
			for i, row := range oc.Matrix {
				if len(row) != 3 {
					return nil, fmt.Errorf("%w: rotation matrix row %d needs 3 values", config.ErrInvalid, i)
				}
				copy(m[i][:], row)
			}
			return ops.NewRotation(m)
		}
		if oc.Angle == nil || oc.Axis == "" {
			return nil, missing("axis and angle, or matrix")
		}
		a, err := quantity(*oc.Angle)
		if err != nil {
			return nil, err
		}
		return ops.RotationAbout(oc.Axis, a)
	case "constant_rotation_z":
		if oc.Omega == nil {
			return nil, missing("omega")
		}
		w, err := quantity(*oc.Omega)
		if err != nil {
			return nil, err
		}
		return ops.NewConstantRotationZ(w)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, oc.Type)
}

// BuildPotential builds the potential of a run: a single component as
// itself, several as a Composite, wrapped in a Frame when operators are
// given.
func (r *Registry) BuildPotential(cfg *config.Config) (potential.Potential, error) {
	us, err := units.SystemByName(cfg.Units)
	if err != nil {
		return nil, err
	}
	if len(cfg.Potential) == 0 {
		return nil, fmt.Errorf("%w: no potential components", config.ErrInvalid)
	}
	children := make([]potential.Named, 0, len(cfg.Potential))
	for _, comp := range cfg.Potential {
		p, err := r.BuildComponent(us, comp)
		if err != nil {
			return nil, err
		}
		children = append(children, potential.Named{Name: comp.Name, Potential: p})
	}

	var p potential.Potential
	if len(children) == 1 {
		p = children[0].Potential
	} else if p, err = potential.NewComposite(us, children...); err != nil {
		return nil, err
	}

	if len(cfg.Frame) == 0 {
		return p, nil
	}
	operators := make([]ops.Operator, 0, len(cfg.Frame))
	for i, oc := range cfg.Frame {
		op, err := r.BuildOperator(oc)
		if err != nil {
			return nil, fmt.Errorf("frame operator %d: %w", i, err)
		}
		operators = append(operators, op)
	}
	return potential.NewFrame(p, ops.Compose(operators...)), nil
}

// BuildInitial returns the initial phase-space positions of a run, without
// a time.
func BuildInitial(cfg *config.Config) (*coords.PhaseSpacePosition, error) {
	q, err := vector(cfg.Initial.Q)
	if err != nil {
		return nil, fmt.Errorf("initial q: %w", err)
	}
	p, err := vector(cfg.Initial.P)
	if err != nil {
		return nil, fmt.Errorf("initial p: %w", err)
	}
	return coords.NewPhaseSpacePosition(q, p, nil)
}
