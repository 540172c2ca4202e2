package experiment

import (
	"fmt"

	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/ops"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

// ConvertPotential describes p as the potential and frame sections of a run
// file. Catalog potentials, composites of them and one outer frame convert;
// user-function parameters, nested frames and potentials outside the
// catalog return ErrUnsupportedConversion.
func ConvertPotential(p potential.Potential) ([]config.ComponentConfig, []config.OperatorConfig, error) {
	var frame []config.OperatorConfig
	if f, ok := p.(*potential.Frame); ok {
		var err error
		if frame, err = convertOperator(f.Operator); err != nil {
			return nil, nil, err
		}
		p = f.Original
	}

	var comps []config.ComponentConfig
	switch x := p.(type) {
	case *potential.Composite:
		for _, name := range x.Names() {
			child, _ := x.Get(name)
			c, err := convertComponent(name, child)
			if err != nil {
				return nil, nil, err
			}
			comps = append(comps, c)
		}
	default:
		c, err := convertComponent("", p)
		if err != nil {
			return nil, nil, err
		}
		comps = append(comps, c)
	}
	return comps, frame, nil
}

// ToConfig returns a copy of base with its unit system, potential and frame
// replaced by the conversion of p.
func ToConfig(p potential.Potential, base *config.Config) (*config.Config, error) {
	us := p.Units()
	if _, err := units.SystemByName(us.Name()); err != nil {
		return nil, fmt.Errorf("%w: unit system %s has no name in run files", ErrUnsupportedConversion, us)
	}
	comps, frame, err := ConvertPotential(p)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	cfg.Units = us.Name()
	cfg.Potential = comps
	cfg.Frame = frame
	return cfg, nil
}

func convertComponent(name string, p potential.Potential) (config.ComponentConfig, error) {
	pp, ok := p.(potential.Parametric)
	if !ok {
		return config.ComponentConfig{}, fmt.Errorf("%w: %T is not a catalog potential", ErrUnsupportedConversion, p)
	}
	if name == "" {
		name = pp.Kind()
	}
	c := config.ComponentConfig{Name: name, Type: pp.Kind(), Params: make(map[string]config.ParamConfig)}
	for _, f := range pp.Fields() {
		pc, err := convertParam(f.Param)
		if err != nil {
			return config.ComponentConfig{}, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		c.Params[f.Name] = pc
	}
	return c, nil
}

func scalar(q units.Quantity) (config.QuantityConfig, error) {
	if !q.IsScalar() {
		return config.QuantityConfig{}, fmt.Errorf("%w: parameter of shape %v", ErrUnsupportedConversion, q.Shape)
	}
	return config.QuantityConfig{Value: q.Value[0], Unit: q.Unit.String()}, nil
}

func convertParam(p params.Parameter) (config.ParamConfig, error) {
	switch x := p.(type) {
	case params.Constant:
		q, err := scalar(x.Get())
		if err != nil {
			return config.ParamConfig{}, err
		}
		return config.Const(q.Value, q.Unit), nil
	case params.Linear:
		slope, err := scalar(x.Slope)
		if err != nil {
			return config.ParamConfig{}, err
		}
		pt, err := scalar(x.PointTime)
		if err != nil {
			return config.ParamConfig{}, err
		}
		pv, err := scalar(x.PointValue)
		if err != nil {
			return config.ParamConfig{}, err
		}
		return config.Linear(slope, pt, pv), nil
	case params.User:
		return config.ParamConfig{}, fmt.Errorf("%w: user-function parameter", ErrUnsupportedConversion)
	}
	return config.ParamConfig{}, fmt.Errorf("%w: parameter type %T", ErrUnsupportedConversion, p)
}

func vectorConfig(q units.Quantity) config.VectorConfig {
	return config.VectorConfig{Values: append([]float64(nil), q.Value...), Unit: q.Unit.String()}
}

func convertOperator(op ops.Operator) ([]config.OperatorConfig, error) {
	switch x := op.(type) {
	case ops.Identity:
		return nil, nil
	case ops.Pipe:
		var out []config.OperatorConfig
		for _, inner := range x {
			ocs, err := convertOperator(inner)
			if err != nil {
				return nil, err
			}
			out = append(out, ocs...)
		}
		return out, nil
	case ops.Translation:
		d := vectorConfig(x.Delta)
		return []config.OperatorConfig{{Type: "translation", Delta: &d}}, nil
	case ops.GalileanTranslation:
		d := vectorConfig(x.Delta)
		dt, err := scalar(x.Dt)
		if err != nil {
			return nil, err
		}
		return []config.OperatorConfig{{Type: "galilean_translation", Delta: &d, Dt: &dt}}, nil
	case ops.Boost:
		v := vectorConfig(x.V)
		return []config.OperatorConfig{{Type: "boost", Velocity: &v}}, nil
	case ops.Rotation:
		m := make([][]float64, 3)
		for i := range m {
			m[i] = append([]float64(nil), x.R[i][:]...)
		}
		return []config.OperatorConfig{{Type: "rotation", Matrix: m}}, nil
	case ops.ConstantRotationZ:
		w, err := scalar(x.Omega)
		if err != nil {
			return nil, err
		}
		return []config.OperatorConfig{{Type: "constant_rotation_z", Omega: &w}}, nil
	}
	return nil, fmt.Errorf("%w: operator %T", ErrUnsupportedConversion, op)
}
