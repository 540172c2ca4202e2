package potential

import (
	"fmt"
	"sort"

	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/units"
)

// ParamSpec describes one constructor argument of a catalog potential.
// A nil Default makes the parameter required.
type ParamSpec struct {
	Name      string
	Dimension string
	Default   *units.Quantity
}

// Entry is a catalog potential that can be built from named parameters.
type Entry struct {
	Kind   string
	Params []ParamSpec
	build  func(us units.System, p []params.Parameter) (Potential, error)
}

var catalog = map[string]Entry{}

func register(kind string, specs []ParamSpec, build func(us units.System, p []params.Parameter) (Potential, error)) {
	catalog[kind] = Entry{Kind: kind, Params: specs, build: build}
}

func req(name, dim string) ParamSpec { return ParamSpec{Name: name, Dimension: dim} }

func opt(name, dim string, v units.Quantity) ParamSpec {
	return ParamSpec{Name: name, Dimension: dim, Default: &v}
}

func init() {
	massScale := []ParamSpec{req("m_tot", "mass"), req("r_s", "length")}
	scaleMass := []ParamSpec{req("m", "mass"), req("r_s", "length")}

	register("kepler", []ParamSpec{req("m_tot", "mass")}, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewKepler(us, p[0])
	})
	register("hernquist", massScale, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewHernquist(us, p[0], p[1])
	})
	register("plummer", massScale, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewPlummer(us, p[0], p[1])
	})
	register("isochrone", massScale, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewIsochrone(us, p[0], p[1])
	})
	register("jaffe", scaleMass, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewJaffe(us, p[0], p[1])
	})
	register("burkert", scaleMass, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewBurkert(us, p[0], p[1])
	})
	register("nfw", scaleMass, func(us units.System, p []params.Parameter) (Potential, error) {
		return NewNFW(us, p[0], p[1])
	})
	register("stoneostriker15",
		[]ParamSpec{req("m_tot", "mass"), req("r_c", "length"), req("r_h", "length")},
		func(us units.System, p []params.Parameter) (Potential, error) {
			return NewStoneOstriker15(us, p[0], p[1], p[2])
		})
	register("triaxialhernquist",
		[]ParamSpec{
			req("m_tot", "mass"),
			req("r_s", "length"),
			opt("q1", "dimensionless", units.Scalar(1, units.Dimensionless)),
			opt("q2", "dimensionless", units.Scalar(1, units.Dimensionless)),
		},
		func(us units.System, p []params.Parameter) (Potential, error) {
			return NewTriaxialHernquist(us, p[0], p[1], p[2], p[3])
		})
	register("longmuralibar",
		[]ParamSpec{
			req("m_tot", "mass"),
			req("a", "length"),
			req("b", "length"),
			req("c", "length"),
			opt("Omega", units.RotationRate, units.Scalar(0, units.MustParse("1 / Myr"))),
		},
		func(us units.System, p []params.Parameter) (Potential, error) {
			return NewLongMuraliBar(us, p[0], p[1], p[2], p[3], p[4])
		})
}

// Kinds lists the registered catalog names.
func Kinds() []string {
	out := make([]string, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the catalog entry for kind.
func Lookup(kind string) (Entry, bool) {
	e, ok := catalog[kind]
	return e, ok
}

// Build constructs a catalog potential from named parameters, filling in
// defaults. Unknown parameter names are rejected.
func Build(kind string, us units.System, ps map[string]params.Parameter) (Potential, error) {
	e, ok := catalog[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	known := make(map[string]bool, len(e.Params))
	args := make([]params.Parameter, len(e.Params))
	for i, spec := range e.Params {
		known[spec.Name] = true
		if p, ok := ps[spec.Name]; ok {
			args[i] = p
			continue
		}
		if spec.Default == nil {
			return nil, fmt.Errorf("%w: %s requires %s", ErrBadParameter, kind, spec.Name)
		}
		c, err := params.NewConstant(*spec.Default, spec.Dimension)
		if err != nil {
			return nil, err
		}
		args[i] = c
	}
	for name := range ps {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s has no parameter %s", ErrBadParameter, kind, name)
		}
	}
	return e.build(us, args)
}
