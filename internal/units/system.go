package units

import (
	"fmt"
	"sort"
	"strings"

	cunit "github.com/ctessum/unit"
)

var dimensionNames = map[string]cunit.Dimensions{
	"dimensionless":     cunit.Dimless,
	"length":            {cunit.LengthDim: 1},
	"mass":              {cunit.MassDim: 1},
	"time":              {cunit.TimeDim: 1},
	"angle":             {cunit.AngleDim: 1},
	"speed":             {cunit.LengthDim: 1, cunit.TimeDim: -1},
	"acceleration":      {cunit.LengthDim: 1, cunit.TimeDim: -2},
	"specific energy":   {cunit.LengthDim: 2, cunit.TimeDim: -2},
	"frequency":         {cunit.TimeDim: -1},
	"frequency squared": {cunit.TimeDim: -2},
	"angular speed":     {cunit.AngleDim: 1, cunit.TimeDim: -1},
	"mass density":      {cunit.MassDim: 1, cunit.LengthDim: -3},
	"mass per time":     {cunit.MassDim: 1, cunit.TimeDim: -1},
	"area":              {cunit.LengthDim: 2},
	"volume":            {cunit.LengthDim: 3},
}

// DimensionOf resolves a physical dimension name such as "length" or
// "mass density".
func DimensionOf(name string) (cunit.Dimensions, error) {
	d, ok := dimensionNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return d, nil
}

// DimensionNames lists the names DimensionOf understands.
func DimensionNames() []string {
	names := make([]string, 0, len(dimensionNames))
	for n := range dimensionNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// System is an ordered set of base units. Every other dimension is resolved
// as a product of powers of the base units.
type System struct {
	name   string
	length Unit
	mass   Unit
	time   Unit
	angle  Unit
}

var (
	Galactic    = NewSystem("galactic", Kpc, Msun, Myr, Rad)
	SolarSystem = NewSystem("solarsystem", AU, Msun, Yr, Rad)
	SI          = NewSystem("si", M, Kg, S, Rad)
)

// NewSystem builds a unit system from its length, mass, time and angle units.
func NewSystem(name string, length, mass, time, angle Unit) System {
	return System{name: name, length: length, mass: mass, time: time, angle: angle}
}

// SystemByName returns one of the predefined systems.
func SystemByName(name string) (System, error) {
	switch strings.ToLower(name) {
	case "", "galactic":
		return Galactic, nil
	case "solarsystem", "solar_system":
		return SolarSystem, nil
	case "si":
		return SI, nil
	}
	return System{}, fmt.Errorf("units: unknown unit system %q", name)
}

func (s System) Name() string   { return s.name }
func (s System) Length() Unit   { return s.length }
func (s System) Mass() Unit     { return s.mass }
func (s System) Time() Unit     { return s.time }
func (s System) Angle() Unit    { return s.angle }
func (s System) String() string { return s.name }

// Equal reports whether both systems use identical base units.
func (s System) Equal(o System) bool {
	return s.length.Equal(o.length) && s.mass.Equal(o.mass) &&
		s.time.Equal(o.time) && s.angle.Equal(o.angle)
}

// Get returns the unit of s for a named dimension, e.g. "specific energy"
// resolves to kpc2 / Myr2 in the galactic system.
func (s System) Get(dimension string) (Unit, error) {
	d, err := DimensionOf(dimension)
	if err != nil {
		return Unit{}, err
	}
	return s.ForDimensions(d), nil
}

// MustGet is like Get but panics on an unknown dimension name.
func (s System) MustGet(dimension string) Unit {
	u, err := s.Get(dimension)
	if err != nil {
		panic(err)
	}
	return u
}

// ForDimensions returns the unit of s with the given dimensions.
func (s System) ForDimensions(d cunit.Dimensions) Unit {
	out := Dimensionless
	for dim, base := range map[cunit.Dimension]Unit{
		cunit.LengthDim: s.length,
		cunit.MassDim:   s.mass,
		cunit.TimeDim:   s.time,
		cunit.AngleDim:  s.angle,
	} {
		if p := d[dim]; p != 0 {
			out = out.Mul(base.Pow(p))
		}
	}
	return out
}

// Decompose expresses u in the base units of s and returns the scale factor
// between them.
func (s System) Decompose(u Unit) (Unit, float64, error) {
	target := s.ForDimensions(u.Dimensions())
	f, err := u.Conversion(target)
	if err != nil {
		return Unit{}, 0, err
	}
	return target, f, nil
}
