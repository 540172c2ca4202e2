package units

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	cunit "github.com/ctessum/unit"
)

type base struct {
	scale float64 // SI value of one unit
	dims  cunit.Dimensions
}

var registry = map[string]base{
	"m":       {1, cunit.Dimensions{cunit.LengthDim: 1}},
	"km":      {1e3, cunit.Dimensions{cunit.LengthDim: 1}},
	"AU":      {1.495978707e11, cunit.Dimensions{cunit.LengthDim: 1}},
	"pc":      {3.0856775814913673e16, cunit.Dimensions{cunit.LengthDim: 1}},
	"kpc":     {3.0856775814913673e19, cunit.Dimensions{cunit.LengthDim: 1}},
	"Mpc":     {3.0856775814913673e22, cunit.Dimensions{cunit.LengthDim: 1}},
	"s":       {1, cunit.Dimensions{cunit.TimeDim: 1}},
	"d":       {86400, cunit.Dimensions{cunit.TimeDim: 1}},
	"yr":      {3.15576e7, cunit.Dimensions{cunit.TimeDim: 1}},
	"Myr":     {3.15576e13, cunit.Dimensions{cunit.TimeDim: 1}},
	"Gyr":     {3.15576e16, cunit.Dimensions{cunit.TimeDim: 1}},
	"Hz":      {1, cunit.Dimensions{cunit.TimeDim: -1}},
	"kg":      {1, cunit.Dimensions{cunit.MassDim: 1}},
	"solMass": {1.988409870698051e30, cunit.Dimensions{cunit.MassDim: 1}},
	"rad":     {1, cunit.Dimensions{cunit.AngleDim: 1}},
	"deg":     {math.Pi / 180, cunit.Dimensions{cunit.AngleDim: 1}},
}

var aliases = map[string]string{
	"Msun":   "solMass",
	"day":    "d",
	"year":   "yr",
	"degree": "deg",
}

type factor struct {
	name  string
	power int
}

// Unit is an immutable product of named base units. The zero Unit is
// dimensionless.
type Unit struct {
	factors []factor
	si      *cunit.Unit
}

// Common units.
var (
	Dimensionless = Unit{}
	M             = MustParse("m")
	Km            = MustParse("km")
	AU            = MustParse("AU")
	Pc            = MustParse("pc")
	Kpc           = MustParse("kpc")
	S             = MustParse("s")
	Yr            = MustParse("yr")
	Myr           = MustParse("Myr")
	Gyr           = MustParse("Gyr")
	Kg            = MustParse("kg")
	Msun          = MustParse("solMass")
	Rad           = MustParse("rad")
	Deg           = MustParse("deg")
	KmPerS        = MustParse("km / s")
)

func (u Unit) siUnit() *cunit.Unit {
	if u.si == nil {
		return cunit.New(1, cunit.Dimless)
	}
	return u.si
}

// Scale is the SI value of one u.
func (u Unit) Scale() float64 { return u.siUnit().Value() }

// Dimensions returns the SI dimensions of u.
func (u Unit) Dimensions() cunit.Dimensions { return u.siUnit().Dimensions() }

// IsDimensionless reports whether u carries no physical dimension. It may
// still carry a scale, e.g. "km / m".
func (u Unit) IsDimensionless() bool { return len(u.Dimensions()) == 0 }

// Compatible reports whether u and v measure the same physical dimension.
func (u Unit) Compatible(v Unit) bool {
	return u.Dimensions().Matches(v.Dimensions())
}

// Equal reports whether u and v are the same product of named units.
func (u Unit) Equal(v Unit) bool { return u.String() == v.String() }

// Mul returns the product unit u·v. Powers of the same named unit are
// combined; different named units are never merged.
func (u Unit) Mul(v Unit) Unit {
	return Unit{
		factors: mergeFactors(u.factors, v.factors, 1),
		si:      cunit.Mul(u.siUnit(), v.siUnit()),
	}
}

// Div returns the quotient unit u/v.
func (u Unit) Div(v Unit) Unit {
	return Unit{
		factors: mergeFactors(u.factors, v.factors, -1),
		si:      cunit.Div(u.siUnit(), v.siUnit()),
	}
}

// Pow returns u raised to the integer power n.
func (u Unit) Pow(n int) Unit {
	out := Dimensionless
	for i := 0; i < abs(n); i++ {
		out = out.Mul(u)
	}
	if n < 0 {
		return Dimensionless.Div(out)
	}
	return out
}

// Conversion returns the factor f such that a value x in u equals f·x in to.
func (u Unit) Conversion(to Unit) (float64, error) {
	if !u.Compatible(to) {
		return 0, fmt.Errorf("%w: cannot convert %q (%s) to %q (%s)",
			ErrDimensionMismatch, u, dimString(u.Dimensions()), to, dimString(to.Dimensions()))
	}
	return u.Scale() / to.Scale(), nil
}

// Check returns ErrDimensionMismatch unless u has the named physical
// dimension, e.g. "length" or "specific energy".
func (u Unit) Check(dimension string) error {
	if strings.EqualFold(strings.TrimSpace(dimension), RotationRate) {
		if u.Check("frequency") == nil || u.Check("angular speed") == nil {
			return nil
		}
		return fmt.Errorf("%w: %q is not a %s", ErrDimensionMismatch, u, RotationRate)
	}
	d, err := DimensionOf(dimension)
	if err != nil {
		return err
	}
	if err := u.siUnit().Check(d); err != nil {
		return fmt.Errorf("%w: %q is not a %s: %v", ErrDimensionMismatch, u, dimension, err)
	}
	return nil
}

// String renders u the way astropy does: numerator factors, then " / " and
// the denominator factors, each group sorted by name, powers appended.
func (u Unit) String() string {
	var num, den []string
	for _, f := range u.factors {
		switch {
		case f.power > 0:
			num = append(num, powString(f.name, f.power))
		case f.power < 0:
			den = append(den, powString(f.name, -f.power))
		}
	}
	sort.Strings(num)
	sort.Strings(den)
	switch {
	case len(num) == 0 && len(den) == 0:
		return ""
	case len(den) == 0:
		return strings.Join(num, " ")
	case len(num) == 0:
		return "1 / " + strings.Join(den, " ")
	default:
		return strings.Join(num, " ") + " / " + strings.Join(den, " ")
	}
}

func powString(name string, p int) string {
	if p == 1 {
		return name
	}
	return name + strconv.Itoa(p)
}

func mergeFactors(a, b []factor, sign int) []factor {
	out := make([]factor, 0, len(a)+len(b))
	out = append(out, a...)
	for _, f := range b {
		merged := false
		for i := range out {
			if out[i].name == f.name {
				out[i].power += sign * f.power
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, factor{f.name, sign * f.power})
		}
	}
	kept := out[:0]
	for _, f := range out {
		if f.power != 0 {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var tokenRE = regexp.MustCompile(`^([A-Za-z]+)(?:\^|\*\*)?(-?[0-9]+)?$`)

// Parse parses unit strings such as "kpc", "km/s", "kpc2 / Myr2",
// "1/Myr^2", "kpc**2" or "Msun yr-1". Everything after a "/" is in the denominator.
func Parse(s string) (Unit, error) {
	// "**" binds before "*" is read as multiplication.
	s = strings.NewReplacer("**", "^", "(", " ", ")", " ", "*", " ").Replace(s)
	s = strings.ReplaceAll(s, "  ", " ")
	out := Dimensionless
	sign := 1
	for _, part := range strings.Split(s, "/") {
		for _, tok := range strings.Fields(part) {
			if tok == "1" {
				continue
			}
			m := tokenRE.FindStringSubmatch(tok)
			if m == nil {
				return Unit{}, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, tok, s)
			}
			name := m[1]
			if canon, ok := aliases[name]; ok {
				name = canon
			}
			b, ok := registry[name]
			if !ok {
				return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
			}
			p := 1
			if m[2] != "" {
				p, _ = strconv.Atoi(m[2])
			}
			named := Unit{factors: []factor{{name, 1}}, si: cunit.New(b.scale, b.dims)}
			out = out.Mul(named.Pow(sign * p))
		}
		sign = -1
	}
	return out, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// unit definitions.
func MustParse(s string) Unit {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func dimString(d cunit.Dimensions) string {
	if len(d) == 0 {
		return "dimensionless"
	}
	return d.String()
}
