package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/num/hyperdual"
)

// burkertConst is 3 ln 2 − π/2, relating the Burkert characteristic mass to
// its central density.
var burkertConst = 3*math.Ln2 - math.Pi/2

var (
	add   = hyperdual.Add
	sub   = hyperdual.Sub
	mul   = hyperdual.Mul
	scale = hyperdual.Scale
	inv   = hyperdual.Inv
	div   = autodiff.Div
	num   = autodiff.N
)

// Kepler is the potential of a point mass, Φ = −G m / r.
type Kepler struct {
	base
	MTot params.Parameter
}

func NewKepler(us units.System, mTot params.Parameter) (*Kepler, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Kepler{base: b, MTot: mTot}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Kepler) Kind() string { return "kepler" }

func (p *Kepler) Fields() []ParamField {
	return []ParamField{{"m_tot", "mass", p.MTot}}
}

func (p *Kepler) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	m, err := p.value(p.MTot, t, "mass")
	if err != nil {
		return hyperdual.Number{}, err
	}
	return scale(-p.g*m, inv(autodiff.Norm(q))), nil
}

// DensityAt is zero away from the origin. At the origin it is +Inf unless
// the mass is zero.
func (p *Kepler) DensityAt(q [3]float64, t float64) (float64, error) {
	m, err := p.value(p.MTot, t, "mass")
	if err != nil {
		return 0, err
	}
	if norm(q) > 0 || m == 0 {
		return 0, nil
	}
	return math.Inf(1), nil
}

// Hernquist is Φ = −G m / (r + r_s).
type Hernquist struct {
	base
	MTot, RS params.Parameter
}

func NewHernquist(us units.System, mTot, rs params.Parameter) (*Hernquist, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Hernquist{base: b, MTot: mTot, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Hernquist) Kind() string { return "hernquist" }

func (p *Hernquist) Fields() []ParamField {
	return []ParamField{{"m_tot", "mass", p.MTot}, {"r_s", "length", p.RS}}
}

func (p *Hernquist) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	return scale(-p.g*m, inv(add(autodiff.Norm(q), num(rs)))), nil
}

func (p *Hernquist) DensityAt(q [3]float64, t float64) (float64, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return 0, err
	}
	m, rs := v[0], v[1]
	s := norm(q) / rs
	rho0 := m / (2 * math.Pi * rs * rs * rs)
	return rho0 / (s * math.Pow(1+s, 3)), nil
}

// Plummer is Φ = −G m / √(r² + r_s²).
type Plummer struct {
	base
	MTot, RS params.Parameter
}

func NewPlummer(us units.System, mTot, rs params.Parameter) (*Plummer, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Plummer{base: b, MTot: mTot, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plummer) Kind() string { return "plummer" }

func (p *Plummer) Fields() []ParamField {
	return []ParamField{{"m_tot", "mass", p.MTot}, {"r_s", "length", p.RS}}
}

func (p *Plummer) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	r2 := autodiff.Dot(q, q)
	return scale(-p.g*m, inv(hyperdual.Sqrt(add(r2, num(rs*rs))))), nil
}

func (p *Plummer) DensityAt(q [3]float64, t float64) (float64, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return 0, err
	}
	m, rs := v[0], v[1]
	r := norm(q)
	return 3 * m / (4 * math.Pi * rs * rs * rs) * math.Pow(1+r*r/(rs*rs), -2.5), nil
}

// Isochrone is Φ = −G m / (r_s + √(r² + r_s²)).
type Isochrone struct {
	base
	MTot, RS params.Parameter
}

func NewIsochrone(us units.System, mTot, rs params.Parameter) (*Isochrone, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Isochrone{base: b, MTot: mTot, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Isochrone) Kind() string { return "isochrone" }

func (p *Isochrone) Fields() []ParamField {
	return []ParamField{{"m_tot", "mass", p.MTot}, {"r_s", "length", p.RS}}
}

func (p *Isochrone) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	s := hyperdual.Sqrt(add(autodiff.Dot(q, q), num(rs*rs)))
	return scale(-p.g*m, inv(add(s, num(rs)))), nil
}

// Jaffe is Φ = −(G m / r_s) ln(1 + r_s / r).
type Jaffe struct {
	base
	M, RS params.Parameter
}

func NewJaffe(us units.System, m, rs params.Parameter) (*Jaffe, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Jaffe{base: b, M: m, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Jaffe) Kind() string { return "jaffe" }

func (p *Jaffe) Fields() []ParamField {
	return []ParamField{{"m", "mass", p.M}, {"r_s", "length", p.RS}}
}

func (p *Jaffe) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	x := scale(rs, inv(autodiff.Norm(q)))
	return scale(-p.g*m/rs, hyperdual.Log(add(num(1), x))), nil
}

// Burkert is the cored dark-matter halo of Burkert (1995), parametrized by
// its characteristic mass m = π ρ0 r_s³ (3 ln 2 − π/2).
type Burkert struct {
	base
	M, RS params.Parameter
}

func NewBurkert(us units.System, m, rs params.Parameter) (*Burkert, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &Burkert{base: b, M: m, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Burkert) Kind() string { return "burkert" }

func (p *Burkert) Fields() []ParamField {
	return []ParamField{{"m", "mass", p.M}, {"r_s", "length", p.RS}}
}

func (p *Burkert) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	x := scale(1/rs, autodiff.Norm(q))
	xinv := inv(x)
	one := num(1)
	onePlus := add(one, xinv)
	terms := num(math.Pi)
	terms = sub(terms, scale(2, mul(onePlus, hyperdual.Atan(x))))
	terms = add(terms, scale(2, mul(onePlus, hyperdual.Log(add(one, x)))))
	terms = sub(terms, mul(sub(one, xinv), hyperdual.Log(add(one, autodiff.Square(x)))))
	return scale(-p.g*m/(rs*burkertConst), terms), nil
}

func (p *Burkert) DensityAt(q [3]float64, t float64) (float64, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return 0, err
	}
	m, rs := v[0], v[1]
	r := norm(q)
	return m / (math.Pi * burkertConst) / ((r + rs) * (r*r + rs*rs)), nil
}

// NFW is the Navarro–Frenk–White halo with scale mass m,
// Φ = −(G m / r) ln(1 + r / r_s).
type NFW struct {
	base
	M, RS params.Parameter
}

func NewNFW(us units.System, m, rs params.Parameter) (*NFW, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &NFW{base: b, M: m, RS: rs}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *NFW) Kind() string { return "nfw" }

func (p *NFW) Fields() []ParamField {
	return []ParamField{{"m", "mass", p.M}, {"r_s", "length", p.RS}}
}

func (p *NFW) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs := v[0], v[1]
	r := autodiff.Norm(q)
	l := hyperdual.Log(add(num(1), scale(1/rs, r)))
	return scale(-p.g*m, div(l, r)), nil
}

func (p *NFW) DensityAt(q [3]float64, t float64) (float64, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return 0, err
	}
	m, rs := v[0], v[1]
	s := norm(q) / rs
	return m / (4 * math.Pi * rs * rs * rs) / (s * (1 + s) * (1 + s)), nil
}

// StoneOstriker15 is the cored power-law halo of Stone & Ostriker (2015).
type StoneOstriker15 struct {
	base
	MTot, RC, RH params.Parameter
}

func NewStoneOstriker15(us units.System, mTot, rc, rh params.Parameter) (*StoneOstriker15, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &StoneOstriker15{base: b, MTot: mTot, RC: rc, RH: rh}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *StoneOstriker15) Kind() string { return "stoneostriker15" }

func (p *StoneOstriker15) Fields() []ParamField {
	return []ParamField{{"m_tot", "mass", p.MTot}, {"r_c", "length", p.RC}, {"r_h", "length", p.RH}}
}

func (p *StoneOstriker15) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rc, rh := v[0], v[1], v[2]
	r := autodiff.Norm(q)
	rinv := inv(r)
	r2 := autodiff.Square(r)
	a := -2 * p.g * m / (math.Pi * (rh - rc))
	terms := scale(rh, mul(rinv, hyperdual.Atan(scale(1/rh, r))))
	terms = sub(terms, scale(rc, mul(rinv, hyperdual.Atan(scale(1/rc, r)))))
	terms = add(terms, scale(0.5, hyperdual.Log(div(add(r2, num(rh*rh)), add(r2, num(rc*rc))))))
	return scale(a, terms), nil
}

// TriaxialHernquist is a Hernquist profile on ellipsoidal radii
// r' = √(x² + (y/q1)² + (z/q2)²).
type TriaxialHernquist struct {
	base
	MTot, RS, Q1, Q2 params.Parameter
}

func NewTriaxialHernquist(us units.System, mTot, rs, q1, q2 params.Parameter) (*TriaxialHernquist, error) {
	b, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &TriaxialHernquist{base: b, MTot: mTot, RS: rs, Q1: q1, Q2: q2}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *TriaxialHernquist) Kind() string { return "triaxialhernquist" }

func (p *TriaxialHernquist) Fields() []ParamField {
	return []ParamField{
		{"m_tot", "mass", p.MTot},
		{"r_s", "length", p.RS},
		{"q1", "dimensionless", p.Q1},
		{"q2", "dimensionless", p.Q2},
	}
}

func (p *TriaxialHernquist) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, rs, q1, q2 := v[0], v[1], v[2], v[3]
	if rs <= 0 {
		return hyperdual.Number{}, fmt.Errorf("%w: r_s must be positive, got %v", ErrBadParameter, rs)
	}
	s := autodiff.Square(q[0])
	s = add(s, autodiff.Square(scale(1/q1, q[1])))
	s = add(s, autodiff.Square(scale(1/q2, q[2])))
	return scale(-p.g*m, inv(add(hyperdual.Sqrt(s), num(rs)))), nil
}
