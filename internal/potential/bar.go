package potential

import (
	"github.com/san-kum/galdyn/internal/autodiff"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/num/hyperdual"
)

// LongMuraliBar is the triaxial bar of Long & Murali (1992) with half-length
// a, thickness b and scale height c, rotating about z with pattern speed
// Omega. Positions are rotated by −Omega·t into the bar frame.
type LongMuraliBar struct {
	base
	M, A, B, C, Omega params.Parameter
}

func NewLongMuraliBar(us units.System, m, a, b, c, omega params.Parameter) (*LongMuraliBar, error) {
	bs, err := newBase(us)
	if err != nil {
		return nil, err
	}
	p := &LongMuraliBar{base: bs, M: m, A: a, B: b, C: c, Omega: omega}
	if err := checkParams(p.Fields()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LongMuraliBar) Kind() string { return "longmuralibar" }

func (p *LongMuraliBar) Fields() []ParamField {
	return []ParamField{
		{"m_tot", "mass", p.M},
		{"a", "length", p.A},
		{"b", "length", p.B},
		{"c", "length", p.C},
		{"Omega", units.RotationRate, p.Omega},
	}
}

func (p *LongMuraliBar) PotentialAt(q autodiff.Vec, t float64) (hyperdual.Number, error) {
	v, err := p.values(t, p.Fields()...)
	if err != nil {
		return hyperdual.Number{}, err
	}
	m, a, b, c, omega := v[0], v[1], v[2], v[3], v[4]

	qb := autodiff.RotateZ(q, -omega*t)
	x, y, z := qb[0], qb[1], qb[2]

	y2 := autodiff.Square(y)
	bz := add(num(b), hyperdual.Sqrt(add(num(c*c), autodiff.Square(z))))
	bz2 := autodiff.Square(bz)
	tPlus := hyperdual.Sqrt(add(add(autodiff.Square(add(num(a), x)), y2), bz2))
	tMinus := hyperdual.Sqrt(add(add(autodiff.Square(sub(num(a), x)), y2), bz2))

	ratio := div(add(sub(x, num(a)), tMinus), add(add(x, num(a)), tPlus))
	return scale(p.g*m/(2*a), hyperdual.Log(ratio)), nil
}
