package integrate

import (
	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/shape"
	"github.com/san-kum/galdyn/internal/units"
)

// Interpolant evaluates the dense output of an orbit batch at arbitrary
// times. It extrapolates outside the integrated interval.
type Interpolant struct {
	interps []*diffeq.DenseInterpolation
	batch   []int
	units   units.System
}

// Units is the system the interpolant strips query times to and tags
// results with.
func (ip *Interpolant) Units() units.System { return ip.units }

// Orbit returns the raw dense output of the i-th batch element, or nil if
// that solve produced none.
func (ip *Interpolant) Orbit(i int) *diffeq.DenseInterpolation {
	if i < 0 || i >= len(ip.interps) {
		return nil
	}
	return ip.interps[i]
}

// Evaluate returns the orbit at t. Q and P have shape (*batch, *t.Shape, 3),
// so a scalar t yields exactly the batch shape of the initial conditions.
func (ip *Interpolant) Evaluate(t units.Quantity) (*coords.PhaseSpacePosition, error) {
	raw, err := t.ValueIn(ip.units.Time())
	if err != nil {
		return nil, err
	}
	n := shape.Size(ip.batch)
	nT := len(raw)
	qs := make([]float64, n*nT*3)
	ps := make([]float64, n*nT*3)
	for i := 0; i < n; i++ {
		for j, tj := range raw {
			k := (i*nT + j) * 3
			var y diffeq.State
			if ip.interps[i] != nil {
				y = ip.interps[i].Evaluate(tj)
			}
			if y == nil {
				fillNaN(qs[k:k+3], ps[k:k+3])
				continue
			}
			copy(qs[k:k+3], y[:3])
			copy(ps[k:k+3], y[3:])
		}
	}
	out := shape.Concat(shape.Concat(ip.batch, t.Shape...), 3)
	return wrap(ip.units, qs, ps, out, t)
}
