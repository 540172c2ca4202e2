// Package metrics accumulates diagnostics over sampled orbits.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
)

// Metric observes the states of one orbit in time order.
type Metric interface {
	Name() string
	Observe(t float64, y diffeq.State)
	Value() float64
	Reset()
}

// Defaults returns the diagnostics recorded for every stored run.
func Defaults(f *fields.HamiltonianField) []Metric {
	return []Metric{
		NewEnergyDrift(f),
		NewAngularMomentumDrift(),
		NewPericenter(),
		NewApocenter(),
	}
}

// Evaluate feeds ys to every metric and collects the values by name. NaN
// states, left behind by a solve that stopped early, are skipped.
func Evaluate(ms []Metric, ts []float64, ys []diffeq.State) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i, y := range ys {
		if !y.IsValid() {
			continue
		}
		for _, m := range ms {
			m.Observe(ts[i], y)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// AngularMomentum is q × p.
func AngularMomentum(y diffeq.State) [3]float64 {
	return [3]float64{
		y[1]*y[5] - y[2]*y[4],
		y[2]*y[3] - y[0]*y[5],
		y[0]*y[4] - y[1]*y[3],
	}
}

// AngularMomentumDrift is the largest |L(t) − L(0)| / |L(0)|.
type AngularMomentumDrift struct {
	initial  []float64
	maxDrift float64
}

func NewAngularMomentumDrift() *AngularMomentumDrift { return &AngularMomentumDrift{} }

func (a *AngularMomentumDrift) Name() string { return "angmom_drift" }

func (a *AngularMomentumDrift) Observe(_ float64, y diffeq.State) {
	l := AngularMomentum(y)
	if a.initial == nil {
		a.initial = l[:]
		return
	}
	n := floats.Norm(a.initial, 2)
	if n == 0 {
		return
	}
	a.maxDrift = math.Max(a.maxDrift, floats.Distance(l[:], a.initial, 2)/n)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = nil
	a.maxDrift = 0
}

type extent struct {
	name string
	r    float64
	seen bool
	pick func(a, b float64) float64
}

func (e *extent) Name() string { return e.name }

func (e *extent) Observe(_ float64, y diffeq.State) {
	r := floats.Norm(y[:3], 2)
	if !e.seen {
		e.r, e.seen = r, true
		return
	}
	e.r = e.pick(e.r, r)
}

func (e *extent) Value() float64 {
	if !e.seen {
		return math.NaN()
	}
	return e.r
}

func (e *extent) Reset() { e.r, e.seen = 0, false }

// NewPericenter tracks the smallest sampled galactocentric radius.
func NewPericenter() Metric { return &extent{name: "r_peri", pick: math.Min} }

// NewApocenter tracks the largest sampled galactocentric radius.
func NewApocenter() Metric { return &extent{name: "r_apo", pick: math.Max} }
