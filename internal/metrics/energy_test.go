package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

func keplerField(t *testing.T) *fields.HamiltonianField {
	t.Helper()
	p, err := potential.NewKepler(units.Galactic, params.MustConstant(units.Scalar(1e12, units.Msun), "mass"))
	if err != nil {
		t.Fatal(err)
	}
	return fields.NewHamiltonianField(p)
}

// circular samples an exact circular orbit of radius r in the x-y plane.
func circular(t *testing.T, r float64, n int) ([]float64, []diffeq.State) {
	t.Helper()
	gm, err := units.GIn(units.Galactic)
	if err != nil {
		t.Fatal(err)
	}
	v := math.Sqrt(gm * 1e12 / r)
	omega := v / r
	ts := make([]float64, n)
	ys := make([]diffeq.State, n)
	for i := range ts {
		ts[i] = float64(i) * 2 * math.Pi / omega / float64(n)
		s, c := math.Sincos(omega * ts[i])
		ys[i] = diffeq.State{r * c, r * s, 0, -v * s, v * c, 0}
	}
	return ts, ys
}

func TestEnergyDriftCircularOrbit(t *testing.T) {
	m := NewEnergyDrift(keplerField(t))
	ts, ys := circular(t, 10, 64)
	for i := range ts {
		m.Observe(ts[i], ys[i])
	}
	if m.Value() > 1e-12 {
		t.Errorf("expected no drift on an exact orbit, got %g", m.Value())
	}
	if m.Err() != nil {
		t.Fatal(m.Err())
	}
}

func TestEnergyDriftDetectsChange(t *testing.T) {
	f := keplerField(t)
	m := NewEnergyDrift(f)

	y := diffeq.State{10, 0, 0, 0, 0.5, 0}
	m.Observe(0, y)
	e0, _ := f.Energy(0, y)

	faster := diffeq.State{10, 0, 0, 0, 0.6, 0}
	m.Observe(1, faster)
	e1, _ := f.Energy(1, faster)

	want := math.Abs(e1-e0) / math.Abs(e0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %g, got %g", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEvaluate(t *testing.T) {
	ts, ys := circular(t, 8, 32)
	ys = append(ys, diffeq.State{math.NaN(), 0, 0, 0, 0, 0})
	ts = append(ts, ts[len(ts)-1]+1)

	got := Evaluate(Defaults(keplerField(t)), ts, ys)

	tests := []struct {
		name string
		want float64
		tol  float64
	}{
		{"energy_drift", 0, 1e-12},
		{"angmom_drift", 0, 1e-12},
		{"r_peri", 8, 1e-12},
		{"r_apo", 8, 1e-12},
	}
	for _, tt := range tests {
		v, ok := got[tt.name]
		if !ok {
			t.Errorf("missing metric %s", tt.name)
			continue
		}
		if math.Abs(v-tt.want) > tt.tol {
			t.Errorf("%s: expected %g, got %g", tt.name, tt.want, v)
		}
	}
}

func TestAngularMomentum(t *testing.T) {
	l := AngularMomentum(diffeq.State{1, 0, 0, 0, 2, 0})
	if l != [3]float64{0, 0, 2} {
		t.Errorf("expected L = (0, 0, 2), got %v", l)
	}

	m := NewAngularMomentumDrift()
	m.Observe(0, diffeq.State{1, 0, 0, 0, 2, 0})
	m.Observe(1, diffeq.State{1, 0, 0, 0, 3, 0})
	if math.Abs(m.Value()-0.5) > 1e-15 {
		t.Errorf("expected drift 0.5, got %g", m.Value())
	}
}

func TestExtentWithoutSamples(t *testing.T) {
	if !math.IsNaN(NewPericenter().Value()) {
		t.Error("expected NaN pericenter before any sample")
	}
}
