package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/params"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		dt     float64
		n      int
		tol    float64
	}{
		{"whole cycles", 10, 0.1, 1000, 1e-3},
		{"partial cycle", 7.3, 0.05, 1500, 0.05},
		{"odd length", 4, 0.1, 801, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.n)
			for i := range data {
				data[i] = 3 + math.Sin(2*math.Pi*float64(i)*tt.dt/tt.period)
			}
			got, err := DominantPeriod(data, tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.period) > tt.tol*tt.period {
				t.Errorf("expected period %g, got %g", tt.period, got)
			}
		})
	}
}

func TestDominantPeriodErrors(t *testing.T) {
	if _, err := DominantPeriod([]float64{1, 2}, 1); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
	if _, err := DominantPeriod(make([]float64, 16), 1); !errors.Is(err, ErrNoPeak) {
		t.Errorf("expected ErrNoPeak, got %v", err)
	}
	if _, err := DominantPeriod(make([]float64, 16), 0); !errors.Is(err, ErrUnevenSampling) {
		t.Errorf("expected ErrUnevenSampling, got %v", err)
	}
}

func TestRadialPeriod(t *testing.T) {
	const period = 250.0
	n := 1000
	ts := make([]float64, n)
	ys := make([]diffeq.State, n)
	for i := range ts {
		ts[i] = 2.5 * float64(i)
		r := 10 + 2*math.Cos(2*math.Pi*ts[i]/period)
		ys[i] = diffeq.State{0, r, 0, 0, 0, 0}
	}
	got, err := RadialPeriod(ts, ys)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-period) > 1e-3*period {
		t.Errorf("expected %g, got %g", period, got)
	}

	ts[3] += 0.1
	if _, err := RadialPeriod(ts, ys); !errors.Is(err, ErrUnevenSampling) {
		t.Errorf("expected ErrUnevenSampling, got %v", err)
	}
}

func TestLyapunovExponentLinearGrowth(t *testing.T) {
	// Separations of y' = a·y grow exactly like exp(a·t).
	const a = 0.3
	grow := diffeq.TermFunc(func(_ float64, y diffeq.State, _ any) (diffeq.State, error) {
		return diffeq.State{a * y[0]}, nil
	})
	got, err := LyapunovExponent(context.Background(), grow, diffeq.Dopri5{}, diffeq.State{1}, 0, 20,
		LyapunovConfig{Interval: 1, D0: 1e-4, Options: diffeq.DefaultOptions()})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-a) > 1e-5 {
		t.Errorf("expected %g, got %g", a, got)
	}
}

func TestLyapunovExponentRegularOrbit(t *testing.T) {
	f := keplerField(t)
	y0 := diffeq.State{10, 0, 0, 0, 0.6, 0}
	got, err := LyapunovExponent(context.Background(), f, diffeq.Dopri5{}, y0, 0, 2000,
		LyapunovConfig{D0: 1e-5, Options: diffeq.DefaultOptions()})
	if err != nil {
		t.Fatal(err)
	}
	// Kepler orbits separate linearly, so the estimate is ln(growth)/T.
	if math.Abs(got) > 1e-2 {
		t.Errorf("expected a small exponent for a regular orbit, got %g", got)
	}

	if _, err := LyapunovExponent(context.Background(), f, diffeq.Dopri5{}, y0, 10, 0, LyapunovConfig{}); !errors.Is(err, ErrBadInterval) {
		t.Errorf("expected ErrBadInterval, got %v", err)
	}
}

func keplerField(t *testing.T) *fields.HamiltonianField {
	t.Helper()
	p, err := potential.NewKepler(units.Galactic, params.MustConstant(units.Scalar(1e12, units.Msun), "mass"))
	if err != nil {
		t.Fatal(err)
	}
	return fields.NewHamiltonianField(p)
}

func TestSurfaceOfSectionCircularOrbit(t *testing.T) {
	f := keplerField(t)
	gm, err := units.GIn(units.Galactic)
	if err != nil {
		t.Fatal(err)
	}
	r := 10.0
	v := math.Sqrt(gm * 1e12 / r)
	period := 2 * math.Pi * r / v

	opts := diffeq.DefaultOptions()
	opts.SaveAt = diffeq.SaveAt{T1: true, Dense: true}
	opts.MaxSteps = 0
	sol, err := diffeq.Solve(context.Background(), f, diffeq.Dopri5{}, 0, 3.5*period, 0, diffeq.State{r, 0, 0, 0, v, 0}, opts)
	if err != nil {
		t.Fatal(err)
	}

	ts, ys, err := SurfaceOfSection(sol.Interpolation, 1, 400)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 3 {
		t.Fatalf("expected 3 crossings, got %d", len(ts))
	}
	for i, tc := range ts {
		if math.Abs(tc-float64(i+1)*period) > 1e-4*period {
			t.Errorf("crossing %d at %g, expected %g", i, tc, float64(i+1)*period)
		}
		if math.Abs(ys[i][0]-r) > 1e-4 {
			t.Errorf("crossing %d at x=%g, expected %g", i, ys[i][0], r)
		}
	}

	if _, _, err := SurfaceOfSection(nil, 1, 10); !errors.Is(err, ErrTooFewSamples) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}
