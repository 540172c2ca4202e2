package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/galdyn/internal/automation"
	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/experiment"
)

func init() {
	logrus.SetLevel(logrus.WarnLevel)
}

func keplerBase() *config.Config {
	cfg := config.GetPreset("kepler")
	cfg.Integration.T1 = config.QuantityConfig{Value: 300, Unit: "Myr"}
	cfg.Integration.SaveN = 301
	return cfg
}

func TestGridSearchFindsCircularOrbit(t *testing.T) {
	// v_c = sqrt(GM/r) for 1e12 Msun at 10 kpc.
	vc := math.Sqrt(4.300917e-6 * 1e12 / 10)
	g := NewGridSearch([]string{"initial.p.1"}, [][]float64{{450, vc, 800}})
	if g.Size() != 3 {
		t.Fatalf("expected 3 grid points, got %d", g.Size())
	}

	best, score, err := g.Search(context.Background(), keplerBase(), Eccentricity())
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["initial.p.1"] != vc {
		t.Errorf("expected the circular speed %g, got %v", vc, best)
	}
	if score > 1e-3 {
		t.Errorf("expected a near-zero eccentricity, got %g", score)
	}
}

func TestGridSearchTwoTargets(t *testing.T) {
	g := NewGridSearch(
		[]string{"potential.point.m_tot", "initial.q.0"},
		[][]float64{{2e11, 1e12}, {8, 10}},
	)
	if g.Size() != 4 {
		t.Fatalf("expected 4 grid points, got %d", g.Size())
	}
	// Below circular speed the start is the apocenter; the light point mass
	// leaves 500 km/s unbound.
	best, score, err := g.Search(context.Background(), keplerBase(), Metric("r_apo"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best["initial.q.0"] != 8 || best["potential.point.m_tot"] != 1e12 {
		t.Errorf("unexpected best point %v", best)
	}
	if math.Abs(score-8) > 1e-5 {
		t.Errorf("expected r_apo 8, got %g", score)
	}
}

func TestGridSearchErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}).Search(ctx, keplerBase(), Metric("r_apo"))
	if err == nil {
		t.Error("expected an error for mismatched targets and ranges")
	}

	_, _, err = NewGridSearch([]string{"initial.w.0"}, [][]float64{{1}}).Search(ctx, keplerBase(), Metric("r_apo"))
	if !errors.Is(err, automation.ErrBadTarget) {
		t.Errorf("expected ErrBadTarget, got %v", err)
	}

	_, _, err = NewGridSearch([]string{"initial.q.0"}, [][]float64{{10}}).Search(ctx, keplerBase(), Metric("nope"))
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = NewGridSearch([]string{"initial.q.0"}, [][]float64{{10}}).Search(canceled, keplerBase(), Metric("r_apo"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMetricMissing(t *testing.T) {
	if v := Metric("r_apo")(&experiment.Result{}); !math.IsNaN(v) {
		t.Errorf("expected NaN for a run without metrics, got %g", v)
	}
}
