package export

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/galdyn/internal/diffeq"
)

func ring(n int, r float64) []diffeq.State {
	out := make([]diffeq.State, n)
	for i := range out {
		th := 2 * math.Pi * float64(i) / float64(n)
		out[i] = diffeq.State{r * math.Cos(th), r * math.Sin(th), 0, -math.Sin(th), math.Cos(th), 0}
	}
	return out
}

func TestAxis(t *testing.T) {
	tests := []struct {
		name string
		want int
		err  bool
	}{
		{"x", 0, false},
		{"z", 2, false},
		{"vy", 4, false},
		{"r", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := Axis(tt.name)
		if tt.err {
			if !errors.Is(err, ErrBadAxis) {
				t.Errorf("Axis(%q): expected ErrBadAxis, got %v", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Axis(%q) = %d, %v; want %d", tt.name, got, err, tt.want)
		}
	}
}

func TestProjectionSkipsNonFinite(t *testing.T) {
	states := ring(4, 2)
	states = append(states, diffeq.State{math.NaN(), 0, 0, 0, 0, 0})
	xys := Projection(states, 0, 1)
	if len(xys) != 4 {
		t.Fatalf("expected 4 points, got %d", len(xys))
	}
	if xys[1].X > 1e-12 || math.Abs(xys[1].Y-2) > 1e-12 {
		t.Errorf("unexpected second point %+v", xys[1])
	}
}

func TestOrbitFigureSave(t *testing.T) {
	orbits := [][]diffeq.State{ring(64, 8), ring(64, 4)}
	p, err := OrbitFigure(orbits, "x", "y", Options{Title: "test", Units: "kpc"})
	if err != nil {
		t.Fatalf("figure failed: %v", err)
	}
	if p.X.Label.Text != "x [kpc]" {
		t.Errorf("unexpected x label %q", p.X.Label.Text)
	}

	for _, name := range []string{"orbit.png", "orbit.svg"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(p, path); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestOrbitFigureErrors(t *testing.T) {
	if _, err := OrbitFigure([][]diffeq.State{ring(8, 1)}, "x", "w", Options{}); !errors.Is(err, ErrBadAxis) {
		t.Errorf("expected ErrBadAxis, got %v", err)
	}
	failed := [][]diffeq.State{{{math.NaN(), math.NaN(), 0, 0, 0, 0}}}
	if _, err := OrbitFigure(failed, "x", "y", Options{}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}
