package integrate

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/shape"
	"github.com/san-kum/galdyn/internal/units"
)

// Integrator integrates batches of phase-space positions through a field.
// Each batch element is an independent solve; up to Workers of them run at
// once.
type Integrator struct {
	Solver *DiffEqSolver
	// Dt0 is the first step in the field's time unit; 0 picks it
	// automatically.
	Dt0     float64
	Workers int
	// Options are applied to every solve, before the save times.
	Options []Option
	Log     logrus.FieldLogger
}

// NewIntegrator uses Dopri5 with relative and absolute tolerances of 1e-7.
func NewIntegrator() *Integrator {
	return &Integrator{
		Solver: &DiffEqSolver{
			Solver:     diffeq.Dopri5{},
			Controller: diffeq.NewPIDController(1e-7, 1e-7),
			Adjoint:    Defaults.Adjoint,
		},
		Log: logrus.StandardLogger(),
	}
}

// Orbit is the output of Run. Q and P have shape (*batch, T, 3) when a 1-D
// list of save times was given and (*batch, 3) otherwise. States a failed
// solve never reached are NaN. Without save times, T is the time each orbit
// ended at: t1, or the event time for orbits an Event stopped.
type Orbit struct {
	*coords.PhaseSpacePosition
	Interpolant *Interpolant
	Results     []diffeq.Result
	Stats       []diffeq.Stats
}

// Failed reports whether any batch element stopped early for a reason other
// than an Event.
func (o *Orbit) Failed() bool {
	for _, r := range o.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

type runConfig struct {
	saveAt *units.Quantity
	dense  bool
}

// RunOption configures Run.
type RunOption func(*runConfig)

// SaveTimes records the orbit at ts, a scalar or 1-D time quantity. A scalar
// drops the time axis from the output.
func SaveTimes(ts units.Quantity) RunOption {
	return func(c *runConfig) { c.saveAt = &ts }
}

// Interpolated keeps the dense output and attaches an Interpolant.
func Interpolated() RunOption {
	return func(c *runConfig) { c.dense = true }
}

// Run integrates w0 from t0 to t1. Any time carried by w0 is ignored in
// favor of t0.
func (in *Integrator) Run(ctx context.Context, f fields.Field, w0 *coords.PhaseSpacePosition, t0, t1 units.Quantity, opts ...RunOption) (*Orbit, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	log := in.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	us := f.Units()
	t0r, err := t0.Float(us.Time())
	if err != nil {
		return nil, fmt.Errorf("integrate: t0: %w", err)
	}
	t1r, err := t1.Float(us.Time())
	if err != nil {
		return nil, fmt.Errorf("integrate: t1: %w", err)
	}
	q, p, err := w0.ValuesIn(us)
	if err != nil {
		return nil, fmt.Errorf("integrate: initial conditions: %w", err)
	}

	saveAt := diffeq.SaveAt{T1: true, Dense: cfg.dense}
	var tq units.Quantity
	if cfg.saveAt != nil {
		if len(cfg.saveAt.Shape) > 1 {
			return nil, fmt.Errorf("%w: save times must be scalar or 1-D, got %v", coords.ErrShape, cfg.saveAt.Shape)
		}
		ts, err := cfg.saveAt.ValueIn(us.Time())
		if err != nil {
			return nil, fmt.Errorf("integrate: save times: %w", err)
		}
		saveAt = diffeq.SaveAt{Ts: ts, Dense: cfg.dense}
		tq = *cfg.saveAt
	} else {
		tq = units.Scalar(t1r, us.Time())
	}

	n := w0.Len()
	sols := make([]*diffeq.Solution, n)
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			y0 := diffeq.State{q[3*i], q[3*i+1], q[3*i+2], p[3*i], p[3*i+1], p[3*i+2]}
			sopts := append(append([]Option(nil), in.Options...), WithSaveAt(saveAt))
			sol, err := in.Solver.Solve(gctx, f, t0r, t1r, in.Dt0, y0, sopts...)
			if err != nil {
				return fmt.Errorf("integrate: orbit %d: %w", i, err)
			}
			entry := log.WithFields(logrus.Fields{
				"orbit":    i,
				"steps":    sol.Stats.NumSteps,
				"rejected": sol.Stats.NumRejected,
				"result":   sol.Result.String(),
			})
			switch {
			case sol.Result.Failed():
				entry.Warn("orbit stopped early")
			case sol.Result == diffeq.EventOccurred:
				entry.WithField("t", sol.Ts[len(sol.Ts)-1]).Debug("orbit stopped on event")
			default:
				entry.Debug("orbit integrated")
			}
			sols[i] = sol
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nT := 1
	if cfg.saveAt != nil {
		nT = len(saveAt.Ts)
	}
	qs := make([]float64, n*nT*3)
	ps := make([]float64, n*nT*3)
	orbit := &Orbit{Results: make([]diffeq.Result, n), Stats: make([]diffeq.Stats, n)}
	ends := make([]float64, n)
	stopped := false
	for i, sol := range sols {
		orbit.Results[i] = sol.Result
		orbit.Stats[i] = sol.Stats
		ends[i] = t1r
		if cfg.saveAt == nil && sol.Result == diffeq.EventOccurred {
			ends[i] = sol.Ts[len(sol.Ts)-1]
			stopped = true
		}
		for j := 0; j < nT; j++ {
			k := (i*nT + j) * 3
			// Without save times the only state is the final one, which is
			// not at t1 when the solve failed.
			if j >= len(sol.Ys) || (cfg.saveAt == nil && sol.Result.Failed()) {
				fillNaN(qs[k:k+3], ps[k:k+3])
				continue
			}
			copy(qs[k:k+3], sol.Ys[j][:3])
			copy(ps[k:k+3], sol.Ys[j][3:])
		}
	}

	outShape := shape.Concat(w0.BatchShape(), 3)
	if cfg.saveAt != nil && len(cfg.saveAt.Shape) == 1 {
		outShape = shape.Concat(w0.BatchShape(), nT, 3)
	}
	if stopped {
		if tq, err = units.New(ends, w0.BatchShape(), us.Time()); err != nil {
			return nil, err
		}
	}
	w, err := wrap(us, qs, ps, outShape, tq)
	if err != nil {
		return nil, err
	}
	orbit.PhaseSpacePosition = w

	if cfg.dense {
		ip := &Interpolant{batch: w0.BatchShape(), units: us, interps: make([]*diffeq.DenseInterpolation, n)}
		for i, sol := range sols {
			ip.interps[i] = sol.Interpolation
		}
		orbit.Interpolant = ip
	}
	return orbit, nil
}

func fillNaN(vs ...[]float64) {
	for _, v := range vs {
		for i := range v {
			v[i] = math.NaN()
		}
	}
}

func wrap(us units.System, q, p []float64, s []int, t units.Quantity) (*coords.PhaseSpacePosition, error) {
	qq, err := units.New(q, s, us.Length())
	if err != nil {
		return nil, err
	}
	pq, err := units.New(p, append([]int(nil), s...), us.MustGet("speed"))
	if err != nil {
		return nil, err
	}
	return coords.NewPhaseSpacePosition(qq, pq, &t)
}
