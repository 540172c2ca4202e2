// Package experiment turns run files into potentials, initial conditions and
// integrators, runs them, and converts potentials back into run files.
package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/integrate"
	"github.com/san-kum/galdyn/internal/metrics"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

// Experiment is one orbit run. Setup fills the built fields from Config;
// they may be replaced before Run.
type Experiment struct {
	Config   *config.Config
	Registry *Registry
	Log      logrus.FieldLogger

	Potential  potential.Potential
	Field      *fields.HamiltonianField
	Integrator *integrate.Integrator
	Initial    *coords.PhaseSpacePosition
	T0, T1     units.Quantity
	// SaveTimes is nil when only the final state is kept.
	SaveTimes *units.Quantity
}

// Result holds the orbits of a run as raw values in the potential's unit
// system, one state series per batch element.
type Result struct {
	Orbit   *integrate.Orbit
	Units   units.System
	T0, T1  float64
	Times   []float64
	States  [][]diffeq.State
	Metrics []map[string]float64
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		Config:   cfg,
		Registry: NewRegistry(),
		Log:      logrus.StandardLogger(),
	}
}

func (e *Experiment) Setup() error {
	cfg := e.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := e.Registry.BuildPotential(cfg)
	if err != nil {
		return err
	}
	e.Potential = p
	e.Field = fields.NewHamiltonianField(p)
	e.Log.WithFields(logrus.Fields{
		"components": len(cfg.Potential),
		"operators":  len(cfg.Frame),
		"units":      p.Units().Name(),
	}).Debug("potential built")

	if e.Initial, err = BuildInitial(cfg); err != nil {
		return err
	}

	ic := cfg.Integration
	if e.T0, err = quantity(ic.T0); err != nil {
		return fmt.Errorf("t0: %w", err)
	}
	if e.T1, err = quantity(ic.T1); err != nil {
		return fmt.Errorf("t1: %w", err)
	}
	us := p.Units()
	t0, err := e.T0.Float(us.Time())
	if err != nil {
		return fmt.Errorf("t0: %w", err)
	}
	t1, err := e.T1.Float(us.Time())
	if err != nil {
		return fmt.Errorf("t1: %w", err)
	}
	e.SaveTimes = nil
	if ic.SaveN > 0 {
		ts := linspace(t0, t1, ic.SaveN)
		q := units.MustNew(ts, []int{len(ts)}, us.Time())
		e.SaveTimes = &q
	}

	e.Integrator, err = e.Registry.BuildIntegrator(ic, us)
	if err != nil {
		return err
	}
	e.Integrator.Log = e.Log
	return nil
}

// BuildIntegrator configures an Integrator from the integration section.
// Unset tolerances, step limits and throw fall back to integrate.Defaults.
// Solvers without an error estimate step at a fixed dt0.
func (r *Registry) BuildIntegrator(ic config.IntegrationConfig, us units.System) (*integrate.Integrator, error) {
	name := ic.Solver
	if name == "" {
		name = config.DefaultSolver
	}
	s, err := r.GetSolver(name)
	if err != nil {
		return nil, err
	}
	in := integrate.NewIntegrator()
	in.Solver = integrate.NewDiffEqSolver(s)
	in.Workers = ic.Workers

	if ic.Dt0 != nil {
		dt0, err := quantity(*ic.Dt0)
		if err != nil {
			return nil, fmt.Errorf("dt0: %w", err)
		}
		if in.Dt0, err = dt0.Float(us.Time()); err != nil {
			return nil, fmt.Errorf("dt0: %w", err)
		}
	}

	switch {
	case s.ErrorOrder() == 0:
		if in.Dt0 == 0 {
			return nil, fmt.Errorf("%w: solver %s needs dt0", config.ErrInvalid, name)
		}
		in.Solver.Controller = diffeq.ConstantStepSize{}
	case ic.RTol != 0 || ic.ATol != 0:
		c := diffeq.NewPIDController(ic.RTol, ic.ATol)
		def, ok := integrate.Defaults.StepSizeController.(*diffeq.PIDController)
		if ok && ic.RTol == 0 {
			c.RTol = def.RTol
		}
		if ok && ic.ATol == 0 {
			c.ATol = def.ATol
		}
		in.Solver.Controller = c
	}

	if ic.MaxSteps != nil {
		in.Options = append(in.Options, integrate.WithMaxSteps(*ic.MaxSteps))
	}
	if ic.Throw != nil {
		in.Options = append(in.Options, integrate.WithThrow(*ic.Throw))
	}
	return in, nil
}

func linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{b}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	out[n-1] = b
	return out
}

// Run integrates every initial condition and evaluates the default metrics
// on each orbit.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.Integrator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	var opts []integrate.RunOption
	if e.SaveTimes != nil {
		opts = append(opts, integrate.SaveTimes(*e.SaveTimes))
	}
	if e.Config.Integration.Dense {
		opts = append(opts, integrate.Interpolated())
	}
	orbit, err := e.Integrator.Run(ctx, e.Field, e.Initial, e.T0, e.T1, opts...)
	if err != nil {
		return nil, err
	}

	us := e.Field.Units()
	res := &Result{Orbit: orbit, Units: us}
	// Both were converted once already in Setup.
	res.T0, _ = e.T0.Float(us.Time())
	res.T1, _ = e.T1.Float(us.Time())
	if e.SaveTimes != nil {
		res.Times = e.SaveTimes.Value
	} else {
		res.Times = []float64{res.T1}
	}
	nT := len(res.Times)
	n := e.Initial.Len()
	res.States = make([][]diffeq.State, n)
	res.Metrics = make([]map[string]float64, n)
	for i := 0; i < n; i++ {
		states := make([]diffeq.State, nT)
		for j := range states {
			k := (i*nT + j) * 3
			y := make(diffeq.State, 6)
			copy(y[:3], orbit.Q.Value[k:k+3])
			copy(y[3:], orbit.P.Value[k:k+3])
			states[j] = y
		}
		res.States[i] = states
		res.Metrics[i] = metrics.Evaluate(metrics.Defaults(e.Field), res.Times, states)
	}
	e.Log.WithFields(logrus.Fields{
		"orbits": n,
		"saved":  nT,
		"failed": orbit.Failed(),
	}).Info("run complete")
	return res, nil
}
