// Package integrate runs orbit integrations: a thin forwarding layer over
// diffeq, an Integrator that integrates batches of phase-space positions
// through a field, and an Interpolant that evaluates dense orbits with units.
package integrate

import (
	"context"

	"github.com/san-kum/galdyn/internal/diffeq"
)

// DefaultSet holds the solver defaults used when an option is not given.
type DefaultSet struct {
	StepSizeController diffeq.StepSizeController
	Adjoint            diffeq.Adjoint
	SaveAt             diffeq.SaveAt
	ProgressMeter      diffeq.ProgressMeter
	Event              *diffeq.Event
	MaxSteps           int
	Throw              bool
}

// Defaults is copied from the diffeq package once, at start-up.
var Defaults DefaultSet

func init() {
	Defaults = DefaultSet{
		StepSizeController: diffeq.DefaultStepSizeController(),
		Adjoint:            diffeq.DefaultAdjoint(),
		SaveAt:             diffeq.DefaultSaveAt(),
		ProgressMeter:      diffeq.DefaultProgressMeter(),
		Event:              diffeq.DefaultEvent,
		MaxSteps:           diffeq.DefaultMaxSteps,
		Throw:              diffeq.DefaultThrow,
	}
}

// DiffEqSolver pairs a solver with a step-size controller and an adjoint and
// forwards every call to diffeq.
type DiffEqSolver struct {
	Solver     diffeq.Solver
	Controller diffeq.StepSizeController
	Adjoint    diffeq.Adjoint
}

// NewDiffEqSolver uses the default controller and adjoint.
func NewDiffEqSolver(s diffeq.Solver) *DiffEqSolver {
	return &DiffEqSolver{
		Solver:     s,
		Controller: Defaults.StepSizeController,
		Adjoint:    Defaults.Adjoint,
	}
}

// Option overrides one per-call solve option.
type Option func(*diffeq.Options)

func WithArgs(args any) Option { return func(o *diffeq.Options) { o.Args = args } }

func WithSaveAt(s diffeq.SaveAt) Option { return func(o *diffeq.Options) { o.SaveAt = s } }

func WithEvent(e *diffeq.Event) Option { return func(o *diffeq.Options) { o.Event = e } }

// WithMaxSteps sets the step limit; 0 removes it.
func WithMaxSteps(n int) Option { return func(o *diffeq.Options) { o.MaxSteps = n } }

func WithThrow(throw bool) Option { return func(o *diffeq.Options) { o.Throw = throw } }

func WithProgressMeter(pm diffeq.ProgressMeter) Option {
	return func(o *diffeq.Options) { o.ProgressMeter = pm }
}

// WithWarmStart resumes from the internal state of an earlier solution.
func WithWarmStart(sol *diffeq.Solution) Option {
	return func(o *diffeq.Options) {
		o.SolverState = sol.SolverState
		o.ControllerState = sol.ControllerState
	}
}

func (s *DiffEqSolver) options(opts []Option) diffeq.Options {
	o := diffeq.Options{
		SaveAt:        Defaults.SaveAt,
		Controller:    s.Controller,
		Adjoint:       s.Adjoint,
		Event:         Defaults.Event,
		MaxSteps:      Defaults.MaxSteps,
		Throw:         Defaults.Throw,
		ProgressMeter: Defaults.ProgressMeter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Solve integrates term from t0 to t1. dt0 of 0 lets the controller choose
// the first step.
func (s *DiffEqSolver) Solve(ctx context.Context, term diffeq.Term, t0, t1, dt0 float64, y0 diffeq.State, opts ...Option) (*diffeq.Solution, error) {
	return diffeq.Solve(ctx, term, s.Solver, t0, t1, dt0, y0, s.options(opts))
}

// Sensitivity returns ∂⟨cot, y(t1)⟩/∂y0 using the solver's adjoint.
func (s *DiffEqSolver) Sensitivity(ctx context.Context, term diffeq.Term, t0, t1, dt0 float64, y0, cot diffeq.State, opts ...Option) (diffeq.State, error) {
	return diffeq.Sensitivity(ctx, term, s.Solver, t0, t1, dt0, y0, cot, s.options(opts))
}
