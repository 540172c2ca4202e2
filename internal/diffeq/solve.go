package diffeq

import (
	"context"
	"fmt"
	"math"
)

// Published defaults for an unset option.
const (
	DefaultMaxSteps = 4096
	DefaultThrow    = true
)

// DefaultEvent is no event.
var DefaultEvent *Event

// DefaultStepSizeController returns the controller used when none is given.
func DefaultStepSizeController() StepSizeController { return NewPIDController(1e-7, 1e-7) }

// DefaultAdjoint returns the adjoint used when none is given.
func DefaultAdjoint() Adjoint { return CheckpointAdjoint{} }

// DefaultSaveAt saves the final state only.
func DefaultSaveAt() SaveAt { return SaveAt{T1: true} }

// DefaultProgressMeter reports nothing.
func DefaultProgressMeter() ProgressMeter { return NoProgressMeter{} }

// Options configures Solve. A MaxSteps of 0 means no limit; nil interface
// fields fall back to their defaults.
type Options struct {
	Args            any
	SaveAt          SaveAt
	Controller      StepSizeController
	Adjoint         Adjoint
	Event           *Event
	MaxSteps        int
	Throw           bool
	ProgressMeter   ProgressMeter
	SolverState     *SolverState
	ControllerState *ControllerState
}

// DefaultOptions returns Options filled with the published defaults.
func DefaultOptions() Options {
	return Options{
		SaveAt:        DefaultSaveAt(),
		Controller:    DefaultStepSizeController(),
		Adjoint:       DefaultAdjoint(),
		Event:         DefaultEvent,
		MaxSteps:      DefaultMaxSteps,
		Throw:         DefaultThrow,
		ProgressMeter: DefaultProgressMeter(),
	}
}

func (o Options) withDefaults() Options {
	if o.Controller == nil {
		o.Controller = DefaultStepSizeController()
	}
	if o.Adjoint == nil {
		o.Adjoint = DefaultAdjoint()
	}
	if o.ProgressMeter == nil {
		o.ProgressMeter = DefaultProgressMeter()
	}
	return o
}

// Solution is the output of Solve. Ys[i] is the state at Ts[i].
// Interpolation is set only when SaveAt.Dense was requested. SolverState and
// ControllerState can be passed to a later solve starting at the final time
// to continue where this one stopped.
type Solution struct {
	T0, T1          float64
	Ts              []float64
	Ys              []State
	Result          Result
	Stats           Stats
	Interpolation   *DenseInterpolation
	SolverState     *SolverState
	ControllerState *ControllerState
}

// Last returns the last saved state, or nil.
func (s *Solution) Last() State {
	if len(s.Ys) == 0 {
		return nil
	}
	return s.Ys[len(s.Ys)-1]
}

func (s *Solution) save(t float64, y State) {
	s.Ts = append(s.Ts, t)
	s.Ys = append(s.Ys, y.Clone())
}

// Solve integrates term from t0 to t1 starting at y0. t1 may be before t0.
// dt0 is the first step size, or 0 to let the controller pick one; only its
// magnitude is used.
//
// When the solve stops early because of max steps, step-size underflow or a
// non-finite state, the partial solution is returned with Result set. If
// opts.Throw is true the error is also returned as an *IntegrationError.
// A canceled context always returns an error.
func Solve(ctx context.Context, term Term, solver Solver, t0, t1, dt0 float64, y0 State, opts Options) (*Solution, error) {
	opts = opts.withDefaults()
	if err := opts.SaveAt.validate(t0, t1); err != nil {
		return nil, err
	}
	dir := math.Copysign(1, t1-t0)
	ct := &countingTerm{Term: term}

	var st SolverState
	if opts.SolverState != nil {
		st = opts.SolverState.Clone()
	} else {
		var err error
		if st, err = solver.Init(ct, t0, y0, opts.Args); err != nil {
			return nil, fmt.Errorf("diffeq: init: %w", err)
		}
	}
	var cs ControllerState
	if opts.ControllerState != nil {
		cs = *opts.ControllerState
		if dir*cs.Dt <= 0 {
			cs.Dt = -cs.Dt
		}
	} else {
		var err error
		cs, err = opts.Controller.Init(ct, solver, t0, t1, y0, math.Abs(dt0), opts.Args, st.F)
		if err != nil {
			return nil, fmt.Errorf("diffeq: init: %w", err)
		}
	}

	sol := &Solution{T0: t0, T1: t1}
	if opts.SaveAt.Dense {
		sol.Interpolation = &DenseInterpolation{T0: t0, T1: t0}
	}
	y := y0.Clone()
	t := t0
	ts := opts.SaveAt.Ts
	if opts.SaveAt.T0 || opts.SaveAt.Steps {
		sol.save(t, y)
		// t0 is recorded once even when Ts repeats it.
		for len(ts) > 0 && ts[0] == t0 {
			ts = ts[1:]
		}
	}
	for len(ts) > 0 && ts[0] == t0 {
		sol.save(t0, y)
		ts = ts[1:]
	}

	pm := opts.ProgressMeter
	pm.Start()
	defer pm.Close()

	floor, hasFloor := opts.Controller.(interface{ belowMin(float64) bool })
	var stop error
	for dir*(t1-t) > 0 {
		if err := ctx.Err(); err != nil {
			sol.Result = Canceled
			stop = err
			break
		}
		if opts.MaxSteps > 0 && sol.Stats.NumSteps >= opts.MaxSteps {
			sol.Result = MaxStepsReached
			break
		}

		dt := cs.Dt
		tNext := t + dt
		if dir*(tNext-t1) >= 0 {
			tNext = t1
			dt = t1 - t
		}
		if tNext == t || (hasFloor && tNext != t1 && floor.belowMin(dt)) {
			sol.Result = StepSizeTooSmall
			break
		}

		step, err := solver.Step(ct, t, tNext, y, opts.Args, st)
		if err != nil {
			return sol, &IntegrationError{Step: sol.Stats.NumSteps, Time: t, Wrapped: err}
		}
		sol.Stats.NumSteps++

		accept, next, err := opts.Controller.Adapt(solver, dt, y, step.Y, step.Err, cs)
		if err != nil {
			return sol, &IntegrationError{Step: sol.Stats.NumSteps, Time: t, Wrapped: err}
		}
		cs = next
		if !accept {
			sol.Stats.NumRejected++
			continue
		}
		if !step.Y.IsValid() {
			sol.Result = NonFinite
			break
		}
		sol.Stats.NumAccepted++

		for len(ts) > 0 && dir*(ts[0]-tNext) <= 0 {
			if ts[0] == tNext {
				sol.save(ts[0], step.Y)
			} else {
				sol.save(ts[0], step.Dense.Eval(ts[0]))
			}
			ts = ts[1:]
		}
		if sol.Interpolation != nil {
			sol.Interpolation.add(tNext, step.Dense)
		}

		t, y, st = tNext, step.Y, step.State
		if opts.SaveAt.Steps {
			sol.save(t, y)
		}
		pm.Update((t - t0) / (t1 - t0))

		if opts.Event != nil && opts.Event.Cond(t, y, opts.Args) {
			sol.Result = EventOccurred
			break
		}
	}

	if opts.SaveAt.T1 && !(opts.SaveAt.Steps && len(sol.Ts) > 0 && sol.Ts[len(sol.Ts)-1] == t) {
		sol.save(t, y)
	}
	sol.Stats.NumEvals = ct.evals
	sol.SolverState = &st
	sol.ControllerState = &cs

	if stop != nil {
		return sol, &IntegrationError{Step: sol.Stats.NumSteps, Time: t, Result: sol.Result, Wrapped: stop}
	}
	if sol.Result.Failed() && opts.Throw {
		return sol, &IntegrationError{Step: sol.Stats.NumSteps, Time: t, Result: sol.Result, Wrapped: sol.Result.err()}
	}
	return sol, nil
}
