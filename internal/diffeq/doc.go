// Package diffeq solves ordinary differential equations dy/dt = f(t, y)
// between two times with an adjustable step size.
//
// The pieces mirror a classic solver library:
//
//   - [Term]: the vector field
//   - [Solver]: a single-step method ([Dopri5], [RK4], [Leapfrog])
//   - [StepSizeController]: accepts or rejects steps and proposes the next
//     step size ([PIDController], [ConstantStepSize])
//   - [SaveAt]: which times end up in the [Solution]
//   - [Adjoint]: how [Sensitivity] differentiates a solve with respect to
//     its initial state
//
// The defaults used when an option is left unset are published as
// [DefaultMaxSteps], [DefaultThrow], [DefaultStepSizeController],
// [DefaultAdjoint], [DefaultSaveAt], [DefaultProgressMeter] and
// [DefaultEvent], so that wrappers can copy them instead of guessing.
//
// # Example
//
//	term := diffeq.TermFunc(func(t float64, y diffeq.State, _ any) (diffeq.State, error) {
//		return diffeq.State{-y[0]}, nil
//	})
//	opts := diffeq.DefaultOptions()
//	opts.SaveAt = diffeq.SaveAt{Ts: []float64{0, 1, 2, 3}}
//	sol, err := diffeq.Solve(ctx, term, diffeq.Dopri5{}, 0, 3, 0.1, diffeq.State{1}, opts)
//
// Solve runs synchronously. The context is checked once per step.
package diffeq
