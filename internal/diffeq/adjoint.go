package diffeq

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Problem is everything needed to repeat a solve.
type Problem struct {
	Term    Term
	Solver  Solver
	T0, T1  float64
	Dt0     float64
	Y0      State
	Options Options
}

// Adjoint differentiates a solve with respect to its initial state only.
// Parameters reached through Args or closed over by the Term, such as
// potential masses and scale radii, are held fixed; differentiate through
// them by finite differences of whole solves.
type Adjoint interface {
	// Pullback returns ∂⟨cot, y(t1)⟩/∂y0.
	Pullback(ctx context.Context, p Problem, cot State) (State, error)
}

// Sensitivity returns ∂⟨cot, y(t1)⟩/∂y0 for the solve described by the
// arguments, using opts.Adjoint. The result has one component per state
// component; there is no gradient for opts.Args.
func Sensitivity(ctx context.Context, term Term, solver Solver, t0, t1, dt0 float64, y0, cot State, opts Options) (State, error) {
	if len(cot) != len(y0) {
		return nil, fmt.Errorf("diffeq: cotangent has %d components, state has %d", len(cot), len(y0))
	}
	opts = opts.withDefaults()
	return opts.Adjoint.Pullback(ctx, Problem{Term: term, Solver: solver, T0: t0, T1: t1, Dt0: dt0, Y0: y0, Options: opts}, cot)
}

// DirectAdjoint integrates the variational equations dΦ/dt = J Φ alongside
// the state and contracts Φ(t1) with the cotangent.
type DirectAdjoint struct{}

func (DirectAdjoint) Pullback(ctx context.Context, p Problem, cot State) (State, error) {
	n := len(p.Y0)
	y0 := make(State, n+n*n)
	copy(y0, p.Y0)
	for i := 0; i < n; i++ {
		y0[n+i*n+i] = 1
	}

	opts := inner(p.Options)
	sol, err := Solve(ctx, variational{term: p.Term, n: n}, p.Solver, p.T0, p.T1, p.Dt0, y0, opts)
	if err != nil {
		return nil, err
	}
	phi := mat.NewDense(n, n, sol.Last()[n:])
	out := mat.NewVecDense(n, nil)
	out.MulVec(phi.T(), mat.NewVecDense(n, cot.Clone()))
	return State(out.RawVector().Data), nil
}

type variational struct {
	term Term
	n    int
}

func (v variational) VectorField(t float64, y State, args any) (State, error) {
	n := v.n
	x := y[:n]
	f, err := v.term.VectorField(t, x, args)
	if err != nil {
		return nil, err
	}
	jac, err := Jacobian(v.term, t, x, args)
	if err != nil {
		return nil, err
	}
	out := make(State, n+n*n)
	copy(out, f)
	dphi := mat.NewDense(n, n, out[n:])
	dphi.Mul(jac, mat.NewDense(n, n, y[n:]))
	return out, nil
}

// CheckpointAdjoint solves forward once keeping the dense output, then
// integrates the adjoint equation dλ/dt = −Jᵀλ backward from λ(t1) = cot
// along the stored trajectory.
type CheckpointAdjoint struct{}

func (CheckpointAdjoint) Pullback(ctx context.Context, p Problem, cot State) (State, error) {
	opts := inner(p.Options)
	opts.SaveAt = SaveAt{T1: true, Dense: true}
	fwd, err := Solve(ctx, p.Term, p.Solver, p.T0, p.T1, p.Dt0, p.Y0, opts)
	if err != nil {
		return nil, err
	}

	back := inner(p.Options)
	adj := adjointTerm{term: p.Term, traj: fwd.Interpolation}
	sol, err := Solve(ctx, adj, p.Solver, p.T1, p.T0, p.Dt0, cot.Clone(), back)
	if err != nil {
		return nil, err
	}
	return sol.Last(), nil
}

type adjointTerm struct {
	term Term
	traj *DenseInterpolation
}

func (a adjointTerm) VectorField(t float64, lambda State, args any) (State, error) {
	y := a.traj.Evaluate(t)
	jac, err := Jacobian(a.term, t, y, args)
	if err != nil {
		return nil, err
	}
	n := len(lambda)
	out := mat.NewVecDense(n, nil)
	out.MulVec(jac.T(), mat.NewVecDense(n, lambda.Clone()))
	out.ScaleVec(-1, out)
	return State(out.RawVector().Data), nil
}

// inner strips the options that only make sense for the caller's own solve.
func inner(o Options) Options {
	o.SaveAt = SaveAt{T1: true}
	o.Event = nil
	o.SolverState = nil
	o.ControllerState = nil
	o.ProgressMeter = NoProgressMeter{}
	o.Throw = true
	return o
}

// Jacobian returns ∂f/∂y of term at (t, y), exactly when term implements
// Jacobianer and by central differences otherwise.
func Jacobian(term Term, t float64, y State, args any) (*mat.Dense, error) {
	if j, ok := term.(Jacobianer); ok {
		return j.Jacobian(t, y, args)
	}
	n := len(y)
	dst := mat.NewDense(n, n, nil)
	var ferr error
	fd.Jacobian(dst, func(out, x []float64) {
		v, err := term.VectorField(t, x, args)
		if err != nil {
			ferr = err
			return
		}
		copy(out, v)
	}, y, &fd.JacobianSettings{Formula: fd.Central})
	return dst, ferr
}
