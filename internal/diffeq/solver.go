package diffeq

// Solver advances a state across one step.
type Solver interface {
	Name() string
	Order() int
	// ErrorOrder is the order of the embedded error estimate, or 0 when the
	// solver has none and can only run with ConstantStepSize.
	ErrorOrder() int
	Init(term Term, t0 float64, y0 State, args any) (SolverState, error)
	Step(term Term, t0, t1 float64, y0 State, args any, st SolverState) (Step, error)
}

// SolverState is carried between steps. F is the vector field at the start
// of the next step; every solver here reuses it as its first stage.
type SolverState struct {
	F State
}

func (s SolverState) Clone() SolverState {
	return SolverState{F: s.F.Clone()}
}

// Step is the outcome of one attempted step.
type Step struct {
	Y     State
	Err   State
	Dense DenseStep
	State SolverState
}

// DenseStep evaluates the continuous extension of one step.
type DenseStep interface {
	Eval(t float64) State
}

func initF(term Term, t0 float64, y0 State, args any) (SolverState, error) {
	f, err := term.VectorField(t0, y0, args)
	if err != nil {
		return SolverState{}, err
	}
	return SolverState{F: f}, nil
}

// hermite is the cubic Hermite extension through both end points and slopes.
type hermite struct {
	t0, h  float64
	y0, y1 State
	f0, f1 State
}

func (d *hermite) Eval(t float64) State {
	s := (t - d.t0) / d.h
	s2, s3 := s*s, s*s*s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	out := make(State, len(d.y0))
	for i := range out {
		out[i] = h00*d.y0[i] + h10*d.h*d.f0[i] + h01*d.y1[i] + h11*d.h*d.f1[i]
	}
	return out
}

// SolverByName returns one of the built-in solvers.
func SolverByName(name string) (Solver, bool) {
	switch name {
	case "dopri5", "":
		return Dopri5{}, true
	case "rk4":
		return RK4{}, true
	case "leapfrog":
		return Leapfrog{}, true
	}
	return nil, false
}
