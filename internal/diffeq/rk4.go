package diffeq

// RK4 is the classical fourth-order Runge-Kutta method. It has no error
// estimate, so it runs with ConstantStepSize only.
type RK4 struct{}

func (RK4) Name() string    { return "rk4" }
func (RK4) Order() int      { return 4 }
func (RK4) ErrorOrder() int { return 0 }

func (RK4) Init(term Term, t0 float64, y0 State, args any) (SolverState, error) {
	return initF(term, t0, y0, args)
}

func (RK4) Step(term Term, t0, t1 float64, x State, args any, st SolverState) (Step, error) {
	n := len(x)
	dt := t1 - t0
	k1 := st.F
	scratch := make(State, n)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := term.VectorField(t0+dt*0.5, scratch, args)
	if err != nil {
		return Step{}, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := term.VectorField(t0+dt*0.5, scratch, args)
	if err != nil {
		return Step{}, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := term.VectorField(t1, scratch, args)
	if err != nil {
		return Step{}, err
	}

	result := make(State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	f1, err := term.VectorField(t1, result, args)
	if err != nil {
		return Step{}, err
	}
	dense := &hermite{t0: t0, h: dt, y0: x, y1: result, f0: k1, f1: f1}
	return Step{Y: result, Dense: dense, State: SolverState{F: f1}}, nil
}
