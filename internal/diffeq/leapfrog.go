package diffeq

// Leapfrog is the symplectic kick-drift-kick method for states laid out as
// [q..., p...] whose position derivative depends only on p and whose
// momentum derivative depends only on q. It has no error estimate.
type Leapfrog struct{}

func (Leapfrog) Name() string    { return "leapfrog" }
func (Leapfrog) Order() int      { return 2 }
func (Leapfrog) ErrorOrder() int { return 0 }

func (Leapfrog) Init(term Term, t0 float64, y0 State, args any) (SolverState, error) {
	return initF(term, t0, y0, args)
}

func (Leapfrog) Step(term Term, t0, t1 float64, x State, args any, st SolverState) (Step, error) {
	n := len(x)
	half := n / 2
	dt := t1 - t0
	halfDt := dt * 0.5
	dx := st.F

	scratch := make(State, n)
	copy(scratch, x)
	for i := 0; i < half; i++ {
		scratch[half+i] = x[half+i] + dx[half+i]*halfDt
	}

	drift, err := term.VectorField(t0+halfDt, scratch, args)
	if err != nil {
		return Step{}, err
	}
	result := make(State, n)
	for i := 0; i < half; i++ {
		result[i] = x[i] + drift[i]*dt
		scratch[i] = result[i]
	}

	dxNew, err := term.VectorField(t1, scratch, args)
	if err != nil {
		return Step{}, err
	}
	for i := 0; i < half; i++ {
		result[half+i] = scratch[half+i] + dxNew[half+i]*halfDt
	}

	f1, err := term.VectorField(t1, result, args)
	if err != nil {
		return Step{}, err
	}
	dense := &hermite{t0: t0, h: dt, y0: x, y1: result, f0: dx, f1: f1}
	return Step{Y: result, Dense: dense, State: SolverState{F: f1}}, nil
}
