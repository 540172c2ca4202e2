package diffeq

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0

	// Hairer's continuous extension.
	d1 = -12715105075.0 / 11282082432.0
	d3 = 87487479700.0 / 32700410799.0
	d4 = -10690763975.0 / 1880347072.0
	d5 = 701980252875.0 / 199316789632.0
	d6 = -1453857185.0 / 822651844.0
	d7 = 69997945.0 / 29380423.0
)

// Dopri5 is the explicit Dormand-Prince 5(4) method with FSAL and a
// fourth-order continuous extension.
type Dopri5 struct{}

func (Dopri5) Name() string    { return "dopri5" }
func (Dopri5) Order() int      { return 5 }
func (Dopri5) ErrorOrder() int { return 5 }

func (Dopri5) Init(term Term, t0 float64, y0 State, args any) (SolverState, error) {
	return initF(term, t0, y0, args)
}

func (Dopri5) Step(term Term, t0, t1 float64, x State, args any, st SolverState) (Step, error) {
	n := len(x)
	dt := t1 - t0
	k1 := st.F

	x2 := make(State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2, err := term.VectorField(t0+a2*dt, x2, args)
	if err != nil {
		return Step{}, err
	}

	x3 := make(State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3, err := term.VectorField(t0+a3*dt, x3, args)
	if err != nil {
		return Step{}, err
	}

	x4 := make(State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, err := term.VectorField(t0+a4*dt, x4, args)
	if err != nil {
		return Step{}, err
	}

	x5 := make(State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, err := term.VectorField(t0+a5*dt, x5, args)
	if err != nil {
		return Step{}, err
	}

	x6 := make(State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, err := term.VectorField(t1, x6, args)
	if err != nil {
		return Step{}, err
	}

	xNew := make(State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7, err := term.VectorField(t1, xNew, args)
	if err != nil {
		return Step{}, err
	}

	errEst := make(State, n)
	dense := &dopri5Dense{t0: t0, h: dt}
	for j := range dense.rc {
		dense.rc[j] = make(State, n)
	}
	for i := 0; i < n; i++ {
		errEst[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])

		dense.rc[0][i] = x[i]
		dense.rc[1][i] = xNew[i] - x[i]
		dense.rc[2][i] = dt*k1[i] - dense.rc[1][i]
		dense.rc[3][i] = dense.rc[1][i] - dt*k7[i] - dense.rc[2][i]
		dense.rc[4][i] = dt * (d1*k1[i] + d3*k3[i] + d4*k4[i] + d5*k5[i] + d6*k6[i] + d7*k7[i])
	}

	return Step{Y: xNew, Err: errEst, Dense: dense, State: SolverState{F: k7}}, nil
}

type dopri5Dense struct {
	t0, h float64
	rc    [5]State
}

func (d *dopri5Dense) Eval(t float64) State {
	s := (t - d.t0) / d.h
	s1 := 1 - s
	out := make(State, len(d.rc[0]))
	for i := range out {
		out[i] = d.rc[0][i] + s*(d.rc[1][i]+s1*(d.rc[2][i]+s*(d.rc[3][i]+s1*d.rc[4][i])))
	}
	return out
}
