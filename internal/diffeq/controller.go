package diffeq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ControllerState is the step-size controller's memory between steps. Dt is
// the size of the next step to attempt; the error fields hold the inverse
// scaled error norms of the last two accepted steps.
type ControllerState struct {
	Dt          float64
	PrevInvErr  float64
	PrevPrevErr float64
}

// StepSizeController chooses the first step and then accepts or rejects
// each attempted step.
type StepSizeController interface {
	// Init returns the starting state. A dt0 of 0 asks the controller to
	// choose the first step; f0 is the vector field at (t0, y0).
	Init(term Term, solver Solver, t0, t1 float64, y0 State, dt0 float64, args any, f0 State) (ControllerState, error)
	// Adapt judges a step of size dt from y0 to y1 with error estimate yErr.
	Adapt(solver Solver, dt float64, y0, y1, yErr State, st ControllerState) (bool, ControllerState, error)
}

// ConstantStepSize takes every step at dt0 and never rejects.
type ConstantStepSize struct{}

func (ConstantStepSize) Init(_ Term, _ Solver, t0, t1 float64, _ State, dt0 float64, _ any, _ State) (ControllerState, error) {
	if dt0 == 0 {
		return ControllerState{}, fmt.Errorf("%w: constant step size needs dt0", ErrBadStep)
	}
	return ControllerState{Dt: math.Copysign(dt0, t1-t0), PrevInvErr: 1, PrevPrevErr: 1}, nil
}

func (ConstantStepSize) Adapt(_ Solver, _ float64, _, _, _ State, st ControllerState) (bool, ControllerState, error) {
	return true, st, nil
}

// PIDController is an adaptive controller on the RMS of the scaled error
// estimate. With the default coefficients (I = 1) it reduces to the
// standard integral controller.
type PIDController struct {
	RTol, ATol             float64
	PCoeff, ICoeff, DCoeff float64
	DtMin, DtMax           float64
	Safety                 float64
	FactorMin, FactorMax   float64
}

func NewPIDController(rtol, atol float64) *PIDController {
	return &PIDController{
		RTol:      rtol,
		ATol:      atol,
		ICoeff:    1,
		Safety:    0.9,
		FactorMin: 0.2,
		FactorMax: 10.0,
	}
}

func (c *PIDController) Init(term Term, solver Solver, t0, t1 float64, y0 State, dt0 float64, args any, f0 State) (ControllerState, error) {
	st := ControllerState{PrevInvErr: 1, PrevPrevErr: 1}
	dir := math.Copysign(1, t1-t0)
	if dt0 != 0 {
		st.Dt = math.Copysign(dt0, dir)
		return st, nil
	}
	if solver.ErrorOrder() == 0 {
		return st, fmt.Errorf("%w: %s", ErrNoErrorEstimate, solver.Name())
	}
	h, err := c.initialStep(term, solver, t0, y0, dir, args, f0)
	if err != nil {
		return st, err
	}
	st.Dt = c.clamp(h * dir)
	return st, nil
}

// initialStep is Hairer's starting step heuristic.
func (c *PIDController) initialStep(term Term, solver Solver, t0 float64, y0 State, dir float64, args any, f0 State) (float64, error) {
	n := len(y0)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = c.ATol + c.RTol*math.Abs(y0[i])
	}
	d0 := rms(y0, scale)
	d1 := rms(f0, scale)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}

	y1 := make(State, n)
	for i := range y1 {
		y1[i] = y0[i] + dir*h0*f0[i]
	}
	f1, err := term.VectorField(t0+dir*h0, y1, args)
	if err != nil {
		return 0, err
	}
	diff := make([]float64, n)
	floats.SubTo(diff, f1, f0)
	d2 := rms(diff, scale) / h0

	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 1/float64(solver.ErrorOrder()))
	}
	return math.Min(100*h0, h1), nil
}

func (c *PIDController) Adapt(solver Solver, dt float64, y0, y1, yErr State, st ControllerState) (bool, ControllerState, error) {
	k := float64(solver.ErrorOrder())
	if k == 0 || yErr == nil {
		return false, st, fmt.Errorf("%w: %s", ErrNoErrorEstimate, solver.Name())
	}

	scale := make([]float64, len(y0))
	for i := range scale {
		scale[i] = c.ATol + c.RTol*math.Max(math.Abs(y0[i]), math.Abs(y1[i]))
	}
	errNorm := rms(yErr, scale)
	if math.IsNaN(errNorm) {
		errNorm = math.Inf(1)
	}

	next := st
	if errNorm > 1 {
		factor := math.Max(c.FactorMin, c.Safety*math.Pow(errNorm, -1/(k-1)))
		next.Dt = c.clamp(dt * factor)
		return false, next, nil
	}

	factor := c.FactorMax
	if errNorm > 0 {
		inv := 1 / errNorm
		beta1 := (c.PCoeff + c.ICoeff + c.DCoeff) / k
		beta2 := -(c.PCoeff + 2*c.DCoeff) / k
		beta3 := c.DCoeff / k
		factor = c.Safety * math.Pow(inv, beta1) * math.Pow(st.PrevInvErr, beta2) * math.Pow(st.PrevPrevErr, beta3)
		factor = math.Min(c.FactorMax, math.Max(c.FactorMin, factor))
		next.PrevPrevErr = st.PrevInvErr
		next.PrevInvErr = inv
	}
	next.Dt = c.clamp(dt * factor)
	return true, next, nil
}

func (c *PIDController) clamp(dt float64) float64 {
	a := math.Abs(dt)
	if c.DtMax > 0 && a > c.DtMax {
		a = c.DtMax
	}
	return math.Copysign(a, dt)
}

// belowMin reports whether dt is below the controller's configured minimum.
func (c *PIDController) belowMin(dt float64) bool {
	return c.DtMin > 0 && math.Abs(dt) < c.DtMin
}

func rms(v, scale []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := make([]float64, len(v))
	floats.DivTo(s, v, scale)
	return floats.Norm(s, 2) / math.Sqrt(float64(len(v)))
}
