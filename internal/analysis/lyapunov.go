package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/galdyn/internal/diffeq"
)

// LyapunovConfig tunes LyapunovExponent. Zero values pick the defaults noted
// on each field.
type LyapunovConfig struct {
	// Interval between renormalizations; defaults to a hundredth of the
	// integration time.
	Interval float64
	// D0 is the initial separation along the first state component;
	// defaults to 1e-8.
	D0 float64
	// Dt0 is the first step of every segment; 0 picks it automatically.
	Dt0     float64
	Options diffeq.Options
}

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A neighbouring trajectory is integrated
// alongside the reference one and pulled back to separation D0 after every
// interval; the exponent is the mean logarithmic growth per unit time.
func LyapunovExponent(ctx context.Context, term diffeq.Term, solver diffeq.Solver, y0 diffeq.State, t0, t1 float64, cfg LyapunovConfig) (float64, error) {
	if len(y0) == 0 {
		return 0, fmt.Errorf("%w: empty state", ErrBadInterval)
	}
	if !(t1 > t0) {
		return 0, fmt.Errorf("%w: t1 %g must be after t0 %g", ErrBadInterval, t1, t0)
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = (t1 - t0) / 100
	}
	if !(interval > 0) {
		return 0, fmt.Errorf("%w: renormalization interval %g", ErrBadInterval, interval)
	}
	d0 := cfg.D0
	if d0 == 0 {
		d0 = 1e-8
	}
	opts := cfg.Options
	opts.SaveAt = diffeq.SaveAt{T1: true}
	opts.Event = nil
	opts.Throw = true

	x := y0.Clone()
	xp := y0.Clone()
	xp[0] += d0

	sumLog := 0.0
	t := t0
	for t < t1 {
		next := math.Min(t+interval, t1)
		a, err := diffeq.Solve(ctx, term, solver, t, next, cfg.Dt0, x, opts)
		if err != nil {
			return 0, err
		}
		b, err := diffeq.Solve(ctx, term, solver, t, next, cfg.Dt0, xp, opts)
		if err != nil {
			return 0, err
		}
		x, xp = a.Last(), b.Last()

		sep := floats.Distance(x, xp, 2)
		if sep == 0 {
			return math.Inf(-1), nil
		}
		sumLog += math.Log(sep / d0)

		// Renormalize to stay in the linear regime.
		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
		t = next
	}
	return sumLog / (t1 - t0), nil
}
