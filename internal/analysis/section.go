package analysis

import (
	"fmt"

	"github.com/san-kum/galdyn/internal/diffeq"
)

// SurfaceOfSection finds the times at which state component axis of a dense
// solution crosses zero going upward, scanning n evenly spaced samples and
// refining each bracket by bisection. It returns the crossing times and the
// states there.
func SurfaceOfSection(d *diffeq.DenseInterpolation, axis, n int) ([]float64, []diffeq.State, error) {
	if d == nil || d.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no dense output", ErrTooFewSamples)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: %d", ErrTooFewSamples, n)
	}
	at := func(t float64) float64 { return d.Evaluate(t)[axis] }
	if axis < 0 || axis >= len(d.Evaluate(d.T0)) {
		return nil, nil, fmt.Errorf("analysis: axis %d out of range", axis)
	}

	var ts []float64
	var ys []diffeq.State
	h := (d.T1 - d.T0) / float64(n)
	prevT, prev := d.T0, at(d.T0)
	for i := 1; i <= n; i++ {
		t := d.T0 + float64(i)*h
		if i == n {
			t = d.T1
		}
		cur := at(t)
		if prev < 0 && cur >= 0 {
			tc := bisect(at, prevT, t)
			ts = append(ts, tc)
			ys = append(ys, d.Evaluate(tc))
		}
		prevT, prev = t, cur
	}
	return ts, ys, nil
}

// bisect assumes f(lo) < 0 <= f(hi).
func bisect(f func(float64) float64, lo, hi float64) float64 {
	for i := 0; i < 60; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}
