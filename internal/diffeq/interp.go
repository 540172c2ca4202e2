package diffeq

import "sort"

// DenseInterpolation is the piecewise continuous extension of a solve.
// Queries outside [T0, T1] extrapolate with the first or last step.
type DenseInterpolation struct {
	T0, T1 float64
	ends   []float64
	steps  []DenseStep
}

func (d *DenseInterpolation) add(t1 float64, s DenseStep) {
	d.ends = append(d.ends, t1)
	d.steps = append(d.steps, s)
	d.T1 = t1
}

// Len is the number of steps stored.
func (d *DenseInterpolation) Len() int { return len(d.steps) }

// Evaluate returns the interpolated state at t.
func (d *DenseInterpolation) Evaluate(t float64) State {
	if len(d.steps) == 0 {
		return nil
	}
	var i int
	if d.T1 >= d.T0 {
		i = sort.Search(len(d.ends), func(k int) bool { return d.ends[k] >= t })
	} else {
		i = sort.Search(len(d.ends), func(k int) bool { return d.ends[k] <= t })
	}
	if i == len(d.steps) {
		i--
	}
	return d.steps[i].Eval(t)
}
