package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/galdyn/internal/diffeq"
)

// PowerSpectrum returns the one-sided power spectrum of data sampled every
// dt. The mean is removed and a Hann window applied first. freqs[k] is
// k/(n·dt).
func PowerSpectrum(data []float64, dt float64) (freqs, power []float64, err error) {
	n := len(data)
	if n < 4 {
		return nil, nil, fmt.Errorf("%w: %d", ErrTooFewSamples, n)
	}
	if !(dt > 0) {
		return nil, nil, fmt.Errorf("%w: dt = %g", ErrUnevenSampling, dt)
	}
	x := make([]float64, n)
	mean := floats.Sum(data) / float64(n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)
	spec := fft.FFTReal(x)

	half := n / 2
	freqs = make([]float64, half+1)
	power = make([]float64, half+1)
	for k := range power {
		freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(spec[k])
		power[k] = a * a
	}
	return freqs, power, nil
}

// DominantPeriod is the period of the strongest non-zero frequency in data,
// refined by a parabola through the peak bin and its neighbours.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	_, power, err := PowerSpectrum(data, dt)
	if err != nil {
		return 0, err
	}
	k := 1 + floats.MaxIdx(power[1:])
	if power[k] == 0 {
		return 0, ErrNoPeak
	}
	shift := 0.0
	if k+1 < len(power) {
		a, b, c := power[k-1], power[k], power[k+1]
		if d := a - 2*b + c; d != 0 {
			shift = 0.5 * (a - c) / d
		}
	}
	return float64(len(data)) * dt / (float64(k) + shift), nil
}

// RadialPeriod estimates the radial period of an orbit from evenly spaced
// samples of its [q, p] states. Samples must cover several periods.
func RadialPeriod(ts []float64, ys []diffeq.State) (float64, error) {
	if len(ts) != len(ys) {
		return 0, fmt.Errorf("%w: %d times for %d states", ErrTooFewSamples, len(ts), len(ys))
	}
	dt, err := spacing(ts)
	if err != nil {
		return 0, err
	}
	r := make([]float64, len(ys))
	for i, y := range ys {
		r[i] = floats.Norm(y[:3], 2)
	}
	return DominantPeriod(r, dt)
}

func spacing(ts []float64) (float64, error) {
	if len(ts) < 2 {
		return 0, fmt.Errorf("%w: %d", ErrTooFewSamples, len(ts))
	}
	dt := (ts[len(ts)-1] - ts[0]) / float64(len(ts)-1)
	for i := 1; i < len(ts); i++ {
		if math.Abs(ts[i]-ts[i-1]-dt) > 1e-9*math.Abs(dt) {
			return 0, fmt.Errorf("%w: step %d is %g, expected %g", ErrUnevenSampling, i, ts[i]-ts[i-1], dt)
		}
	}
	return math.Abs(dt), nil
}
