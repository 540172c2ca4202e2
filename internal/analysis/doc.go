// Package analysis characterizes sampled and dense orbits.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectra of evenly sampled series
//   - [RadialPeriod]: the radial period of an orbit from its samples
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [SurfaceOfSection]: upward crossings of a coordinate plane
//
// # Chaos Detection
//
// Regular orbits have a largest Lyapunov exponent that decays towards zero
// as the integration time grows. Orbits in a rotating bar often do not:
//
//	lambda, err := analysis.LyapunovExponent(ctx, field, diffeq.Dopri5{}, y0, 0, 5000, analysis.LyapunovConfig{})
package analysis
