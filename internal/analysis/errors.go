package analysis

import "errors"

var (
	ErrTooFewSamples  = errors.New("analysis: too few samples")
	ErrUnevenSampling = errors.New("analysis: samples are not evenly spaced")
	ErrNoPeak         = errors.New("analysis: spectrum has no peak")
	ErrBadInterval    = errors.New("analysis: bad interval")
)
