package experiment

import "errors"

var (
	// ErrUnsupportedConversion is returned when a potential has no config
	// form, such as one with a user-function parameter.
	ErrUnsupportedConversion = errors.New("experiment: potential cannot be converted")

	ErrUnknownPotential = errors.New("experiment: unknown potential type")
	ErrUnknownOperator  = errors.New("experiment: unknown frame operator")
	ErrUnknownSolver    = errors.New("experiment: unknown solver")
)
