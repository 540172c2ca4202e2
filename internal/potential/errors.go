package potential

import "errors"

var (
	// ErrAmbiguousTime is returned when a time is passed alongside a
	// position that already carries one.
	ErrAmbiguousTime = errors.New("potential: time given both explicitly and in the position")

	// ErrMissingTime is returned when neither the position nor the caller
	// supplies a time.
	ErrMissingTime = errors.New("potential: no time supplied")

	// ErrUnitSystemMismatch is returned when composing potentials with
	// different unit systems.
	ErrUnitSystemMismatch = errors.New("potential: unit systems differ")

	// ErrUnknownKind is returned for catalog names that are not registered.
	ErrUnknownKind = errors.New("potential: unknown potential kind")

	// ErrBadParameter is returned for missing, unknown or invalid parameters.
	ErrBadParameter = errors.New("potential: bad parameter")
)
