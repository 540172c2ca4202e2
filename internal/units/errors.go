package units

import "errors"

var (
	// ErrDimensionMismatch indicates a value whose physical dimension differs
	// from the one required.
	ErrDimensionMismatch = errors.New("units: dimension mismatch")

	// ErrUnknownUnit indicates a unit string that cannot be parsed.
	ErrUnknownUnit = errors.New("units: unknown unit")

	// ErrUnknownDimension indicates an unknown physical dimension name.
	ErrUnknownDimension = errors.New("units: unknown dimension name")

	// ErrShape indicates a quantity whose value length does not match its shape.
	ErrShape = errors.New("units: value length does not match shape")
)
