package diffeq

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxStepsReached indicates the solve ran out of steps before t1.
	ErrMaxStepsReached = errors.New("diffeq: maximum number of steps reached")

	// ErrStepSizeTooSmall indicates the step size underflowed or dropped
	// below the controller's minimum.
	ErrStepSizeTooSmall = errors.New("diffeq: step size too small")

	// ErrNonFinite indicates the state became NaN or Inf.
	ErrNonFinite = errors.New("diffeq: non-finite state")

	// ErrNoErrorEstimate indicates an adaptive controller was paired with a
	// solver that has no embedded error estimate.
	ErrNoErrorEstimate = errors.New("diffeq: solver has no error estimate")

	// ErrBadSaveAt indicates save times outside [t0, t1] or out of order.
	ErrBadSaveAt = errors.New("diffeq: invalid save times")

	// ErrBadStep indicates a missing or zero step size where one is required.
	ErrBadStep = errors.New("diffeq: invalid step size")
)

// IntegrationError wraps a failed solve with the step and time it stopped at.
type IntegrationError struct {
	Step    int
	Time    float64
	Result  Result
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d at t=%g: %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
