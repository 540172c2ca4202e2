package diffeq

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// State is a flat solver state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Term is the right-hand side of dy/dt = f(t, y, args). Implementations must
// not retain or modify y.
type Term interface {
	VectorField(t float64, y State, args any) (State, error)
}

// TermFunc adapts a plain function to Term.
type TermFunc func(t float64, y State, args any) (State, error)

func (f TermFunc) VectorField(t float64, y State, args any) (State, error) {
	return f(t, y, args)
}

// Jacobianer is implemented by terms that know ∂f/∂y exactly. Terms without
// it are differentiated by central finite differences.
type Jacobianer interface {
	Jacobian(t float64, y State, args any) (*mat.Dense, error)
}

// Result is the outcome of a solve.
type Result int

const (
	Successful Result = iota
	MaxStepsReached
	StepSizeTooSmall
	NonFinite
	EventOccurred
	Canceled
)

func (r Result) String() string {
	switch r {
	case Successful:
		return "successful"
	case MaxStepsReached:
		return "max steps reached"
	case StepSizeTooSmall:
		return "step size too small"
	case NonFinite:
		return "non-finite state"
	case EventOccurred:
		return "event occurred"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// Failed reports whether r stopped the solve before t1 for a reason other
// than an event.
func (r Result) Failed() bool {
	return r != Successful && r != EventOccurred
}

func (r Result) err() error {
	switch r {
	case MaxStepsReached:
		return ErrMaxStepsReached
	case StepSizeTooSmall:
		return ErrStepSizeTooSmall
	case NonFinite:
		return ErrNonFinite
	}
	return nil
}

// Stats counts the work done by a solve.
type Stats struct {
	NumSteps    int
	NumAccepted int
	NumRejected int
	NumEvals    int
}

type countingTerm struct {
	Term
	evals int
}

func (c *countingTerm) VectorField(t float64, y State, args any) (State, error) {
	c.evals++
	return c.Term.VectorField(t, y, args)
}
