// Package params implements time-dependent potential parameters.
//
// A Parameter maps a time to a unit-tagged value. Constant ignores the time,
// Linear is a point-slope line in time and User wraps an arbitrary pure
// function. Constant and Linear validate their physical dimension when they
// are built; a User parameter can only be checked when it is called.
package params

import (
	"fmt"

	"github.com/san-kum/galdyn/internal/units"
)

// DefaultTime is passed where a time is required but never read, as when a
// Constant is evaluated without one.
var DefaultTime = units.Scalar(0, units.Myr)

// Parameter is a value that may vary with time. Implementations are pure:
// the same t always yields the same value.
type Parameter interface {
	Value(t units.Quantity) (units.Quantity, error)
}

// Constant is a time-independent parameter.
type Constant struct {
	value units.Quantity
}

// NewConstant returns a Constant after checking that v has the named
// dimension. An empty dimension skips the check.
func NewConstant(v units.Quantity, dimension string) (Constant, error) {
	if dimension != "" {
		if err := v.CheckDimension(dimension); err != nil {
			return Constant{}, fmt.Errorf("constant parameter: %w", err)
		}
	}
	return Constant{value: v}, nil
}

// MustConstant is like NewConstant but panics on error.
func MustConstant(v units.Quantity, dimension string) Constant {
	c, err := NewConstant(v, dimension)
	if err != nil {
		panic(err)
	}
	return c
}

// Value returns the constant; t is ignored.
func (c Constant) Value(units.Quantity) (units.Quantity, error) { return c.value, nil }

// Get returns the constant without a time argument.
func (c Constant) Get() units.Quantity { return c.value }

func (c Constant) String() string { return fmt.Sprintf("Constant(%v)", c.value) }

// Linear is p(t) = slope·(t − pointTime) + pointValue. The result carries the
// product unit of slope and t, e.g. "Gyr solMass / yr" for a slope in
// solMass / yr queried in Gyr.
type Linear struct {
	Slope      units.Quantity
	PointTime  units.Quantity
	PointValue units.Quantity
}

// NewLinear validates that pointTime is a time, that pointValue has the named
// dimension, and that slope·time matches pointValue.
func NewLinear(slope, pointTime, pointValue units.Quantity, dimension string) (Linear, error) {
	if err := pointTime.CheckDimension("time"); err != nil {
		return Linear{}, fmt.Errorf("linear parameter point_time: %w", err)
	}
	if dimension != "" {
		if err := pointValue.CheckDimension(dimension); err != nil {
			return Linear{}, fmt.Errorf("linear parameter point_value: %w", err)
		}
	}
	if !slope.Unit.Mul(pointTime.Unit).Compatible(pointValue.Unit) {
		return Linear{}, fmt.Errorf("linear parameter: %w: slope %q times time does not give %q",
			units.ErrDimensionMismatch, slope.Unit, pointValue.Unit)
	}
	return Linear{Slope: slope, PointTime: pointTime, PointValue: pointValue}, nil
}

func (l Linear) Value(t units.Quantity) (units.Quantity, error) {
	dt, err := t.Sub(l.PointTime)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("linear parameter: %w", err)
	}
	v, err := l.Slope.Mul(dt)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("linear parameter: %w", err)
	}
	return v.Add(l.PointValue)
}

// Func is the signature of a user parameter.
type Func func(t units.Quantity) (units.Quantity, error)

// User calls Func. Dimension is informational; mismatches surface when the
// value is converted.
type User struct {
	Func      Func
	Dimension string
}

func (u User) Value(t units.Quantity) (units.Quantity, error) {
	return u.Func(t)
}

// ToQuantity evaluates p at t and returns the plain quantity.
func ToQuantity(p Parameter, t units.Quantity) (units.Quantity, error) {
	return p.Value(t)
}

// ValueIn evaluates p at t and strips the result to unit u.
func ValueIn(p Parameter, t units.Quantity, u units.Unit) ([]float64, error) {
	v, err := p.Value(t)
	if err != nil {
		return nil, err
	}
	return v.ValueIn(u)
}

// Float evaluates a scalar parameter at t in unit u.
func Float(p Parameter, t units.Quantity, u units.Unit) (float64, error) {
	v, err := p.Value(t)
	if err != nil {
		return 0, err
	}
	return v.Float(u)
}
