// Package coords holds phase-space positions and the closed set of position
// and time representations accepted by potential evaluation.
package coords

import (
	"errors"
	"fmt"

	"github.com/san-kum/galdyn/internal/shape"
	"github.com/san-kum/galdyn/internal/units"
)

// ErrShape indicates a position whose trailing dimension is wrong or whose
// batch shapes do not broadcast.
var ErrShape = errors.New("coords: bad shape")

// Position is one of Vector, Array, *PhaseSpacePosition or FourVector.
type Position interface {
	isPosition()
}

// Time is one of TimeQuantity or RawTime. A nil Time means no time was
// supplied.
type Time interface {
	isTime()
}

// Vector is a batch of Cartesian 3-vectors in any length unit, shape
// (*batch, 3).
type Vector struct {
	Q units.Quantity
}

// NewVector checks the trailing dimension and the length dimension of q.
func NewVector(q units.Quantity) (Vector, error) {
	if err := CheckTrailing(q.Shape, 3); err != nil {
		return Vector{}, err
	}
	if err := q.CheckDimension("length"); err != nil {
		return Vector{}, err
	}
	return Vector{Q: q}, nil
}

// MustVector is like NewVector but panics on error.
func MustVector(q units.Quantity) Vector {
	v, err := NewVector(q)
	if err != nil {
		panic(err)
	}
	return v
}

// Array is a batch of raw 3-vectors already expressed in the length unit of
// the potential they are evaluated against, shape (*batch, 3).
type Array struct {
	Values []float64
	Shape  []int
}

// Point returns a single raw position.
func Point(x, y, z float64) Array {
	return Array{Values: []float64{x, y, z}, Shape: []int{3}}
}

// FourVector is a space-time position: a time and a 3-vector sharing a batch
// shape.
type FourVector struct {
	T units.Quantity
	Q units.Quantity
}

// NewFourVector splits x of shape (*batch, 4), whose first component is
// c·t in a length unit, into a time and a position.
func NewFourVector(x units.Quantity) (FourVector, error) {
	if err := CheckTrailing(x.Shape, 4); err != nil {
		return FourVector{}, err
	}
	if err := x.CheckDimension("length"); err != nil {
		return FourVector{}, err
	}
	batch, _ := shape.Split(x.Shape, 1)
	n := shape.Size(batch)
	ct := make([]float64, n)
	q := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		ct[i] = x.Value[4*i]
		copy(q[3*i:3*i+3], x.Value[4*i+1:4*i+4])
	}
	ctq := units.MustNew(ct, batch, x.Unit)
	t, err := ctq.Div(units.C)
	if err != nil {
		return FourVector{}, err
	}
	t, err = t.To(units.S)
	if err != nil {
		return FourVector{}, err
	}
	return FourVector{T: t, Q: units.MustNew(q, shape.Concat(batch, 3), x.Unit)}, nil
}

// PhaseSpacePosition bundles positions, velocities and an optional time.
// Q and P have shape (*batch, 3); T, when present, broadcasts against the
// batch shape.
type PhaseSpacePosition struct {
	Q units.Quantity
	P units.Quantity
	T *units.Quantity
}

// NewPhaseSpacePosition validates the dimensions and shapes of q, p and t.
// t may be nil.
func NewPhaseSpacePosition(q, p units.Quantity, t *units.Quantity) (*PhaseSpacePosition, error) {
	if err := CheckTrailing(q.Shape, 3); err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	if err := CheckTrailing(p.Shape, 3); err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}
	if !shape.Equal(q.Shape, p.Shape) {
		return nil, fmt.Errorf("%w: position %v and velocity %v", ErrShape, q.Shape, p.Shape)
	}
	if err := q.CheckDimension("length"); err != nil {
		return nil, err
	}
	if err := p.CheckDimension("speed"); err != nil {
		return nil, err
	}
	if t != nil {
		if err := t.CheckDimension("time"); err != nil {
			return nil, err
		}
		batch, _ := shape.Split(q.Shape, 1)
		if _, err := shape.Broadcast(batch, t.Shape); err != nil {
			return nil, fmt.Errorf("%w: time %v against batch %v", ErrShape, t.Shape, batch)
		}
	}
	return &PhaseSpacePosition{Q: q, P: p, T: t}, nil
}

// BatchShape is the shape of q without its trailing component axis.
func (w *PhaseSpacePosition) BatchShape() []int {
	b, _ := shape.Split(w.Q.Shape, 1)
	return b
}

// Len is the number of points in the batch.
func (w *PhaseSpacePosition) Len() int { return shape.Size(w.BatchShape()) }

// ValuesIn returns raw q and p in the length and speed units of us.
func (w *PhaseSpacePosition) ValuesIn(us units.System) (q, p []float64, err error) {
	if q, err = w.Q.ValueIn(us.Length()); err != nil {
		return nil, nil, err
	}
	if p, err = w.P.ValueIn(us.MustGet("speed")); err != nil {
		return nil, nil, err
	}
	return q, p, nil
}

// At returns the i-th point of the batch.
func (w *PhaseSpacePosition) At(i int) *PhaseSpacePosition {
	q := units.MustNew(append([]float64(nil), w.Q.Value[3*i:3*i+3]...), []int{3}, w.Q.Unit)
	p := units.MustNew(append([]float64(nil), w.P.Value[3*i:3*i+3]...), []int{3}, w.P.Unit)
	var t *units.Quantity
	if w.T != nil {
		ti := w.T.At(shape.Index(w.BatchShape(), w.T.Shape, i))
		t = &ti
	}
	return &PhaseSpacePosition{Q: q, P: p, T: t}
}

// TimeQuantity is a unit-tagged scalar or batch of times.
type TimeQuantity struct {
	Q units.Quantity
}

// At is a scalar time in unit u.
func At(t float64, u units.Unit) TimeQuantity {
	return TimeQuantity{Q: units.Scalar(t, u)}
}

// RawTime is a scalar or batch of times in the time unit of the potential
// they are evaluated against.
type RawTime struct {
	Values []float64
	Shape  []int
}

// Raw returns a scalar raw time for one value and a 1-D batch otherwise.
func Raw(ts ...float64) RawTime {
	if len(ts) == 1 {
		return RawTime{Values: ts, Shape: []int{}}
	}
	return RawTime{Values: ts, Shape: []int{len(ts)}}
}

func (Vector) isPosition()              {}
func (Array) isPosition()               {}
func (*PhaseSpacePosition) isPosition() {}
func (FourVector) isPosition()          {}
func (TimeQuantity) isTime()            {}
func (RawTime) isTime()                 {}

// CheckTrailing returns ErrShape unless the last dimension of s is n.
func CheckTrailing(s []int, n int) error {
	if len(s) == 0 || s[len(s)-1] != n {
		return fmt.Errorf("%w: trailing dimension of %v must be %d", ErrShape, s, n)
	}
	return nil
}
