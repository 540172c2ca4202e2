// Package shape implements the batch-shape bookkeeping shared by quantities,
// positions and potential evaluation: splitting a shape into batch and core
// parts, broadcasting batch shapes and mapping flat indices between them.
package shape

import (
	"errors"
	"fmt"
)

// ErrIncompatible is returned when two shapes cannot be broadcast together.
var ErrIncompatible = errors.New("shape: shapes are not broadcast compatible")

// Size is the number of elements of an array with shape s. The empty shape
// is a scalar and has size 1.
func Size(s []int) int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether a and b are the same shape.
func Equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of s that never aliases it.
func Clone(s []int) []int {
	if len(s) == 0 {
		return []int{}
	}
	c := make([]int, len(s))
	copy(c, s)
	return c
}

// Split returns the (batch, core) split of s for an array whose core has
// coreDims trailing dimensions. A shape with fewer dimensions than coreDims
// is treated as having an empty batch.
func Split(s []int, coreDims int) (batch, core []int) {
	n := len(s) - coreDims
	if n < 0 {
		n = 0
	}
	return Clone(s[:n]), Clone(s[n:])
}

// Concat joins batch and core shapes.
func Concat(batch []int, core ...int) []int {
	out := make([]int, 0, len(batch)+len(core))
	out = append(out, batch...)
	return append(out, core...)
}

// Broadcast returns the shape obtained by broadcasting a against b with the
// usual right-aligned rules: dimensions must match or one of them must be 1.
func Broadcast(a, b []int) ([]int, error) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if j := len(a) - n + i; j >= 0 {
			da = a[j]
		}
		if j := len(b) - n + i; j >= 0 {
			db = b[j]
		}
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, fmt.Errorf("%w: %v and %v", ErrIncompatible, a, b)
		}
	}
	return out, nil
}

// Index maps the flat row-major index flat of an array with shape out onto
// the flat index of an array with shape in that broadcasts to out.
func Index(out, in []int, flat int) int {
	idx := 0
	stride := 1
	for i := len(out) - 1; i >= 0; i-- {
		k := flat % out[i]
		flat /= out[i]
		j := len(in) - len(out) + i
		if j < 0 {
			continue
		}
		if in[j] != 1 {
			idx += k * stride
		}
		stride *= in[j]
	}
	return idx
}
