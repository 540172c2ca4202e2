package ops

import (
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/mat"
)

// Simplify returns an operator equivalent to op with identities and no-op
// parameters removed and runs of translations, boosts, rotations and
// constant z-rotations merged.
func Simplify(op Operator) Operator {
	var in Pipe
	if p, ok := op.(Pipe); ok {
		in = flatten(p)
	} else {
		in = Pipe{op}
	}

	var out Pipe
	for _, cur := range in {
		if isNoop(cur) {
			continue
		}
		if n := len(out); n > 0 {
			if merged, ok := merge(out[n-1], cur); ok {
				if isNoop(merged) {
					out = out[:n-1]
				} else {
					out[n-1] = merged
				}
				continue
			}
		}
		out = append(out, cur)
	}

	switch len(out) {
	case 0:
		return Identity{}
	case 1:
		return out[0]
	}
	return out
}

func merge(a, b Operator) (Operator, bool) {
	switch x := a.(type) {
	case Translation:
		if y, ok := b.(Translation); ok {
			if d, err := x.Delta.Add(y.Delta); err == nil {
				return Translation{Delta: d}, true
			}
		}
	case Boost:
		if y, ok := b.(Boost); ok {
			if v, err := x.V.Add(y.V); err == nil {
				return Boost{V: v}, true
			}
		}
	case Rotation:
		if y, ok := b.(Rotation); ok {
			var r mat.Dense
			r.Mul(toDense(y.R), toDense(x.R))
			var out [3][3]float64
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					out[i][j] = r.At(i, j)
				}
			}
			return Rotation{R: out}, true
		}
	case ConstantRotationZ:
		if y, ok := b.(ConstantRotationZ); ok {
			if w, err := x.Omega.Add(y.Omega); err == nil {
				return ConstantRotationZ{Omega: w}, true
			}
		}
	}
	return nil, false
}

func isNoop(op Operator) bool {
	switch x := op.(type) {
	case Identity:
		return true
	case Pipe:
		return len(x) == 0
	case Translation:
		return allZero(x.Delta)
	case GalileanTranslation:
		return allZero(x.Dt) && allZero(x.Delta)
	case Boost:
		return allZero(x.V)
	case Rotation:
		return mat.Equal(toDense(x.R), eye())
	case ConstantRotationZ:
		return allZero(x.Omega)
	}
	return false
}

func allZero(q units.Quantity) bool {
	for _, v := range q.Value {
		if v != 0 {
			return false
		}
	}
	return true
}
