// Package autodiff computes exact first and second derivatives of scalar
// fields over three-dimensional space using hyperdual numbers.
//
// A field is written once against [Vec]; seeding the ε1 and ε2 parts of
// the coordinates yields the gradient and every Hessian entry to machine
// precision, with no finite differencing.
package autodiff

import (
	"math"

	"gonum.org/v1/gonum/num/hyperdual"
)

// Vec is a point in space whose coordinates carry derivative parts.
type Vec [3]hyperdual.Number

// Field is a scalar function of position.
type Field func(q Vec) (hyperdual.Number, error)

// VecField is a vector function of position.
type VecField func(q Vec) (Vec, error)

// N returns a constant hyperdual number.
func N(x float64) hyperdual.Number { return hyperdual.Number{Real: x} }

// Const lifts a point to a Vec with zero derivative parts.
func Const(x [3]float64) Vec {
	return Vec{N(x[0]), N(x[1]), N(x[2])}
}

// Real drops the derivative parts.
func (v Vec) Real() [3]float64 {
	return [3]float64{v[0].Real, v[1].Real, v[2].Real}
}

func Add(a, b Vec) Vec {
	return Vec{hyperdual.Add(a[0], b[0]), hyperdual.Add(a[1], b[1]), hyperdual.Add(a[2], b[2])}
}

func Sub(a, b Vec) Vec {
	return Vec{hyperdual.Sub(a[0], b[0]), hyperdual.Sub(a[1], b[1]), hyperdual.Sub(a[2], b[2])}
}

// Scale multiplies every coordinate of v by f.
func Scale(f float64, v Vec) Vec {
	return Vec{hyperdual.Scale(f, v[0]), hyperdual.Scale(f, v[1]), hyperdual.Scale(f, v[2])}
}

// Dot is the Euclidean inner product.
func Dot(a, b Vec) hyperdual.Number {
	s := hyperdual.Mul(a[0], b[0])
	s = hyperdual.Add(s, hyperdual.Mul(a[1], b[1]))
	return hyperdual.Add(s, hyperdual.Mul(a[2], b[2]))
}

// Norm is the Euclidean length of v.
func Norm(v Vec) hyperdual.Number { return hyperdual.Sqrt(Dot(v, v)) }

// MatVec applies the constant matrix m to v.
func MatVec(m [3][3]float64, v Vec) Vec {
	var out Vec
	for i := 0; i < 3; i++ {
		s := hyperdual.Scale(m[i][0], v[0])
		s = hyperdual.Add(s, hyperdual.Scale(m[i][1], v[1]))
		out[i] = hyperdual.Add(s, hyperdual.Scale(m[i][2], v[2]))
	}
	return out
}

// RotationZ is the matrix of a counter-clockwise rotation by angle about z.
func RotationZ(angle float64) [3][3]float64 {
	s, c := math.Sincos(angle)
	return [3][3]float64{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// RotateZ rotates v counter-clockwise by angle about the z axis.
func RotateZ(v Vec, angle float64) Vec { return MatVec(RotationZ(angle), v) }

// Div is x / y.
func Div(x, y hyperdual.Number) hyperdual.Number {
	return hyperdual.Mul(x, hyperdual.Inv(y))
}

// Square is x².
func Square(x hyperdual.Number) hyperdual.Number { return hyperdual.Mul(x, x) }

func seed(x [3]float64, i, j int) Vec {
	v := Const(x)
	if i >= 0 {
		v[i].E1mag = 1
	}
	if j >= 0 {
		v[j].E2mag = 1
	}
	return v
}

// Value evaluates f at x.
func Value(f Field, x [3]float64) (float64, error) {
	r, err := f(Const(x))
	if err != nil {
		return 0, err
	}
	return r.Real, nil
}

// Gradient returns ∇f(x).
func Gradient(f Field, x [3]float64) ([3]float64, error) {
	var g [3]float64
	for i := 0; i < 3; i++ {
		r, err := f(seed(x, i, -1))
		if err != nil {
			return g, err
		}
		g[i] = r.E1mag
	}
	return g, nil
}

// Hessian returns the symmetric matrix of second derivatives of f at x.
func Hessian(f Field, x [3]float64) ([3][3]float64, error) {
	var h [3][3]float64
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			r, err := f(seed(x, i, j))
			if err != nil {
				return h, err
			}
			h[i][j] = r.E1E2mag
			h[j][i] = r.E1E2mag
		}
	}
	return h, nil
}

// Laplacian returns ∇²f(x), the trace of the Hessian.
func Laplacian(f Field, x [3]float64) (float64, error) {
	var l float64
	for i := 0; i < 3; i++ {
		r, err := f(seed(x, i, i))
		if err != nil {
			return 0, err
		}
		l += r.E1E2mag
	}
	return l, nil
}

// Jacobian returns J[i][j] = ∂f_i/∂x_j.
func Jacobian(f VecField, x [3]float64) ([3][3]float64, error) {
	var jac [3][3]float64
	for j := 0; j < 3; j++ {
		r, err := f(seed(x, j, -1))
		if err != nil {
			return jac, err
		}
		for i := 0; i < 3; i++ {
			jac[i][j] = r[i].E1mag
		}
	}
	return jac, nil
}
