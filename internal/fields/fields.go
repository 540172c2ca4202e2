// Package fields turns potentials into phase-space vector fields that the
// diffeq solvers can integrate.
package fields

import (
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
	"gonum.org/v1/gonum/mat"
)

// Field is a vector field over [q, p] states in the length and speed units
// of Units.
type Field interface {
	diffeq.Term
	Units() units.System
}

// HamiltonianField is the motion of a test particle, dq/dt = p and
// dp/dt = −∇Φ(q, t). States are [x, y, z, vx, vy, vz].
type HamiltonianField struct {
	Potential potential.Potential
}

func NewHamiltonianField(p potential.Potential) *HamiltonianField {
	return &HamiltonianField{Potential: p}
}

func (f *HamiltonianField) Units() units.System { return f.Potential.Units() }

func (f *HamiltonianField) VectorField(t float64, y diffeq.State, _ any) (diffeq.State, error) {
	g, err := potential.GradientAt(f.Potential, [3]float64{y[0], y[1], y[2]}, t)
	if err != nil {
		return nil, err
	}
	return diffeq.State{y[3], y[4], y[5], -g[0], -g[1], -g[2]}, nil
}

// Jacobian is [[0, I], [−H, 0]] with H the Hessian of Φ.
func (f *HamiltonianField) Jacobian(t float64, y diffeq.State, _ any) (*mat.Dense, error) {
	h, err := potential.HessianAt(f.Potential, [3]float64{y[0], y[1], y[2]}, t)
	if err != nil {
		return nil, err
	}
	j := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		j.Set(i, 3+i, 1)
		for k := 0; k < 3; k++ {
			j.Set(3+i, k, -h[i][k])
		}
	}
	return j, nil
}

// Energy is the specific orbital energy ½|p|² + Φ(q, t).
func (f *HamiltonianField) Energy(t float64, y diffeq.State) (float64, error) {
	phi, err := potential.EnergyAt(f.Potential, [3]float64{y[0], y[1], y[2]}, t)
	if err != nil {
		return 0, err
	}
	return 0.5*(y[3]*y[3]+y[4]*y[4]+y[5]*y[5]) + phi, nil
}
