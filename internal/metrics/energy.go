package metrics

import (
	"math"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/fields"
)

// EnergyDrift is the largest relative change of the orbital energy from its
// first observed value. Time-dependent potentials do not conserve energy, so
// the value is only a diagnostic of integration error for static ones.
type EnergyDrift struct {
	field         *fields.HamiltonianField
	initialEnergy float64
	maxDrift      float64
	samples       int
	err           error
}

func NewEnergyDrift(f *fields.HamiltonianField) *EnergyDrift {
	return &EnergyDrift{field: f}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(t float64, y diffeq.State) {
	if e.err != nil {
		return
	}
	energy, err := e.field.Energy(t, y)
	if err != nil {
		e.err = err
		return
	}
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

// Value is NaN once an energy evaluation has failed.
func (e *EnergyDrift) Value() float64 {
	if e.err != nil {
		return math.NaN()
	}
	return e.maxDrift
}

// Err is the first evaluation error, if any.
func (e *EnergyDrift) Err() error { return e.err }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
	e.err = nil
}
