package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

// Registry resolves the names used in run files.
type Registry struct {
	solvers   map[string]func() diffeq.Solver
	operators []string
}

func NewRegistry() *Registry {
	r := &Registry{solvers: make(map[string]func() diffeq.Solver)}

	r.solvers["dopri5"] = func() diffeq.Solver { return diffeq.Dopri5{} }
	r.solvers["rk4"] = func() diffeq.Solver { return diffeq.RK4{} }
	r.solvers["leapfrog"] = func() diffeq.Solver { return diffeq.Leapfrog{} }

	r.operators = []string{"boost", "constant_rotation_z", "galilean_translation", "rotation", "translation"}
	return r
}

func (r *Registry) GetSolver(name string) (diffeq.Solver, error) {
	fn, ok := r.solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
	}
	return fn(), nil
}

// GetPotentialEntry returns the catalog entry for a potential type.
func (r *Registry) GetPotentialEntry(kind string) (potential.Entry, error) {
	e, ok := potential.Lookup(kind)
	if !ok {
		return potential.Entry{}, fmt.Errorf("%w: %q", ErrUnknownPotential, kind)
	}
	return e, nil
}

func (r *Registry) ListPotentials() []string { return potential.Kinds() }

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListOperators() []string { return append([]string(nil), r.operators...) }

// ListUnitSystems names the systems a run file may use.
func (r *Registry) ListUnitSystems() []string {
	return []string{units.Galactic.Name(), units.SolarSystem.Name(), units.SI.Name()}
}
