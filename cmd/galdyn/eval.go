package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/galdyn/internal/coords"
	"github.com/san-kum/galdyn/internal/experiment"
	"github.com/san-kum/galdyn/internal/potential"
	"github.com/san-kum/galdyn/internal/units"
)

func evalPotential(cmd *cobra.Command, args []string) error {
	if len(at) != 3 {
		return fmt.Errorf("--at takes three coordinates, got %d", len(at))
	}
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := experiment.NewRegistry().BuildPotential(cfg)
	if err != nil {
		return err
	}

	us := p.Units()
	q := coords.Point(at[0], at[1], at[2])
	t := coords.Raw(atTime)

	header(fmt.Sprintf("%s at (%g, %g, %g) %s, t = %g %s", name, at[0], at[1], at[2], us.Length(), atTime, us.Time()))
	evals := []struct {
		label string
		fn    func(potential.Potential, coords.Position, coords.Time) (units.Quantity, error)
	}{
		{"energy", potential.Energy},
		{"gradient", potential.Gradient},
		{"acceleration", potential.Acceleration},
		{"density", potential.Density},
		{"d2Phi/dr2", potential.D2PhiDr2},
		{"v_circ", potential.CircularVelocity},
	}
	for _, e := range evals {
		v, err := e.fn(p, q, t)
		if err != nil {
			return fmt.Errorf("%s: %w", e.label, err)
		}
		row(e.label, "%s", formatQuantity(v))
	}
	return nil
}

func listPotentials(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	for _, kind := range reg.ListPotentials() {
		entry, err := reg.GetPotentialEntry(kind)
		if err != nil {
			return err
		}
		var ps string
		for _, spec := range entry.Params {
			s := spec.Name + ":" + spec.Dimension
			if spec.Default != nil {
				s += "=" + formatQuantity(*spec.Default)
			}
			ps += s + " "
		}
		fmt.Println(labelStyle.Render(kind) + valueStyle.Render(ps))
	}
	fmt.Println()
	row("operators", "%v", reg.ListOperators())
	row("solvers", "%v", reg.ListSolvers())
	row("unit systems", "%v", reg.ListUnitSystems())
	return nil
}
