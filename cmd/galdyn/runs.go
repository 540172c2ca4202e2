package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/galdyn/internal/analysis"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/experiment"
	"github.com/san-kum/galdyn/internal/export"
	"github.com/san-kum/galdyn/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tUNITS\tSOLVER\tT0\tT1\tORBITS\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%g\t%g\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Units,
			run.Solver,
			run.T0,
			run.T1,
			run.Orbits,
			run.Samples,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	if asJSON {
		return st.ExportJSONStdout(runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	_, states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	header(fmt.Sprintf("run %s", meta.ID))
	row("name", "%s", meta.Name)
	row("created", "%s", meta.Timestamp.Format("2006-01-02 15:04:05"))
	row("units", "%s", meta.Units)
	row("solver", "%s", meta.Solver)
	row("time span", "%g to %g", meta.T0, meta.T1)
	row("samples", "%d x %d orbit(s)", meta.Samples, meta.Orbits)
	for i, r := range meta.Results {
		if r != "successful" {
			r = warnStyle.Render(r)
		}
		row(fmt.Sprintf("orbit %d", i), "%s", r)
	}

	// Plot at most a handful of orbits; more lines than colors is unreadable.
	const maxPlots = 6
	var rs [][]float64
	for i, orbit := range states {
		if i == maxPlots {
			break
		}
		r := make([]float64, len(orbit))
		for j, y := range orbit {
			r[j] = floats.Norm(y[:3], 2)
		}
		rs = append(rs, r)
	}
	if meta.Samples > 1 {
		graph("r(t)", plotWidth, rs...)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	header(fmt.Sprintf("analysis of %s (%s)", meta.Name, meta.ID))
	for i, orbit := range states {
		p, err := analysis.RadialPeriod(times, orbit)
		if err != nil {
			row(fmt.Sprintf("orbit %d period", i), "%s", warnStyle.Render(err.Error()))
			continue
		}
		row(fmt.Sprintf("orbit %d period", i), "%.6g", p)
	}
	if !lyapunov && section == "" {
		return nil
	}

	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	if section != "" {
		cfg.Integration.Dense = true
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if lyapunov {
		opts := diffeq.DefaultOptions()
		opts.Controller = exp.Integrator.Solver.Controller
		for i, orbit := range states {
			if len(orbit) == 0 || !orbit[0].IsValid() {
				continue
			}
			lam, err := analysis.LyapunovExponent(ctx, exp.Field, exp.Integrator.Solver.Solver,
				orbit[0], meta.T0, meta.T1, analysis.LyapunovConfig{Dt0: exp.Integrator.Dt0, Options: opts})
			if err != nil {
				return fmt.Errorf("orbit %d: %w", i, err)
			}
			row(fmt.Sprintf("orbit %d lyapunov", i), "%.6g 1/%s", lam, exp.Field.Units().Time())
		}
	}

	if section != "" {
		axis, err := export.Axis(section)
		if err != nil {
			return err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		for i := range res.States {
			ts, ys, err := analysis.SurfaceOfSection(res.Orbit.Interpolant.Orbit(i), axis, 20*max(meta.Samples, 50))
			if err != nil {
				return fmt.Errorf("orbit %d: %w", i, err)
			}
			fmt.Println()
			row(fmt.Sprintf("orbit %d crossings", i), "%d", len(ts))
			for j, y := range ys {
				row(fmt.Sprintf("  t=%.6g", ts[j]), "R=%.6g vR=%.6g", math.Hypot(y[0], y[1]), radialVelocity(y))
			}
		}
	}
	return nil
}

func radialVelocity(y diffeq.State) float64 {
	R := math.Hypot(y[0], y[1])
	if R == 0 {
		return 0
	}
	return (y[0]*y[3] + y[1]*y[4]) / R
}
