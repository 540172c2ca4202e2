package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/experiment"
	"github.com/san-kum/galdyn/internal/export"
	"github.com/san-kum/galdyn/internal/fields"
	"github.com/san-kum/galdyn/internal/integrate"
	"github.com/san-kum/galdyn/internal/storage"
)

func runOrbit(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}
	if solver != "" {
		cfg.Integration.Solver = solver
	}
	if cmd.Flags().Changed("save-n") {
		cfg.Integration.SaveN = saveN
	}
	if cmd.Flags().Changed("workers") {
		cfg.Integration.Workers = workers
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}
	if progress {
		exp.Integrator.Workers = 1
		exp.Integrator.Options = append(exp.Integrator.Options,
			integrate.WithProgressMeter(&diffeq.LogProgressMeter{Log: logrus.StandardLogger()}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	header(fmt.Sprintf("%s: %d orbit(s), %g to %g %s", name, len(result.States), result.T0, result.T1, result.Units.Time()))
	row("completed in", "%v", elapsed.Round(time.Millisecond))
	if !noStore {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(name, cfg, result)
		if err != nil {
			return err
		}
		row("run id", "%s", runID)
	}
	printOrbitSummary(result)

	if len(result.Times) > 1 {
		r, e := radiusAndEnergy(exp.Field, result.Times, result.States[0])
		graph(fmt.Sprintf("r(t) [%s], orbit 0", result.Units.Length()), plotWidth, r)
		graph("E(t), orbit 0", plotWidth, e)
	}

	if figure != "" {
		p, err := export.OrbitFigure(result.States, xAxis, yAxis, export.Options{Title: name, Units: axisUnit(result, xAxis, yAxis)})
		if err != nil {
			return err
		}
		if err := export.Save(p, figure); err != nil {
			return err
		}
		row("figure", "%s", figure)
	}
	return nil
}

func printOrbitSummary(res *experiment.Result) {
	for i, m := range res.Metrics {
		fmt.Println()
		status := "successful"
		if res.Orbit != nil && i < len(res.Orbit.Results) {
			status = res.Orbit.Results[i].String()
		}
		if status != "successful" {
			status = warnStyle.Render(status)
		}
		row(fmt.Sprintf("orbit %d", i), "%s", status)
		if res.Orbit != nil && i < len(res.Orbit.Stats) {
			s := res.Orbit.Stats[i]
			row("  steps", "%d accepted, %d rejected", s.NumAccepted, s.NumRejected)
		}
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			row("  "+k, "%.6g", m[k])
		}
	}
	fmt.Println()
}

func radiusAndEnergy(f *fields.HamiltonianField, ts []float64, ys []diffeq.State) (r, e []float64) {
	r = make([]float64, len(ys))
	e = make([]float64, len(ys))
	for i, y := range ys {
		if !y.IsValid() {
			r[i], e[i] = math.NaN(), math.NaN()
			continue
		}
		r[i] = floats.Norm(y[:3], 2)
		var err error
		if e[i], err = f.Energy(ts[i], y); err != nil {
			e[i] = math.NaN()
		}
	}
	return r, e
}

// axisUnit labels the figure only when both axes share a unit.
func axisUnit(res *experiment.Result, x, y string) string {
	pos := func(a string) bool { return a == "x" || a == "y" || a == "z" }
	switch {
	case pos(x) && pos(y):
		return res.Units.Length().String()
	case !pos(x) && !pos(y):
		return res.Units.Length().String() + " / " + res.Units.Time().String()
	}
	return ""
}
