package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/galdyn/internal/automation"
	"github.com/san-kum/galdyn/internal/optim"
	"github.com/san-kum/galdyn/internal/storage"
)

var (
	sweepMin, sweepMax float64
	sweepSteps         int
	sweepMetric        string
	trials             int
	seed               int64
	qPerturb, pPerturb float64
	grid               []string
	objective          string
)

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Target:   args[0],
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}, logrus.StandardLogger())
	if err != nil {
		return err
	}

	header(fmt.Sprintf("%s: sweep of %s", name, args[0]))
	values := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tORBIT\tRESULT\t%s\n", strings.ToUpper(args[0]), strings.ToUpper(sweepMetric))
	for i, r := range results {
		for j, m := range r.Metrics {
			fmt.Fprintf(w, "%g\t%d\t%s\t%.6g\n", r.Value, j, r.Results[j], m[sweepMetric])
		}
		values[i] = r.Metrics[0][sweepMetric]
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(values) > 1 {
		graph(fmt.Sprintf("%s of orbit 0 against %s", sweepMetric, args[0]), plotWidth, values)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:          cfg,
		QPerturbation: qPerturb,
		PPerturbation: pPerturb,
		NumTrials:     trials,
		Seed:          seed,
	}, logrus.StandardLogger())
	if err != nil {
		return err
	}

	header(fmt.Sprintf("%s: %d trials", name, len(results)))
	bound, unbound := automation.MonteCarloStats(results)
	row("bound", "%d", bound)
	row("unbound", "%d", unbound)
	failed := 0
	energies := make([]float64, len(results))
	for i, r := range results {
		if !r.Successful {
			failed++
		}
		energies[i] = r.Energy
	}
	if failed > 0 {
		row("failed", "%s", warnStyle.Render(strconv.Itoa(failed)))
	}
	sort.Float64s(energies)
	if len(energies) > 1 {
		graph("initial energy, sorted", plotWidth, energies)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, logrus.StandardLogger())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	header(fmt.Sprintf("scenario %s", sc.Name))
	for _, r := range results {
		runID, err := st.Save(r.Name, r.Config, r.Result)
		if err != nil {
			return err
		}
		row(r.Name, "%s", runID)
	}
	return nil
}

// parseGrid reads target=min:max:n.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	targets := make([]string, len(specs))
	ranges := make([][]float64, len(specs))
	for i, spec := range specs {
		target, rng, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid %q: want target=min:max:n", spec)
		}
		parts := strings.Split(rng, ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %q: want target=min:max:n", spec)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("grid %q: bad count %q", spec, parts[2])
		}
		vals := make([]float64, n)
		for j := range vals {
			vals[j] = lo
			if n > 1 {
				vals[j] = lo + (hi-lo)*float64(j)/float64(n-1)
			}
		}
		targets[i], ranges[i] = target, vals
	}
	return targets, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig()
	if err != nil {
		return err
	}
	targets, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	obj := optim.Metric(objective)
	if objective == "eccentricity" {
		obj = optim.Eccentricity()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(targets, ranges)
	logrus.WithField("points", g.Size()).Info("grid search")
	best, score, err := g.Search(ctx, cfg, obj)
	if err != nil {
		return err
	}

	header(fmt.Sprintf("%s: minimum %s = %.6g", name, objective, score))
	for _, t := range targets {
		row(t, "%g", best[t])
	}
	return nil
}
