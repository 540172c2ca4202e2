package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/galdyn/internal/config"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	// eval
	at     []float64
	atTime float64

	// orbit
	runName   string
	solver    string
	saveN     int
	figure    string
	xAxis     string
	yAxis     string
	progress  bool
	noStore   bool
	workers   int
	plotWidth int

	// show, analyze
	asJSON   bool
	lyapunov bool
	section  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "galdyn",
		Short:         "galactic potentials and orbit integration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			logrus.SetOutput(os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galdyn", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate a potential at a point",
		Args:  cobra.NoArgs,
		RunE:  evalPotential,
	}
	addSourceFlags(evalCmd)
	evalCmd.Flags().Float64SliceVar(&at, "at", []float64{8, 0, 0}, "position in the length unit of the run's unit system")
	evalCmd.Flags().Float64Var(&atTime, "t", 0, "time in the time unit of the run's unit system")

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "integrate orbits and store the run",
		Args:  cobra.NoArgs,
		RunE:  runOrbit,
	}
	addSourceFlags(orbitCmd)
	orbitCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or file name)")
	orbitCmd.Flags().StringVar(&solver, "solver", "", "override the solver")
	orbitCmd.Flags().IntVar(&saveN, "save-n", 0, "override the number of saved samples")
	orbitCmd.Flags().StringVar(&figure, "figure", "", "write an orbit projection figure (png, svg, pdf)")
	orbitCmd.Flags().StringVar(&xAxis, "x-axis", "x", "figure x axis")
	orbitCmd.Flags().StringVar(&yAxis, "y-axis", "y", "figure y axis")
	orbitCmd.Flags().BoolVar(&progress, "progress", false, "log integration progress (integrates one orbit at a time)")
	orbitCmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the run")
	orbitCmd.Flags().IntVar(&workers, "workers", 0, "concurrent solves (0 uses every CPU)")
	orbitCmd.Flags().IntVar(&plotWidth, "width", 80, "terminal plot width")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "export the run as JSON")
	showCmd.Flags().IntVar(&plotWidth, "width", 80, "terminal plot width")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "radial period, Lyapunov exponent and surface of section of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	analyzeCmd.Flags().StringVar(&section, "section", "", "state component whose upward zero crossings form a surface of section")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				kinds := make([]string, len(cfg.Potential))
				for i, c := range cfg.Potential {
					kinds[i] = c.Type
				}
				fmt.Printf("%s %s\n", labelStyle.Render(name), valueStyle.Render(strings.Join(kinds, " + ")))
			}
			return nil
		},
	}

	potentialsCmd := &cobra.Command{
		Use:   "potentials",
		Short: "list potential types and their parameters",
		Args:  cobra.NoArgs,
		RunE:  listPotentials,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [target]",
		Short: "run once per value of a run-file parameter",
		Long:  "Targets are potential.<component>.<param>, initial.q.<i>, initial.p.<i>, integration.t1, integration.rtol and integration.atol.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSourceFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "r_apo", "metric to report")
	sweepCmd.Flags().IntVar(&plotWidth, "width", 80, "terminal plot width")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial conditions at random and count bound orbits",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSourceFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	monteCarloCmd.Flags().Float64Var(&qPerturb, "dq", 0.1, "position perturbation in the run file's unit")
	monteCarloCmd.Flags().Float64Var(&pPerturb, "dp", 10, "momentum perturbation in the run file's unit")
	monteCarloCmd.Flags().IntVar(&plotWidth, "width", 80, "terminal plot width")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search run-file parameters for the lowest objective",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSourceFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "target=min:max:n, repeatable")
	tuneCmd.Flags().StringVar(&objective, "objective", "eccentricity", "eccentricity or a metric name")

	rootCmd.AddCommand(evalCmd, orbitCmd, runsCmd, showCmd, analyzeCmd, presetsCmd, potentialsCmd,
		sweepCmd, monteCarloCmd, scenarioCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "run file (yaml, yml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in run")
}

// loadConfig picks the preset, then the run file, then the defaults. It
// also returns a name for the run.
func loadConfig() (*config.Config, string, error) {
	switch {
	case preset != "" && configFile != "":
		return nil, "", fmt.Errorf("--preset and --config are exclusive")
	case preset != "":
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return cfg, preset, nil
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		name := strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		return cfg, name, nil
	}
	return config.DefaultConfig(), "default", nil
}
