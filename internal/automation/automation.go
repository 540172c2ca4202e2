// Package automation runs batches of experiments: scripted scenarios,
// parameter sweeps and Monte Carlo perturbations of the initial conditions.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/diffeq"
	"github.com/san-kum/galdyn/internal/experiment"
)

var ErrBatched = errors.New("automation: base run must have a single orbit")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a run file (relative to the scenario
// file) and applies Set on top, see Apply for the keys.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset,omitempty"`
	Config string             `yaml:"config,omitempty"`
	Set    map[string]float64 `yaml:"set,omitempty"`

	dir string
}

// StepResult pairs the run file a step resolved to with its output.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	for i := range scenario.Steps {
		scenario.Steps[i].dir = filepath.Dir(path)
	}

	return &scenario, nil
}

// Resolve builds the run file of a step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "" && s.Config != "":
		return nil, fmt.Errorf("step %s: preset and config are exclusive", s.Name)
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("step %s: unknown preset %q", s.Name, s.Preset)
		}
	case s.Config != "":
		path := s.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, fmt.Errorf("step %s: %w", s.Name, err)
		}
	default:
		cfg = config.DefaultConfig()
	}
	for target, v := range s.Set {
		if err := Apply(cfg, target, v); err != nil {
			return nil, fmt.Errorf("step %s: %w", s.Name, err)
		}
	}
	return cfg, nil
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, log logrus.FieldLogger) ([]StepResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.WithFields(logrus.Fields{"step": i + 1, "of": len(scenario.Steps), "name": step.Name}).Info("scenario step")

		cfg, err := step.Resolve()
		if err != nil {
			return results, err
		}
		result, err := run(ctx, cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, StepResult{Name: step.Name, Config: cfg, Result: result})
	}

	return results, nil
}

func run(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*experiment.Result, error) {
	exp := experiment.New(cfg)
	exp.Log = log
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// ParameterSweep runs Base once per value of Target, NumSteps values
// evenly spaced from Min to Max.
type ParameterSweep struct {
	Base     *config.Config
	Target   string
	Min      float64
	Max      float64
	NumSteps int
}

// SweepResult holds the per-orbit metrics and outcomes of one sweep value.
type SweepResult struct {
	Value   float64
	Metrics []map[string]float64
	Results []diffeq.Result
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, log logrus.FieldLogger) ([]SweepResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("automation: sweep needs at least one step, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		if err := Apply(cfg, sweep.Target, paramVal); err != nil {
			return nil, err
		}

		result, err := run(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Target, paramVal, err)
		}

		results = append(results, SweepResult{
			Value:   paramVal,
			Metrics: result.Metrics,
			Results: result.Orbit.Results,
		})

		log.WithFields(logrus.Fields{"step": i + 1, "of": sweep.NumSteps, sweep.Target: paramVal}).Info("sweep")
	}

	return results, nil
}

// MonteCarloConfig perturbs every initial position and momentum component
// of Base uniformly by up to ±QPerturbation and ±PPerturbation, in the
// units of the run file.
type MonteCarloConfig struct {
	Base          *config.Config
	QPerturbation float64
	PPerturbation float64
	NumTrials     int
	Seed          int64
}

// MonteCarloResult holds one trial. Energy is the initial specific energy
// in the run's unit system; Bound is Energy < 0, which holds for potentials
// that vanish at infinity.
type MonteCarloResult struct {
	TrialID    int
	Q, P       []float64
	Energy     float64
	Bound      bool
	Successful bool
	Metrics    map[string]float64
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log logrus.FieldLogger) ([]MonteCarloResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if len(cfg.Base.Initial.Q.Values) != 3 || len(cfg.Base.Initial.P.Values) != 3 {
		return nil, ErrBatched
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		runCfg := cfg.Base.Clone()
		for i := range runCfg.Initial.Q.Values {
			runCfg.Initial.Q.Values[i] += (rng.Float64() - 0.5) * 2 * cfg.QPerturbation
			runCfg.Initial.P.Values[i] += (rng.Float64() - 0.5) * 2 * cfg.PPerturbation
		}

		exp := experiment.New(runCfg)
		exp.Log = log
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		q, p, err := exp.Initial.ValuesIn(result.Units)
		if err != nil {
			return nil, err
		}
		energy, err := exp.Field.Energy(result.T0, diffeq.State{q[0], q[1], q[2], p[0], p[1], p[2]})
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID:    trial,
			Q:          runCfg.Initial.Q.Values,
			P:          runCfg.Initial.P.Values,
			Energy:     energy,
			Bound:      energy < 0 && !math.IsNaN(energy),
			Successful: !result.Orbit.Failed(),
			Metrics:    result.Metrics[0],
		})

		if (trial+1)%10 == 0 {
			log.WithFields(logrus.Fields{"done": trial + 1, "of": cfg.NumTrials}).Info("monte carlo")
		}
	}

	return results, nil
}

// MonteCarloStats counts bound and unbound trials.
func MonteCarloStats(results []MonteCarloResult) (bound int, unbound int) {
	for _, r := range results {
		if r.Bound {
			bound++
		} else {
			unbound++
		}
	}
	return
}
