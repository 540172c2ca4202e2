// Package optim searches run-file parameters for the orbit that minimizes an
// objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/galdyn/internal/automation"
	"github.com/san-kum/galdyn/internal/config"
	"github.com/san-kum/galdyn/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no grid point gave a finite objective")

// Objective scores a run; lower is better. NaN marks a point to skip.
type Objective func(*experiment.Result) float64

// Metric scores a run by the named metric of its first orbit.
func Metric(name string) Objective {
	return func(r *experiment.Result) float64 {
		if len(r.Metrics) == 0 {
			return math.NaN()
		}
		v, ok := r.Metrics[0][name]
		if !ok {
			return math.NaN()
		}
		return v
	}
}

// Eccentricity scores a run by (r_apo − r_peri)/(r_apo + r_peri) of its
// first orbit, sampled at the saved times.
func Eccentricity() Objective {
	apo, peri := Metric("r_apo"), Metric("r_peri")
	return func(r *experiment.Result) float64 {
		a, p := apo(r), peri(r)
		return (a - p) / (a + p)
	}
}

// GridSearch tries every combination of Ranges, one range per target (see
// automation.Apply for target names).
type GridSearch struct {
	targets []string
	ranges  [][]float64
}

func NewGridSearch(targets []string, ranges [][]float64) *GridSearch {
	return &GridSearch{targets: targets, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs base at every grid point and returns the best point and its
// score. Errors abort the search; with throw disabled a failed orbit
// usually scores NaN and is skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (map[string]float64, float64, error) {
	if len(g.targets) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d targets but %d ranges", len(g.targets), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.targets) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := base.Clone()
		for k, v := range current {
			if err := automation.Apply(cfg, k, v); err != nil {
				return err
			}
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val := objective(result)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	target := g.targets[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[target] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
