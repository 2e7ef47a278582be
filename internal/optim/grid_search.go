// Package optim searches parameter grids for the run that optimises a metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
)

var ErrNoRuns = errors.New("no grid point produced the metric")

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

func (g Goal) better(v, best float64) bool {
	if g == Maximize {
		return v > best
	}
	return v < best
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	goal       Goal
}

func NewGridSearch(params []string, ranges [][]float64, goal Goal) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("param %s has an empty range", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, goal: goal}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

type Best struct {
	Params map[string]float64
	Value  float64
	// Evaluated counts the grid points that produced a finite metric.
	Evaluated int
}

// Search runs every grid point in order. Points whose experiment fails to
// build or run, or whose metric is missing or non-finite, are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (Best, error) {
	best := Best{Value: math.Inf(1)}
	if g.goal == Maximize {
		best.Value = math.Inf(-1)
	}

	idx := make([]int, len(g.paramNames))
	for {
		if err := ctx.Err(); err != nil {
			return best, err
		}

		point := make(map[string]float64, len(idx))
		for d, i := range idx {
			point[g.paramNames[d]] = g.ranges[d][i]
		}

		if v, ok := evaluate(buildExperiment, point, metricName); ok {
			best.Evaluated++
			if best.Params == nil || g.goal.better(v, best.Value) {
				best.Value = v
				best.Params = point
			}
		}

		if !g.advance(idx) {
			break
		}
	}

	if best.Params == nil {
		return best, fmt.Errorf("%s: %w", metricName, ErrNoRuns)
	}
	return best, nil
}

// advance moves idx to the next grid point, last parameter fastest.
func (g *GridSearch) advance(idx []int) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < len(g.ranges[d]) {
			return true
		}
		idx[d] = 0
	}
	return false
}

func evaluate(build func(map[string]float64) (*experiment.Experiment, error), point map[string]float64, metricName string) (float64, bool) {
	exp, err := build(point)
	if err != nil {
		return 0, false
	}
	result, err := exp.Run()
	if err != nil {
		return 0, false
	}
	v, ok := result.Metrics[metricName]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Builder returns a buildExperiment func that overlays each grid point on
// base and attaches the model's default metrics.
func Builder(reg *experiment.Registry, base *config.Config) func(map[string]float64) (*experiment.Experiment, error) {
	return func(point map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range point {
			cfg.SetParam(k, v)
		}
		exp, err := experiment.New(reg, cfg)
		if err != nil {
			return nil, err
		}
		for _, m := range reg.DefaultMetrics(cfg.Model) {
			exp.GetSimulator().AddMetric(m)
		}
		return exp, nil
	}
}
