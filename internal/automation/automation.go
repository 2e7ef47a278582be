// Package automation runs batches: scripted scenarios, parameter sweeps and
// Monte Carlo perturbation of model parameters.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/sim"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

type ScenarioRun struct {
	Label         string `yaml:"label"`
	config.Config `yaml:",inline"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// ScenarioResult is one finished run of a scenario.
type ScenarioResult struct {
	Label  string
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes the runs in order and stops at the first failure.
// The results of the runs before it are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger, opts ...sim.Option) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		label := run.Label
		if label == "" {
			label = fmt.Sprintf("%s#%d", run.Model, i+1)
		}
		logger.Info("scenario run", "scenario", scenario.Name, "run", i+1, "of", len(scenario.Runs), "label", label)

		cfg := run.Config
		exp, err := experiment.New(registry, &cfg, opts...)
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, label, err)
		}

		result, err := exp.Run()
		if err != nil {
			return results, fmt.Errorf("run %d (%s): %w", i+1, label, err)
		}

		results = append(results, ScenarioResult{Label: label, Config: exp.Config(), Result: result})
	}

	return results, nil
}
