package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/sim"
)

// ParameterSweep runs the base config once per evenly spaced value of one
// parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

type SweepResult struct {
	ParamValue  float64
	Termination sim.Termination
	StepsTaken  int
	// Final holds the last recorded value of every state and auxiliary key.
	Final   map[string]float64
	Metrics map[string]float64
	Err     error
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.ParamMin + float64(i)*step
	}
	return values
}

// RunSweep fans the sweep out over a sim.Ensemble. A value the model
// rejects is reported in its SweepResult and does not stop the others.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *slog.Logger, opts ...sim.Option) ([]SweepResult, error) {
	if sweep.ParamName == "" {
		return nil, fmt.Errorf("sweep needs a parameter name")
	}
	factory, simCfg, err := metered(registry, sweep.Base, opts...)
	if err != nil {
		return nil, err
	}
	if !factory().Params().Has(sweep.ParamName) {
		return nil, fmt.Errorf("model %s has no parameter %q", sweep.Base.Model, sweep.ParamName)
	}

	values := sweep.Values()
	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		jobs[i] = sim.Job{
			Label:  sweep.ParamName + "=" + strconv.FormatFloat(v, 'g', 6, 64),
			Params: map[string]any{sweep.ParamName: v},
			Config: simCfg,
		}
	}

	logger.Info("sweep started", "model", sweep.Base.Model, "param", sweep.ParamName, "runs", len(jobs))
	outcomes, err := sim.NewEnsemble(factory, sweep.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = SweepResult{ParamValue: values[i], Err: o.Err}
		if o.Err != nil {
			logger.Warn("sweep run failed", "label", o.Job.Label, "err", o.Err)
			continue
		}
		results[i].Termination = o.Result.Termination
		results[i].StepsTaken = o.Result.StepsTaken
		results[i].Final = finals(o.Result)
		results[i].Metrics = o.Result.Metrics
	}
	return results, nil
}

// metered wraps experiment.Factory so that every simulator carries the
// model's default metrics.
func metered(registry *experiment.Registry, cfg *config.Config, opts ...sim.Option) (func() *sim.Simulator, sim.Config, error) {
	factory, simCfg, err := experiment.Factory(registry, cfg, opts...)
	if err != nil {
		return nil, sim.Config{}, err
	}
	return func() *sim.Simulator {
		s := factory()
		for _, m := range registry.DefaultMetrics(cfg.Model) {
			s.AddMetric(m)
		}
		return s
	}, simCfg, nil
}

func finals(r *sim.Result) map[string]float64 {
	out := make(map[string]float64)
	for _, k := range r.Trace.Keys() {
		if v, ok := r.Trace.Last(k); ok {
			out[k] = v.Float()
		}
	}
	return out
}
