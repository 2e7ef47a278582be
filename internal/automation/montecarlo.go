package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/sim"
)

type MonteCarloConfig struct {
	Base *config.Config
	// Params lists the parameters to perturb. Empty means all of them.
	Params []string
	// Perturbation is the largest relative change, 0.1 for +-10%.
	Perturbation float64
	NumTrials    int
	Workers      int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	Params      map[string]float64
	Termination sim.Termination
	// Stable is false when the run was cut off or ended on a non-finite
	// recorded value.
	Stable bool
	Err    error
}

// RunMonteCarlo perturbs parameters uniformly around their base values.
// Trials are drawn from one seeded source before any run starts, so a seed
// reproduces the same trials however the runs are scheduled.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger *slog.Logger, opts ...sim.Option) ([]MonteCarloResult, error) {
	factory, simCfg, err := metered(registry, cfg.Base, opts...)
	if err != nil {
		return nil, err
	}

	base := factory().Params()
	names := cfg.Params
	if len(names) == 0 {
		for k := range base {
			names = append(names, k)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		if !base.Has(name) {
			return nil, fmt.Errorf("model %s has no parameter %q", cfg.Base.Model, name)
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	jobs := make([]sim.Job, cfg.NumTrials)
	trials := make([]map[string]float64, cfg.NumTrials)
	for trial := range jobs {
		params := make(map[string]float64, len(names))
		anyParams := make(map[string]any, len(names))
		for _, name := range names {
			v := base[name] * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
			params[name] = v
			anyParams[name] = v
		}
		trials[trial] = params
		jobs[trial] = sim.Job{Label: fmt.Sprintf("trial-%d", trial), Params: anyParams, Config: simCfg}
	}

	logger.Info("monte carlo started", "model", cfg.Base.Model, "trials", cfg.NumTrials, "seed", seed)
	outcomes, err := sim.NewEnsemble(factory, cfg.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = MonteCarloResult{TrialID: i, Params: trials[i], Err: o.Err}
		if o.Err != nil {
			continue
		}
		results[i].Termination = o.Result.Termination
		results[i].Stable = !o.Result.TerminatedEarly() && finiteState(o.Result)
	}
	return results, nil
}

func finiteState(r *sim.Result) bool {
	for _, k := range r.Trace.Keys() {
		if v, ok := r.Trace.Last(k); ok && !v.Valid {
			return false
		}
	}
	return true
}

// MonteCarloStats counts stable and unstable trials. Failed trials count
// as neither.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
		case r.Stable:
			stableCount++
		default:
			unstableCount++
		}
	}
	return
}

// Spread returns the smallest and largest value of a metric across trials.
func Spread(results []MonteCarloResult, values func(MonteCarloResult) float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		v := values(r)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
