package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one parameter set of a batch.
type Job struct {
	Label  string
	Params map[string]any
	Config Config
}

// Outcome pairs a job with its result. Err is set when the job's parameters
// were rejected or the run failed; it never aborts the rest of the batch.
type Outcome struct {
	Job    Job
	Result *Result
	Err    error
}

// Ensemble runs a batch of jobs, each on a fresh simulator.
type Ensemble struct {
	factory func() *Simulator
	workers int
}

// NewEnsemble uses factory to build one simulator per job. workers <= 0
// means one per CPU.
func NewEnsemble(factory func() *Simulator, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{factory: factory, workers: workers}
}

// Run blocks until every job has run or ctx is done. Cancellation is only
// observed between runs; outcomes of jobs that never started are left with
// a nil Result and the context error.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i].Job = job
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range jobs {
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[idx].Err = err
				return err
			}
			s := e.factory()
			if err := s.SetParams(jobs[idx].Params); err != nil {
				outcomes[idx].Err = err
				return nil
			}
			outcomes[idx].Result, outcomes[idx].Err = s.Run(jobs[idx].Config)
			return nil
		})
	}
	err := g.Wait()
	return outcomes, err
}
