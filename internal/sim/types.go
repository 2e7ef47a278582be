package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/solution"
)

// DefaultCutoff is the divergence ceiling used when Config.Cutoff is zero.
const DefaultCutoff = 1e10

// Metric accumulates a scalar over the recorded steps of a run.
// Metric summarises a run. Observe sees every recorded step; t is the time
// the observed state belongs to, one dt after the axis point of its row.
type Metric interface {
	Name() string
	Observe(x dynamo.State, aux dynamo.Vars, t float64)
	Value() float64
	Reset()
}

// Observer is told about every finished run.
type Observer interface {
	ObserveRun(r RunReport)
}

type RunReport struct {
	Model       string
	Termination Termination
	StepsTaken  int
	Elapsed     time.Duration
}

// Intervention overwrites parameters once the run reaches At.
type Intervention struct {
	At     float64            `yaml:"at" json:"at"`
	Params map[string]float64 `yaml:"params" json:"params"`
}

type Config struct {
	Dt       float64
	Duration float64
	// Cutoff stops the run once a checked value exceeds it.
	Cutoff           float64
	CheckAuxiliaries bool
	// Clamps extend and override the floors declared by the model.
	Clamps        map[string]dynamo.Clamp
	Interventions []Intervention
}

func (c Config) withDefaults() Config {
	if c.Cutoff == 0 {
		c.Cutoff = DefaultCutoff
	}
	return c
}

func (c Config) validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidConfig, c.Dt)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}
	if !(c.Cutoff > 0) {
		return fmt.Errorf("%w: cutoff must be positive, got %v", dynamo.ErrInvalidConfig, c.Cutoff)
	}
	return nil
}

// Axis returns the time points 0, dt, 2dt, ... strictly below duration.
func Axis(dt, duration float64) []float64 {
	n := int(math.Ceil(duration/dt - 1e-9))
	if n < 0 {
		n = 0
	}
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(i) * dt
	}
	return axis
}

type Termination int

const (
	TerminatedNormal Termination = iota
	TerminatedCutoff
)

func (t Termination) String() string {
	switch t {
	case TerminatedNormal:
		return "normal"
	case TerminatedCutoff:
		return "cutoff"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

type Result struct {
	Model string
	// Times holds the axis point of every recorded step.
	Times       []float64
	Trace       *solution.Trace
	Termination Termination
	StepsTaken  int
	Metrics     map[string]float64
	// Params are the run parameters, derived values included.
	Params dynamo.Params
}

func (r *Result) TerminatedEarly() bool {
	return r.Termination == TerminatedCutoff
}
