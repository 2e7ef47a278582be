package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/integrators"
	"github.com/san-kum/popsim/internal/solution"
)

// Simulator drives one model. It keeps the trace of its latest run and is
// not safe for concurrent use; run independent instances in parallel instead.
type Simulator struct {
	name     string
	model    dynamo.Model
	stepper  integrators.Stepper
	defaults dynamo.Params

	params dynamo.Params
	layout *dynamo.Layout
	trace  *solution.Trace
	axis   []float64

	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Simulator)

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// New builds a simulator with default parameters. A nil stepper means RK4.
func New(name string, m dynamo.Model, defaults dynamo.Params, stepper integrators.Stepper, opts ...Option) *Simulator {
	if stepper == nil {
		stepper = integrators.NewRK4()
	}
	s := &Simulator{
		name:     name,
		model:    m,
		stepper:  stepper,
		defaults: defaults.Clone(),
		trace:    solution.New(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Name() string                 { return s.name }
func (s *Simulator) Model() dynamo.Model          { return s.model }
func (s *Simulator) Stepper() integrators.Stepper { return s.stepper }
func (s *Simulator) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)       { s.observers = append(s.observers, o) }

// Params returns a copy of the defaults used by the next run.
func (s *Simulator) Params() dynamo.Params { return s.defaults.Clone() }

// RunParams returns the parameters of the latest run, derived values included.
func (s *Simulator) RunParams() dynamo.Params { return s.params.Clone() }

func (s *Simulator) Layout() *dynamo.Layout { return s.layout }
func (s *Simulator) Trace() *solution.Trace { return s.trace }

func (s *Simulator) Times() []float64 {
	n := s.trace.Len()
	if n > len(s.axis) {
		n = len(s.axis)
	}
	out := make([]float64, n)
	copy(out, s.axis[:n])
	return out
}

// SetParam overwrites one default. Only names the model already defines
// are accepted.
func (s *Simulator) SetParam(name string, v float64) error {
	if !s.defaults.Has(name) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, name)
	}
	s.defaults[name] = v
	return nil
}

// SetParams decodes loosely typed values, such as strings from a form or a
// command line, and overwrites the matching defaults. Nothing is changed
// unless every value decodes and every name is known.
func (s *Simulator) SetParams(values map[string]any) error {
	decoded := make(map[string]float64, len(values))
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	for name := range decoded {
		if !s.defaults.Has(name) {
			return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, name)
		}
	}
	for name, v := range decoded {
		s.defaults[name] = v
	}
	return nil
}

// Run initializes the model and steps it across the time axis. Every
// configuration or consistency error is returned before the trace is
// touched. Divergence is not an error: it ends the run with
// TerminatedCutoff.
func (s *Simulator) Run(cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	p := s.defaults.Clone()
	init, err := s.model.Initialize(p)
	if err != nil {
		return nil, fmt.Errorf("initialize %s: %w", s.name, err)
	}
	if len(init) == 0 {
		return nil, fmt.Errorf("%s: %w", s.name, dynamo.ErrEmptyState)
	}

	layout := dynamo.LayoutOf(init)
	y := layout.ToVector(init)
	x := layout.FromVector(y)
	aux := s.model.Auxiliaries(x, p)
	dx := s.model.Derivatives(x, aux, p)
	if !layout.Matches(dx) {
		return nil, &dynamo.ConsistencyError{
			Key:     s.name,
			Detail:  fmt.Sprintf("got %v, want %v", dx.Keys(), layout.Keys()),
			Wrapped: dynamo.ErrDerivativeKeys,
		}
	}
	if v, ok := s.model.(dynamo.Validator); ok {
		if err := v.Validate(x, aux, p); err != nil {
			return nil, err
		}
	}

	clamps, err := s.clamps(cfg, layout)
	if err != nil {
		return nil, err
	}
	pending, err := s.interventions(cfg, p)
	if err != nil {
		return nil, err
	}

	s.params = p
	s.layout = layout
	s.axis = Axis(cfg.Dt, cfg.Duration)
	s.trace.Reset()
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("run started",
		"model", s.name,
		"stepper", s.stepper.Name(),
		"dt", cfg.Dt,
		"duration", cfg.Duration,
		"steps", len(s.axis))

	f := func(t float64, vec []float64) []float64 {
		st := layout.FromVector(vec)
		a := s.model.Auxiliaries(st, p)
		d := s.model.Derivatives(st, a, p)
		for k, c := range clamps {
			if st.Get(k) <= c.Floor && d[k] < 0 {
				d[k] = 0
			}
		}
		return layout.ToVector(d)
	}

	result := &Result{Model: s.name, Metrics: make(map[string]float64)}
	for i, t := range s.axis {
		pending = s.applyDue(pending, t, p)

		y = s.stepper.Step(f, cfg.Dt, t, y)
		for k, c := range clamps {
			idx, _ := layout.Index(k)
			if y[idx] < c.Floor {
				y[idx] = c.Floor
			}
		}

		x = layout.FromVector(y)
		aux = s.model.Auxiliaries(x, p)
		s.trace.Record(aux, x.Vars())
		for _, m := range s.metrics {
			m.Observe(x, aux, t+cfg.Dt)
		}
		result.StepsTaken++

		if key, v, ok := exceeds(x, aux, cfg); ok {
			s.logger.Warn("run cut off",
				"model", s.name,
				"step", i,
				"t", t,
				"key", key,
				"value", v,
				"cutoff", cfg.Cutoff)
			result.Termination = TerminatedCutoff
			break
		}
	}

	result.Times = s.Times()
	result.Trace = s.trace.Clone()
	result.Params = p.Clone()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	elapsed := time.Since(start)
	s.logger.Debug("run finished",
		"model", s.name,
		"termination", result.Termination.String(),
		"steps", result.StepsTaken,
		"elapsed", elapsed)
	for _, o := range s.observers {
		o.ObserveRun(RunReport{
			Model:       s.name,
			Termination: result.Termination,
			StepsTaken:  result.StepsTaken,
			Elapsed:     elapsed,
		})
	}
	return result, nil
}

func (s *Simulator) clamps(cfg Config, layout *dynamo.Layout) (map[string]dynamo.Clamp, error) {
	out := make(map[string]dynamo.Clamp)
	if c, ok := s.model.(dynamo.Clamper); ok {
		for k, v := range c.Clamps() {
			out[k] = v
		}
	}
	for k, v := range cfg.Clamps {
		out[k] = v
	}
	for k := range out {
		if _, ok := layout.Index(k); !ok {
			return nil, &dynamo.ConsistencyError{Key: k, Detail: "clamp", Wrapped: dynamo.ErrUnknownCompartment}
		}
	}
	return out, nil
}

func (s *Simulator) interventions(cfg Config, p dynamo.Params) ([]Intervention, error) {
	out := make([]Intervention, len(cfg.Interventions))
	copy(out, cfg.Interventions)
	for _, iv := range out {
		for name := range iv.Params {
			if !p.Has(name) {
				return nil, fmt.Errorf("intervention at t=%v: %w: %q", iv.At, dynamo.ErrUnknownParam, name)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out, nil
}

// applyDue applies the interventions whose time has come and returns the rest.
func (s *Simulator) applyDue(pending []Intervention, t float64, p dynamo.Params) []Intervention {
	applied := 0
	for _, iv := range pending {
		if iv.At > t+1e-9 {
			break
		}
		for name, v := range iv.Params {
			p[name] = v
		}
		if d, ok := s.model.(dynamo.ParamDeriver); ok {
			d.DeriveParams(p)
		}
		s.logger.Info("intervention applied", "model", s.name, "t", t, "params", iv.Params)
		applied++
	}
	return pending[applied:]
}

func exceeds(x dynamo.State, aux dynamo.Vars, cfg Config) (string, float64, bool) {
	keys := x.Keys()
	for i, v := range x.Values() {
		if v > cfg.Cutoff {
			return keys[i], v, true
		}
	}
	if !cfg.CheckAuxiliaries {
		return "", 0, false
	}
	for _, k := range aux.Keys() {
		if v := aux[k]; v > cfg.Cutoff {
			return k, v, true
		}
	}
	return "", 0, false
}
