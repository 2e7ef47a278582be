package experiment

import (
	"fmt"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/integrators"
	"github.com/san-kum/popsim/internal/sim"
)

// Experiment is one configured run: a simulator and the settings to run it
// with, both resolved from a config against the registry.
type Experiment struct {
	cfg       *config.Config
	simCfg    sim.Config
	simulator *sim.Simulator
}

// plan is a config resolved against the registry: everything needed to
// build identical simulators without further lookups.
type plan struct {
	entry      Entry
	cfg        *config.Config
	newStepper func() integrators.Stepper
	params     dynamo.Params
}

// resolve fills missing integrator, dt, duration and cutoff from the
// model's registered defaults and checks cfg.Params against the model.
func resolve(reg *Registry, cfg *config.Config) (*plan, error) {
	entry, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	resolved := cfg.Clone()
	if resolved.Integrator == "" {
		resolved.Integrator = entry.Integrator
	}
	if resolved.Dt == 0 {
		resolved.Dt = entry.Dt
	}
	if resolved.Duration == 0 {
		resolved.Duration = entry.Duration
	}
	if resolved.Cutoff == 0 {
		resolved.Cutoff = entry.Cutoff
	}

	newStepper, err := reg.GetIntegrator(resolved.Integrator)
	if err != nil {
		return nil, err
	}

	check := sim.New(entry.Name, entry.New(), entry.Defaults(), nil)
	if err := check.SetParams(resolved.Params); err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}

	return &plan{entry: entry, cfg: resolved, newStepper: newStepper, params: check.Params()}, nil
}

func (p *plan) build(opts ...sim.Option) *sim.Simulator {
	return sim.New(p.entry.Name, p.entry.New(), p.params, p.newStepper(), opts...)
}

// New resolves cfg and builds its simulator.
func New(reg *Registry, cfg *config.Config, opts ...sim.Option) (*Experiment, error) {
	p, err := resolve(reg, cfg)
	if err != nil {
		return nil, err
	}
	return &Experiment{cfg: p.cfg, simCfg: p.cfg.SimConfig(), simulator: p.build(opts...)}, nil
}

func (e *Experiment) Run() (*sim.Result, error) {
	return e.simulator.Run(e.simCfg)
}

// Config returns the resolved config.
func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) SimConfig() sim.Config { return e.simCfg }

// GetSimulator returns the underlying simulator for adding metrics and observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Factory returns a constructor of fresh, identically configured
// simulators, as needed by sim.Ensemble. All lookups and parameter checks
// happen here, so the constructor itself cannot fail.
func Factory(reg *Registry, cfg *config.Config, opts ...sim.Option) (func() *sim.Simulator, sim.Config, error) {
	p, err := resolve(reg, cfg)
	if err != nil {
		return nil, sim.Config{}, err
	}
	return func() *sim.Simulator { return p.build(opts...) }, p.cfg.SimConfig(), nil
}
