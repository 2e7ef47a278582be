package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/sim"
)

const DefaultModel = "sir"

// Config is a run description as read from YAML. Zero numeric fields and an
// empty integrator fall back to the model's registered defaults.
type Config struct {
	Model            string                  `yaml:"model"`
	Integrator       string                  `yaml:"integrator,omitempty"`
	Dt               float64                 `yaml:"dt,omitempty"`
	Duration         float64                 `yaml:"duration,omitempty"`
	Cutoff           float64                 `yaml:"cutoff,omitempty"`
	CheckAuxiliaries bool                    `yaml:"check_auxiliaries,omitempty"`
	Params           map[string]any          `yaml:"params,omitempty"`
	Clamps           map[string]dynamo.Clamp `yaml:"clamps,omitempty"`
	Interventions    []sim.Intervention      `yaml:"interventions,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{Model: DefaultModel}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone copies cfg deeply enough that edits never reach shared presets.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	if c.Clamps != nil {
		out.Clamps = make(map[string]dynamo.Clamp, len(c.Clamps))
		for k, v := range c.Clamps {
			out.Clamps[k] = v
		}
	}
	if c.Interventions != nil {
		out.Interventions = make([]sim.Intervention, len(c.Interventions))
		for i, iv := range c.Interventions {
			params := make(map[string]float64, len(iv.Params))
			for k, v := range iv.Params {
				params[k] = v
			}
			out.Interventions[i] = sim.Intervention{At: iv.At, Params: params}
		}
	}
	return &out
}

// SetParam records an override, creating the map when needed.
func (c *Config) SetParam(name string, v any) {
	if c.Params == nil {
		c.Params = make(map[string]any)
	}
	c.Params[name] = v
}

// SimConfig converts the run settings. Callers fill zero fields from the
// model defaults first.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:               c.Dt,
		Duration:         c.Duration,
		Cutoff:           c.Cutoff,
		CheckAuxiliaries: c.CheckAuxiliaries,
		Clamps:           c.Clamps,
		Interventions:    c.Interventions,
	}
}
