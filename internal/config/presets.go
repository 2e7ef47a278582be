package config

import (
	"sort"

	"github.com/san-kum/popsim/internal/sim"
)

var Presets = map[string]map[string]*Config{
	"sir": {
		"classic": {
			Model: "sir", Integrator: "rk4", Dt: 0.1, Duration: 50,
			Params: map[string]any{"initPopulation": 1000, "initPrevalence": 1, "reproductionNumber": 3, "infectiousPeriod": 10},
		},
		"lockdown": {
			Model: "sir", Integrator: "rk4", Dt: 0.5, Duration: 200,
			Params: map[string]any{"reproductionNumber": 2.5},
			Interventions: []sim.Intervention{
				{At: 20, Params: map[string]float64{"reproductionNumber": 0.9}},
				{At: 80, Params: map[string]float64{"reproductionNumber": 1.3}},
			},
		},
		"measles": {
			Model: "sir", Integrator: "rk4", Dt: 0.1, Duration: 60,
			Params: map[string]any{"reproductionNumber": 15, "infectiousPeriod": 8, "initPrevalence": 10},
		},
	},
	"sis": {
		"endemic": {
			Model: "sis", Integrator: "rk4", Dt: 0.5, Duration: 300,
			Params: map[string]any{"reproductionNumber": 2},
		},
	},
	"seir": {
		"severe": {
			Model: "seir", Integrator: "rk4", Dt: 0.5, Duration: 200,
			Params: map[string]any{"caseFatality": 0.5},
		},
		"mild": {
			Model: "seir", Integrator: "rk4", Dt: 0.5, Duration: 200,
			Params: map[string]any{"caseFatality": 0.02, "reproductionNumber": 2},
		},
	},
	"seirs": {
		"seasonal": {
			Model: "seirs", Integrator: "rk4", Dt: 0.5, Duration: 300,
			Params: map[string]any{"immunityPeriod": 120},
		},
	},
	"ebola": {
		"more-beds": {
			Model: "ebola", Integrator: "rk4", Dt: 0.5, Duration: 200,
			Params: map[string]any{"hospitalCapacity": 30000, "ascerProb": 0.3},
		},
	},
	"predator-prey": {
		"cycle": {
			Model: "predator-prey", Integrator: "rk4", Dt: 0.1, Duration: 200,
		},
		"near-equilibrium": {
			Model: "predator-prey", Integrator: "rk4", Dt: 0.1, Duration: 200,
			Params: map[string]any{"initialPrey": 2.2, "initialPredator": 1.8},
		},
	},
	"fiscal-state": {
		"secular-cycle": {
			Model: "fiscal-state", Integrator: "euler", Dt: 1, Duration: 600,
		},
		"austere": {
			Model: "fiscal-state", Integrator: "euler", Dt: 1, Duration: 600,
			Params: map[string]any{"expenditurePerCapita": 0.1},
		},
	},
	"keen": {
		"stable": {
			Model: "keen", Integrator: "rk4", Dt: 0.05, Duration: 100, Cutoff: 1e6,
		},
		"minsky": {
			Model: "keen", Integrator: "rk4", Dt: 0.05, Duration: 300, Cutoff: 1e6,
			Params: map[string]any{"interestRateMultiplier": 0.1, "capitalAccelerator": 3},
		},
	},
	"elite": {
		"peaceful": {
			Model: "elite", Integrator: "rk4", Dt: 1, Duration: 400,
		},
		"weak-state": {
			Model: "elite", Integrator: "rk4", Dt: 1, Duration: 400,
			Params: map[string]any{"stateTaxRate": 0.3},
		},
	},
	"property": {
		"thirty-year": {
			Model: "property", Integrator: "rk4", Dt: 1, Duration: 30,
		},
		"cheap-money": {
			Model: "property", Integrator: "rk4", Dt: 1, Duration: 30,
			Params: map[string]any{"interestRate": 0.02},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
