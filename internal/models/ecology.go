package models

import "github.com/san-kum/popsim/internal/dynamo"

// PredatorPrey is the Lotka-Volterra system.
type PredatorPrey struct{}

func NewPredatorPrey() *PredatorPrey { return &PredatorPrey{} }

func PredatorPreyDefaults() dynamo.Params {
	return dynamo.Params{
		"initialPrey":       10,
		"initialPredator":   5,
		"preyGrowthRate":    0.2,
		"predationRate":     0.1,
		"digestionRate":     0.1,
		"predatorDeathRate": 0.2,
	}
}

func (m *PredatorPrey) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	return dynamo.Vars{"prey": p["initialPrey"], "predator": p["initialPredator"]}, nil
}

func (m *PredatorPrey) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	return dynamo.Vars{"encounters": x.Get("prey") * x.Get("predator")}
}

func (m *PredatorPrey) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	return dynamo.Vars{
		"prey":     p["preyGrowthRate"]*x.Get("prey") - p["predationRate"]*aux["encounters"],
		"predator": p["digestionRate"]*aux["encounters"] - p["predatorDeathRate"]*x.Get("predator"),
	}
}

func (m *PredatorPrey) Clamps() map[string]dynamo.Clamp {
	return map[string]dynamo.Clamp{"prey": {}, "predator": {}}
}

func (m *PredatorPrey) Title() string { return "Lotka Volterra Predator-Prey Model" }

func (m *PredatorPrey) ParamSpecs() []dynamo.ParamSpec {
	return specs(PredatorPreyDefaults(),
		dynamo.ParamSpec{Key: "initialPrey", Max: 20},
		dynamo.ParamSpec{Key: "initialPredator", Max: 20},
		dynamo.ParamSpec{Key: "preyGrowthRate", Max: 2},
		dynamo.ParamSpec{Key: "predationRate", Max: 2},
		dynamo.ParamSpec{Key: "predatorDeathRate", Max: 2},
		dynamo.ParamSpec{Key: "digestionRate", Max: 2},
	)
}

func (m *PredatorPrey) Charts() []dynamo.Chart {
	return []dynamo.Chart{
		{ID: "predator-prey", Title: "Ecology", Keys: []string{"predator", "prey"}, XLabel: "year"},
	}
}
