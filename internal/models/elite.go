package models

import (
	"math"
	"sort"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Elite is Turchin's elite-state model. Elites extract product from
// producers and fight among themselves; a state funded by elite growth
// raises productivity and keeps the elites at peace.
type Elite struct {
	prodDecline Fn
}

func NewElite() *Elite { return &Elite{} }

func EliteDefaults() dynamo.Params {
	return dynamo.Params{
		"maxProductionRate":     2,
		"producerBirth":         0.02,
		"producerDeath":         0.02,
		"eliteBirth":            0.05,
		"maxEliteDeath":         0.12,
		"eliteAtHalfExtraction": 0.3,
		"stateAtHalfPeace":      0.3,
		"stateAtHalfCarry":      0.07,
		"initProdDecline":       0.5,
		"finalStateProdDecline": 0.2,
		"stateTaxRate":          1,
		"stateEmploymentRate":   0.01,
		"initProducer":          0.5,
		"initElite":             0.02,
		"initState":             0,
	}
}

func (m *Elite) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	m.DeriveParams(p)
	return dynamo.Vars{
		"producer": p["initProducer"],
		"elite":    p["initElite"],
		"state":    p["initState"],
	}, nil
}

// DeriveParams rebuilds the production decline curve, which falls from
// initProdDecline towards finalStateProdDecline as the state grows.
func (m *Elite) DeriveParams(p dynamo.Params) {
	m.prodDecline = Approach(p["initProdDecline"],
		p["finalStateProdDecline"]-p["initProdDecline"], p["stateAtHalfCarry"])
}

func (m *Elite) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	producer, elite, state := x.Get("producer"), x.Get("elite"), x.Get("state")

	decline := m.prodDecline(math.Max(state, 0))
	total := producer * p["maxProductionRate"] * (1 - decline*producer)
	eliteShare := total * elite / (p["eliteAtHalfExtraction"] + elite)
	producerShare := total - eliteShare
	deathRate := p["maxEliteDeath"] * (1 - state/(p["stateAtHalfPeace"]+state))
	carry := (p["maxProductionRate"]*p["producerBirth"] - p["producerDeath"]) /
		decline / p["maxProductionRate"] / p["producerBirth"]

	return dynamo.Vars{
		"prodDecline":        decline,
		"totalProduct":       total,
		"eliteShare":         eliteShare,
		"producerShare":      producerShare,
		"carry":              carry,
		"eliteDeathRate":     deathRate,
		"eliteDeath":         elite * deathRate,
		"productPerElite":    eliteShare / elite,
		"productPerProducer": producerShare / producer,
	}
}

// Derivatives taxes elite growth into the state, which pays for its own
// employment but never goes below zero.
func (m *Elite) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	dElite := p["eliteBirth"]*aux["eliteShare"] - aux["eliteDeath"]

	dState := -p["stateEmploymentRate"] * x.Get("elite")
	if dElite > 0 {
		dState += p["stateTaxRate"] * dElite
	}
	if x.Get("state")+dState < 0 {
		dState = -x.Get("state")
	}

	return dynamo.Vars{
		"producer": p["producerBirth"]*aux["producerShare"] - p["producerDeath"]*x.Get("producer"),
		"elite":    dElite,
		"state":    dState,
	}
}

func (m *Elite) Clamps() map[string]dynamo.Clamp {
	return map[string]dynamo.Clamp{"state": {Floor: 0}}
}

func (m *Elite) Title() string { return "Turchin Elite Model" }

// ParamSpecs allows every parameter up to five times its default.
func (m *Elite) ParamSpecs() []dynamo.ParamSpec {
	defaults := EliteDefaults()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	in := make([]dynamo.ParamSpec, len(keys))
	for i, k := range keys {
		hi := 5 * defaults[k]
		if hi <= 0 {
			hi = 1
		}
		in[i] = dynamo.ParamSpec{Key: k, Max: hi}
	}
	return specs(defaults, in...)
}

func (m *Elite) Charts() []dynamo.Chart {
	charts := []dynamo.Chart{
		{ID: "people", Title: "People", Keys: []string{"producer", "elite", "state"}, XLabel: "year"},
		{ID: "production", Title: "Production Rate", Keys: []string{"producerShare", "eliteShare", "totalProduct"}, XLabel: "year"},
		{ID: "earnings", Title: "Earnings Per Capita", Keys: []string{"productPerProducer", "productPerElite"}, XLabel: "year"},
		{ID: "state-producer", Title: "State Action on Producer Capacity", Keys: []string{"producer", "carry", "state"}, XLabel: "year"},
		{ID: "state-elite", Title: "State Action on Elites", Keys: []string{"eliteDeathRate", "eliteDeath", "state"}, XLabel: "year"},
	}
	if m.prodDecline != nil {
		charts = append(charts, dynamo.Chart{
			ID:     "prod-decline",
			Title:  "Production Decline Function",
			Fn:     m.prodDecline,
			Domain: [2]float64{0, 1},
			XLabel: "State",
			YLabel: "Production Decline",
		})
	}
	return charts
}
