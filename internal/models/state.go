package models

import (
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// FiscalState is Turchin's demographic-fiscal model: a state's revenue
// raises the land's carrying capacity, and a population near that capacity
// leaves less surplus to tax.
type FiscalState struct {
	capacity Fn
}

func NewFiscalState() *FiscalState { return &FiscalState{} }

func FiscalStateDefaults() dynamo.Params {
	return dynamo.Params{
		"initialPopulation":          0.2,
		"maxSurplus":                 1,
		"tax":                        1,
		"populationGrowthRate":       0.02,
		"expenditurePerCapita":       0.25,
		"stateRevenueAtHalfCapacity": 10,
		"carryCapacityDiff":          3,
	}
}

func (m *FiscalState) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	m.DeriveParams(p)
	return dynamo.Vars{"population": p["initialPopulation"], "revenue": 0}, nil
}

// DeriveParams rebuilds the capacity curve from the current parameters.
func (m *FiscalState) DeriveParams(p dynamo.Params) {
	m.capacity = Approach(1, p["carryCapacityDiff"], p["stateRevenueAtHalfCapacity"])
}

func (m *FiscalState) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	capacity := m.capacity(math.Max(x.Get("revenue"), 0))
	return dynamo.Vars{
		"carryingCapacity": capacity,
		"surplus":          p["maxSurplus"] * (1 - x.Get("population")/capacity),
	}
}

func (m *FiscalState) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	pop := x.Get("population")
	return dynamo.Vars{
		"population": p["populationGrowthRate"] * pop * aux["surplus"],
		"revenue":    p["tax"]*pop*aux["surplus"] - p["expenditurePerCapita"]*pop,
	}
}

// Clamps keeps the treasury from going into debt.
func (m *FiscalState) Clamps() map[string]dynamo.Clamp {
	return map[string]dynamo.Clamp{"revenue": {Floor: 0}}
}

func (m *FiscalState) Title() string { return "Turchin Demographic Fiscal Model" }

func (m *FiscalState) ParamSpecs() []dynamo.ParamSpec {
	return specs(FiscalStateDefaults(),
		dynamo.ParamSpec{Key: "maxSurplus", Max: 2},
		dynamo.ParamSpec{Key: "tax", Max: 2},
		dynamo.ParamSpec{Key: "populationGrowthRate", Max: 0.1},
		dynamo.ParamSpec{Key: "expenditurePerCapita", Max: 1},
		dynamo.ParamSpec{Key: "stateRevenueAtHalfCapacity", Max: 50},
	)
}

// Charts includes the capacity curve itself. It is only available after
// Initialize has built it.
func (m *FiscalState) Charts() []dynamo.Chart {
	charts := []dynamo.Chart{
		{ID: "people", Title: "People", Keys: []string{"population", "carryingCapacity"}, XLabel: "year"},
		{ID: "surplus", Title: "Surplus", Keys: []string{"surplus"}, XLabel: "year"},
		{ID: "revenue", Title: "Revenue", Keys: []string{"revenue"}, XLabel: "year"},
	}
	if m.capacity != nil {
		charts = append(charts, dynamo.Chart{
			ID:     "carry-capacity",
			Title:  "Carrying Capacity Function",
			Fn:     m.capacity,
			Domain: [2]float64{0, 100},
			XLabel: "Revenue",
			YLabel: "Carrying Capacity",
		})
	}
	return charts
}
