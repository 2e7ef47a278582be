package models

import (
	"fmt"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/flow"
)

// epidemic seeds an infectious fraction into a susceptible population and
// derives its transfer rates from reproduction number and infectious period.
type epidemic struct {
	title        string
	compartments []string
	derive       func(p dynamo.Params)
	incidence    func(x dynamo.State, aux dynamo.Vars, p dynamo.Params) float64
	params       []dynamo.ParamSpec
}

func (e *epidemic) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	pop, prev := p["initPopulation"], p["initPrevalence"]
	if pop <= 0 {
		return nil, fmt.Errorf("%w: initPopulation must be positive, got %v", ErrInvalidParams, pop)
	}
	if prev < 0 || prev > pop {
		return nil, fmt.Errorf("%w: initPrevalence %v outside [0, %v]", ErrInvalidParams, prev, pop)
	}
	e.derive(p)

	x := make(dynamo.Vars, len(e.compartments))
	for _, k := range e.compartments {
		x[k] = 0
	}
	x["susceptible"] = pop - prev
	x["infectious"] = prev
	return x, nil
}

func (e *epidemic) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	pop := x.Sum()
	aux := dynamo.Vars{
		"population": pop,
		"rateForce":  p["contactRate"] / pop * x.Get("infectious"),
		"rn":         x.Get("susceptible") / pop * p["reproductionNumber"],
	}
	aux["incidence"] = e.incidence(x, aux, p)
	return aux
}

func (e *epidemic) DeriveParams(p dynamo.Params) { e.derive(p) }

func (e *epidemic) Title() string { return e.title }

func (e *epidemic) ParamSpecs() []dynamo.ParamSpec { return e.params }

func (e *epidemic) Charts() []dynamo.Chart {
	return []dynamo.Chart{
		{ID: "compartments", Title: "Compartments", Keys: e.compartments, XLabel: "days"},
		{ID: "rn", Title: "Effective Reproduction Number", Keys: []string{"rn"}, XLabel: "days"},
		{ID: "incidence", Title: "Incidence", Keys: []string{"incidence"}, XLabel: "days"},
	}
}

func infection(x dynamo.State, aux dynamo.Vars, p dynamo.Params) float64 {
	return aux["rateForce"] * x.Get("susceptible")
}

func deriveSIR(p dynamo.Params) {
	p["recoverRate"] = 1 / p["infectiousPeriod"]
	p["contactRate"] = p["reproductionNumber"] * p["recoverRate"]
}

func epiSpecs(p dynamo.Params, extra ...dynamo.ParamSpec) []dynamo.ParamSpec {
	base := []dynamo.ParamSpec{
		{Key: "reproductionNumber", Label: "R0", Max: 20, Interval: 0.1},
		{Key: "infectiousPeriod", Label: "Infectious Period (days)", Max: 100, Interval: 1},
	}
	base = append(base, extra...)
	base = append(base,
		dynamo.ParamSpec{Key: "initPrevalence", Label: "Prevalence", Max: 100000, Interval: 1},
		dynamo.ParamSpec{Key: "initPopulation", Label: "Initial Population", Max: 100000, Interval: 1},
	)
	return specs(p, base...)
}

func SIRDefaults() dynamo.Params {
	return dynamo.Params{
		"initPopulation":     50000,
		"initPrevalence":     3000,
		"reproductionNumber": 1.5,
		"infectiousPeriod":   10,
	}
}

// NewSIR is the susceptible-infectious-recovered model.
func NewSIR() *flow.Model {
	e := &epidemic{
		title:        "Susceptible Infectious Recovered",
		compartments: []string{"susceptible", "infectious", "recovered"},
		derive:       deriveSIR,
		incidence:    infection,
		params:       epiSpecs(SIRDefaults()),
	}
	return flow.New(e).
		AuxFlow("susceptible", "infectious", "rateForce").
		ParamFlow("infectious", "recovered", "recoverRate")
}

func SISDefaults() dynamo.Params { return SIRDefaults() }

// NewSIS returns recovered people straight to the susceptible pool.
func NewSIS() *flow.Model {
	e := &epidemic{
		title:        "Susceptible Infectious Susceptible",
		compartments: []string{"susceptible", "infectious"},
		derive:       deriveSIR,
		incidence:    infection,
		params:       epiSpecs(SISDefaults()),
	}
	return flow.New(e).
		AuxFlow("susceptible", "infectious", "rateForce").
		ParamFlow("infectious", "susceptible", "recoverRate")
}

func SEIRDefaults() dynamo.Params {
	return dynamo.Params{
		"initPopulation":     50000,
		"initPrevalence":     5000,
		"reproductionNumber": 4,
		"infectiousPeriod":   10,
		"caseFatality":       0.2,
		"period":             0.1,
		"incubation":         0.01,
	}
}

func deriveSEIR(p dynamo.Params) {
	p["deathRate"] = p["caseFatality"] / p["infectiousPeriod"]
	p["recoverRate"] = 1/p["infectiousPeriod"] - p["deathRate"]
	p["disDeath"] = p["caseFatality"] * p["period"]
	p["incubationRate"] = p["incubation"]
	p["contactRate"] = p["reproductionNumber"] * p["period"]
}

func latentIncidence(x dynamo.State, aux dynamo.Vars, p dynamo.Params) float64 {
	return p["incubationRate"] * x.Get("exposed")
}

// NewSEIR adds a latent stage and deaths. Disease deaths leave the
// population through a sink on the infectious compartment as well as
// into the dead compartment.
func NewSEIR() *flow.Model {
	e := &epidemic{
		title:        "Susceptible Exposed Infectious Recovered",
		compartments: []string{"susceptible", "exposed", "infectious", "recovered", "dead"},
		derive:       deriveSEIR,
		incidence:    latentIncidence,
		params: epiSpecs(SEIRDefaults(),
			dynamo.ParamSpec{Key: "caseFatality", Label: "Case-Fatality Rate", Max: 1, Interval: 0.01}),
	}
	return flow.New(e).
		AuxFlow("susceptible", "exposed", "rateForce").
		ParamFlow("exposed", "infectious", "incubationRate").
		ParamFlow("infectious", "infectious", "disDeath").
		ParamFlow("infectious", "recovered", "recoverRate").
		ParamFlow("infectious", "dead", "deathRate")
}

func SEIRSDefaults() dynamo.Params {
	p := SEIRDefaults()
	p["initPrevalence"] = 3000
	p["reproductionNumber"] = 50
	p["immunityPeriod"] = 50
	return p
}

func deriveSEIRS(p dynamo.Params) {
	deriveSEIR(p)
	p["immunityLossRate"] = 1 / p["immunityPeriod"]
}

// NewSEIRS is SEIR with waning immunity.
func NewSEIRS() *flow.Model {
	e := &epidemic{
		title:        "Susceptible Exposed Infectious Recovered Susceptible",
		compartments: []string{"susceptible", "exposed", "infectious", "recovered", "dead"},
		derive:       deriveSEIRS,
		incidence:    latentIncidence,
		params: epiSpecs(SEIRSDefaults(),
			dynamo.ParamSpec{Key: "caseFatality", Label: "Case-Fatality Rate", Max: 1, Interval: 0.01},
			dynamo.ParamSpec{Key: "immunityPeriod", Max: 300, Interval: 1}),
	}
	return flow.New(e).
		AuxFlow("susceptible", "exposed", "rateForce").
		ParamFlow("exposed", "infectious", "incubationRate").
		ParamFlow("infectious", "infectious", "disDeath").
		ParamFlow("infectious", "recovered", "recoverRate").
		ParamFlow("recovered", "susceptible", "immunityLossRate").
		ParamFlow("infectious", "dead", "deathRate")
}
