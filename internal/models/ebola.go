package models

import (
	"fmt"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/flow"
)

// ebola tracks early infection, hospitalisation against a bed capacity and
// unburied dead that keep transmitting.
type ebola struct{}

func EbolaDefaults() dynamo.Params {
	return dynamo.Params{
		"initPopulation":   50000,
		"initPrevalence":   5000,
		"reproduction":     10,
		"foiZero":          0.1,
		"foiTwo":           0.02,
		"foiThree":         0.2,
		"latency":          0.1,
		"preDetection":     0.25,
		"postDetection":    0.16,
		"ascerProb":        0.05,
		"hospitalCapacity": 10000,
		"caseFatalityHosp": 0.35,
		"caseFatality":     0.7,
		"preBurialPeriod":  3,
	}
}

func (ebola) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	pop, prev := p["initPopulation"], p["initPrevalence"]
	if pop <= 0 || prev < 0 || prev > pop {
		return nil, fmt.Errorf("%w: initPrevalence %v, initPopulation %v", ErrInvalidParams, prev, pop)
	}
	if p["hospitalCapacity"] <= 0 {
		return nil, fmt.Errorf("%w: hospitalCapacity must be positive", ErrInvalidParams)
	}
	ebola{}.DeriveParams(p)
	return dynamo.Vars{
		"susceptible":   pop - prev,
		"exposed":       0,
		"infectedEarly": 0,
		"infectious":    prev,
		"hospitalised":  0,
		"recovered":     0,
		"dead":          0,
		"buried":        0,
	}, nil
}

func (ebola) DeriveParams(p dynamo.Params) {
	p["incubationRate"] = p["latency"]
	p["recoverRate1"] = (1 - p["caseFatality"]) * p["postDetection"]
	p["recoverRate2"] = (1 - p["caseFatalityHosp"]) * p["postDetection"]
	p["deathRate1"] = p["caseFatality"] * p["postDetection"]
	p["deathRate2"] = p["caseFatalityHosp"] * p["postDetection"]
	p["burialRate"] = 1 / p["preBurialPeriod"]

	asc := p["ascerProb"]
	p["foi"] = p["preDetection"] * (p["reproduction"] -
		(p["foiZero"]*(1-asc)+p["foiTwo"]*asc)/p["postDetection"] -
		p["foiThree"]*(p["caseFatalityHosp"]*(1-asc)+p["caseFatality"]*asc)*p["preBurialPeriod"])
}

func (ebola) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	pop := x.Sum()
	free := 1 - x.Get("hospitalised")/p["hospitalCapacity"]
	return dynamo.Vars{
		"population": pop,
		"rateForce": (p["foi"]*x.Get("infectious") +
			p["foiZero"]*x.Get("infectedEarly") +
			p["foiTwo"]*x.Get("hospitalised") +
			p["foiThree"]*x.Get("dead")) / pop,
		"rateForce1": (1 - p["ascerProb"]*free) * p["preDetection"],
		"rateForce2": p["ascerProb"] * free * p["preDetection"],
	}
}

func (ebola) Title() string { return "Ebola" }

func (ebola) ParamSpecs() []dynamo.ParamSpec {
	return specs(EbolaDefaults(),
		dynamo.ParamSpec{Key: "reproduction", Label: "R0", Max: 20, Interval: 0.1},
		dynamo.ParamSpec{Key: "ascerProb", Label: "Fraction Isolated During Incubation", Max: 1, Interval: 0.01},
		dynamo.ParamSpec{Key: "hospitalCapacity", Label: "Hospital Capacity (isolation beds)", Max: 50000, Interval: 1},
		dynamo.ParamSpec{Key: "caseFatalityHosp", Label: "Case Fatality in Hospital", Max: 1, Interval: 0.01},
		dynamo.ParamSpec{Key: "preBurialPeriod", Label: "Burial Period (days)", Max: 20, Interval: 1},
		dynamo.ParamSpec{Key: "initPrevalence", Label: "Prevalence", Max: 100000, Interval: 1},
		dynamo.ParamSpec{Key: "initPopulation", Label: "Initial Population", Max: 100000, Interval: 1},
	)
}

func (ebola) Charts() []dynamo.Chart {
	return []dynamo.Chart{
		{ID: "compartments", Title: "Compartments", Keys: []string{"susceptible", "exposed", "infectious", "recovered"}, XLabel: "days"},
		{ID: "care", Title: "Hospital and Burial", Keys: []string{"hospitalised", "dead", "buried"}, XLabel: "days"},
	}
}

func NewEbola() *flow.Model {
	return flow.New(ebola{}).
		AuxFlow("susceptible", "exposed", "rateForce").
		ParamFlow("exposed", "infectedEarly", "incubationRate").
		AuxFlow("infectedEarly", "infectious", "rateForce1").
		AuxFlow("infectedEarly", "hospitalised", "rateForce2").
		ParamFlow("infectious", "recovered", "recoverRate1").
		ParamFlow("hospitalised", "recovered", "recoverRate2").
		ParamFlow("infectious", "dead", "deathRate1").
		ParamFlow("hospitalised", "dead", "deathRate2").
		ParamFlow("dead", "buried", "burialRate")
}
