package models

import (
	"fmt"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Keen is Steve Keen's model of a Minsky debt cycle: firms borrow to invest
// when profitable, wages rise with employment, and interest on the debt
// eats into profit.
type Keen struct {
	wageChange       Fn
	investmentChange Fn
}

func NewKeen() *Keen { return &Keen{} }

func KeenDefaults() dynamo.Params {
	return dynamo.Params{
		"initialEmployedFraction": 0.9,
		"initialPopulation":       100,
		"initialWageShare":        0.95,
		"productivityExponent":    0.015,
		"populationExponent":      0.035,
		"depreciationRate":        0.02,
		"capitalAccelerator":      2,
		"initialInterestRate":     0.05,
		"interestRateMultiplier":  0,
		"wX":                      0.95,
		"wY":                      0,
		"wS":                      0.5,
		"wYMin":                   -0.01,
	}
}

func (m *Keen) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	if p["capitalAccelerator"] <= 0 {
		return nil, fmt.Errorf("%w: capitalAccelerator must be positive", ErrInvalidParams)
	}
	m.DeriveParams(p)

	const productivity = 1
	employed := p["initialEmployedFraction"] * p["initialPopulation"]
	output := employed * productivity
	return dynamo.Vars{
		"capital":      p["capitalAccelerator"] * output,
		"debt":         0,
		"population":   p["initialPopulation"],
		"productivity": productivity,
		"wage":         p["initialWageShare"] * output / employed,
	}, nil
}

// DeriveParams builds the wage and investment response curves. Both are
// capped so that a runaway employment or profit rate cannot blow them up.
func (m *Keen) DeriveParams(p dynamo.Params) {
	m.wageChange = Capped(Exponential(p["wX"], p["wY"], p["wS"], p["wYMin"]), 1.05)
	m.investmentChange = Capped(InverseSquare(0.0175, 0.53, 6, 0.065), 0.1)
}

func (m *Keen) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	capital, debt := x.Get("capital"), x.Get("debt")

	output := capital / p["capitalAccelerator"]
	employed := output / x.Get("productivity")
	debtRatio := debt / output
	interestRate := p["initialInterestRate"] + p["interestRateMultiplier"]*debtRatio
	bank := interestRate * debt
	wages := employed * x.Get("wage")
	profit := output - wages - bank
	profitRate := profit / capital
	investmentChange := m.investmentChange(profitRate)
	investment := investmentChange * output
	employedFraction := employed / x.Get("population")

	return dynamo.Vars{
		"output":           output,
		"employed":         employed,
		"debtRatio":        debtRatio,
		"interestRate":     interestRate,
		"bank":             bank,
		"wages":            wages,
		"profit":           profit,
		"wageShare":        wages / output,
		"bankShare":        bank / output,
		"profitShare":      profit / output,
		"profitRate":       profitRate,
		"investmentChange": investmentChange,
		"investment":       investment,
		"borrow":           investment - profit,
		"employedFraction": employedFraction,
		"wageChange":       m.wageChange(employedFraction),
	}
}

func (m *Keen) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	return dynamo.Vars{
		"productivity": p["productivityExponent"] * x.Get("productivity"),
		"population":   p["populationExponent"] * x.Get("population"),
		"wage":         aux["wageChange"] * x.Get("wage"),
		"debt":         aux["interestRate"]*x.Get("debt") + aux["borrow"],
		"capital":      aux["investment"] - p["depreciationRate"]*x.Get("capital"),
	}
}

func (m *Keen) Title() string { return "Keen Model" }

func (m *Keen) ParamSpecs() []dynamo.ParamSpec {
	return specs(KeenDefaults(),
		dynamo.ParamSpec{Key: "initialEmployedFraction", Label: "Initial Fraction Employed", Max: 1, Interval: 0.01},
		dynamo.ParamSpec{Key: "productivityExponent", Label: "Productivity Constant", Max: 0.1, Interval: 0.001},
		dynamo.ParamSpec{Key: "populationExponent", Label: "Growth Rate", Max: 0.2, Interval: 0.005},
		dynamo.ParamSpec{Key: "capitalAccelerator", Max: 10, Interval: 0.1},
		dynamo.ParamSpec{Key: "depreciationRate", Max: 0.1, Interval: 0.001},
		dynamo.ParamSpec{Key: "initialInterestRate", Label: "Base Interest Rate", Max: 0.2, Interval: 0.01},
		dynamo.ParamSpec{Key: "interestRateMultiplier", Label: "Interest Multiplier", Max: 0.2, Interval: 0.01},
	)
}

func (m *Keen) Charts() []dynamo.Chart {
	charts := []dynamo.Chart{
		{ID: "income", Title: "Income", Keys: []string{"output", "bank", "wages", "profit"}, XLabel: "years"},
		{ID: "capital", Title: "Capital", Keys: []string{"debt", "capital", "output"}, XLabel: "years"},
		{ID: "share", Title: "Share", Keys: []string{"wageShare", "profitShare", "bankShare"}, XLabel: "years"},
		{ID: "population", Title: "Population", Keys: []string{"population", "employed"}, XLabel: "years"},
		{ID: "wage", Title: "Wage Change", Keys: []string{"wage", "wageChange"}, XLabel: "years"},
		{ID: "investment", Title: "Investment", Keys: []string{"profit", "investment", "borrow"}, XLabel: "years"},
	}
	if m.wageChange != nil {
		charts = append(charts,
			dynamo.Chart{ID: "wage-fn", Title: "Wage Function", Fn: m.wageChange, Domain: [2]float64{0.8, 1.1}, XLabel: "Employed Fraction", YLabel: "Wage Change"},
			dynamo.Chart{ID: "investment-fn", Title: "Investment Function", Fn: m.investmentChange, Domain: [2]float64{-0.05, 0.15}, XLabel: "Profit Rate", YLabel: "Investment Change"},
		)
	}
	return charts
}
