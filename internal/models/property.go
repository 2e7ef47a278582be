package models

import (
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Property compares buying a house on a mortgage with renting and putting
// the same yearly payment into an investment fund.
type Property struct{}

func NewProperty() *Property { return &Property{} }

func PropertyDefaults() dynamo.Params {
	return dynamo.Params{
		"initialProperty":     600000,
		"deposit":             150000,
		"interestRate":        0.05,
		"years":               30,
		"propertyGrowthRate":  0.045,
		"initialRentPerMonth": 2000,
		"inflationRate":       0.015,
		"fundGrowthRate":      0.08,
	}
}

// MinimumPayment is the yearly annuity that repays principal over n periods.
func MinimumPayment(principal, rate, n float64) float64 {
	return rate * principal / (1 - math.Pow(1+rate, -n))
}

func (m *Property) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	m.DeriveParams(p)
	principal := p["initialProperty"] - p["deposit"]
	return dynamo.Vars{
		"property":                        p["initialProperty"],
		"principal":                       principal,
		"totalInterest":                   0,
		"fund":                            p["deposit"],
		"rent":                            p["initialRentPerMonth"] * 12,
		"totalRent":                       0,
		"totalPaidForFundAndRent":         p["deposit"],
		"totalPaidForPropertyAndInterest": p["deposit"],
	}, nil
}

// DeriveParams sets the yearly mortgage payment.
func (m *Property) DeriveParams(p dynamo.Params) {
	p["payment"] = MinimumPayment(p["initialProperty"]-p["deposit"], p["interestRate"], p["years"])
}

func (m *Property) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	interest := p["interestRate"] * x.Get("principal")
	fundPayment := math.Max(p["payment"]-x.Get("rent"), 0)
	return dynamo.Vars{
		"interest":            interest,
		"fundPayment":         fundPayment,
		"interestPerMonth":    interest / 12,
		"paymentPerMonth":     p["payment"] / 12,
		"rentPerMonth":        x.Get("rent") / 12,
		"fundPaymentPerMonth": fundPayment / 12,
		"propertyProfit":      x.Get("property") - p["deposit"] - x.Get("principal") - x.Get("totalInterest"),
		"fundProfit":          x.Get("fund") - p["deposit"] - x.Get("totalRent"),
	}
}

func (m *Property) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	repayment := 0.0
	if x.Get("principal") >= 0 {
		repayment = p["payment"] - aux["interest"]
	}
	return dynamo.Vars{
		"totalInterest":                   aux["interest"],
		"property":                        p["propertyGrowthRate"] * x.Get("property"),
		"principal":                       -repayment,
		"totalPaidForPropertyAndInterest": p["payment"],
		"rent":                            p["inflationRate"] * x.Get("rent"),
		"totalRent":                       x.Get("rent"),
		"fund":                            p["fundGrowthRate"]*x.Get("fund") + aux["fundPayment"],
		"totalPaidForFundAndRent":         aux["fundPayment"] + x.Get("rent"),
	}
}

// Clamps stops the loan from being overpaid.
func (m *Property) Clamps() map[string]dynamo.Clamp {
	return map[string]dynamo.Clamp{"principal": {Floor: 0}}
}

func (m *Property) Title() string { return "Property Vs Fund Analyzer" }

func (m *Property) ParamSpecs() []dynamo.ParamSpec {
	return specs(PropertyDefaults(),
		dynamo.ParamSpec{Key: "deposit", Max: 1500000},
		dynamo.ParamSpec{Key: "initialProperty", Max: 1500000},
		dynamo.ParamSpec{Key: "propertyGrowthRate", Max: 0.18},
		dynamo.ParamSpec{Key: "years", Max: 100},
		dynamo.ParamSpec{Key: "interestRate", Max: 0.18},
		dynamo.ParamSpec{Key: "fundGrowthRate", Max: 0.18},
		dynamo.ParamSpec{Key: "inflationRate", Max: 0.18},
		dynamo.ParamSpec{Key: "initialRentPerMonth", Max: 15000},
	)
}

func (m *Property) Charts() []dynamo.Chart {
	property := []string{"property", "totalInterest", "principal", "totalPaidForPropertyAndInterest", "propertyProfit"}
	fund := []string{"fund", "totalRent", "totalPaidForFundAndRent", "fundProfit"}
	roi := []string{"propertyProfit", "fundProfit", "totalPaidForPropertyAndInterest", "totalPaidForFundAndRent"}
	monthly := []string{"paymentPerMonth", "interestPerMonth", "rentPerMonth", "fundPaymentPerMonth"}
	return []dynamo.Chart{
		{ID: "property", Title: "Property", Keys: property, XLabel: "year"},
		{ID: "fund", Title: "Investment Fund", Keys: fund, XLabel: "year"},
		{ID: "roi", Title: "Return on Investment", Keys: roi, XLabel: "year"},
		{ID: "monthly", Title: "Monthly Expenses", Keys: monthly, XLabel: "year"},
	}
}
