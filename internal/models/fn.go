package models

import "math"

// Fn is a single-argument response curve used inside auxiliaries.
type Fn func(x float64) float64

// Exponential passes through (x0, y0) with slope scale there and decays
// towards yMin as x falls.
func Exponential(x0, y0, scale, yMin float64) Fn {
	dy := y0 - yMin
	return func(x float64) float64 {
		return dy*math.Exp(scale*(x-x0)/dy) + yMin
	}
}

func Linear(intercept, slope float64) Fn {
	return func(x float64) float64 { return intercept + slope*x }
}

// InverseSquare is a/(b - c x)^2 - d. It has a pole at x = b/c.
func InverseSquare(a, b, c, d float64) Fn {
	return func(x float64) float64 {
		den := b - c*x
		return a/den/den - d
	}
}

// Approach rises from base towards base+span, reaching half of span at
// x = half.
func Approach(base, span, half float64) Fn {
	return func(x float64) float64 { return base + span*x/(half+x) }
}

// Capped holds fn at fn(xMax) beyond xMax, and never lets it exceed that
// value below xMax either.
func Capped(fn Fn, xMax float64) Fn {
	yMax := fn(xMax)
	return func(x float64) float64 {
		if x > xMax {
			return yMax
		}
		return math.Min(fn(x), yMax)
	}
}
