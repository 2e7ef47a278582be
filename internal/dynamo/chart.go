package dynamo

import (
	"math"
	"strings"
	"unicode"
)

// Chart describes one plot a presentation layer may draw. Exactly one of
// Keys or Fn is set.
type Chart struct {
	ID     string
	Title  string
	Keys   []string
	Fn     func(float64) float64
	Domain [2]float64
	XLabel string
	YLabel string
}

// IsFunction reports whether the chart samples Fn instead of trace keys.
func (c Chart) IsFunction() bool { return c.Fn != nil }

// Charter exposes chart descriptions. The engine never interprets them.
type Charter interface {
	Charts() []Chart
}

// Sample evaluates c.Fn at n evenly spaced points across its domain.
func Sample(c Chart, n int) (xs, ys []float64) {
	if c.Fn == nil || n < 2 {
		return nil, nil
	}
	lo, hi := c.Domain[0], c.Domain[1]
	xs = make([]float64, n)
	ys = make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		xs[i] = lo + float64(i)*step
		ys[i] = c.Fn(xs[i])
	}
	return xs, ys
}

// ParamSpec annotates a parameter for editing layers.
type ParamSpec struct {
	Key      string  `json:"key" yaml:"key"`
	Label    string  `json:"label" yaml:"label"`
	Max      float64 `json:"max" yaml:"max"`
	Interval float64 `json:"interval" yaml:"interval"`
	Value    float64 `json:"value" yaml:"value"`
}

// Describer exposes a display title and editable parameters.
type Describer interface {
	Title() string
	ParamSpecs() []ParamSpec
}

// Fill completes a spec with a label, a slider interval and the current value.
func (s ParamSpec) Fill(p Params) ParamSpec {
	if s.Label == "" {
		s.Label = StartCase(s.Key)
	}
	if s.Max > 0 && s.Interval == 0 {
		exp := math.Floor(math.Log10(s.Max))
		s.Interval = math.Pow(10, exp-2)
	}
	s.Value = p[s.Key]
	return s
}

// StartCase turns "initialPrevalence" into "Initial Prevalence".
func StartCase(key string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		if i == 0 || b.Len() > 0 && strings.HasSuffix(b.String(), " ") {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return b.String()
}
