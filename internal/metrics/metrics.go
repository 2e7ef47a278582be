// Package metrics holds scalar summaries of a run. Each metric is attached
// to a simulator with AddMetric and sees every recorded step.
package metrics

import (
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// lookup reads key from the state, falling back to the auxiliaries.
func lookup(x dynamo.State, aux dynamo.Vars, key string) (float64, bool) {
	if x.Has(key) {
		v := x.Get(key)
		return v, isFinite(v)
	}
	v, ok := aux[key]
	return v, ok && isFinite(v)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

type Peak struct {
	name string
	key  string
	max  float64
	at   float64
	seen bool
}

func NewPeak(key string) *Peak {
	return &Peak{name: "peak_" + key, key: key}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, aux dynamo.Vars, t float64) {
	v, ok := lookup(x, aux, p.key)
	if !ok {
		return
	}
	if !p.seen || v > p.max {
		p.max, p.at, p.seen = v, t, true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max, p.at, p.seen = 0, 0, false
}

// PeakTime reports when key reached its maximum.
type PeakTime struct{ Peak }

func NewPeakTime(key string) *PeakTime {
	return &PeakTime{Peak{name: "peak_time_" + key, key: key}}
}

func (p *PeakTime) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.at
}

type Final struct {
	name  string
	key   string
	value float64
}

func NewFinal(key string) *Final {
	return &Final{name: "final_" + key, key: key, value: math.NaN()}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(x dynamo.State, aux dynamo.Vars, t float64) {
	if v, ok := lookup(x, aux, f.key); ok {
		f.value = v
	} else {
		f.value = math.NaN()
	}
}

func (f *Final) Value() float64 { return f.value }

func (f *Final) Reset() { f.value = math.NaN() }
