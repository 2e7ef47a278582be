package metrics

import (
	"math"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Drift tracks the largest relative change of the summed keys from their
// first observed total. With no keys it sums the whole state. It is the
// conservation monitor for closed compartmental models.
type Drift struct {
	name    string
	keys    []string
	initial float64
	max     float64
	samples int
}

func NewDrift(keys ...string) *Drift {
	return &Drift{name: "drift", keys: keys}
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(x dynamo.State, aux dynamo.Vars, t float64) {
	total := 0.0
	if len(d.keys) == 0 {
		total = x.Sum()
	}
	for _, k := range d.keys {
		v, ok := lookup(x, aux, k)
		if !ok {
			return
		}
		total += v
	}
	if !isFinite(total) {
		return
	}

	if d.samples == 0 {
		d.initial = total
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(total-d.initial) / math.Abs(d.initial)
		d.max = math.Max(d.max, drift)
	}
}

func (d *Drift) Value() float64 { return d.max }

func (d *Drift) Reset() {
	d.initial = 0
	d.max = 0
	d.samples = 0
}
