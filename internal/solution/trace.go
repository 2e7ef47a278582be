// Package solution records the time series produced by a simulation run.
package solution

import "sort"

// Trace is an append-only recorder of named series. Every series always has
// the same length: keys that appear late are back-filled with no-value
// markers and keys missing from a snapshot get one for that step.
type Trace struct {
	keys   []string
	series map[string][]Value
	n      int
}

func New() *Trace {
	return &Trace{series: make(map[string][]Value)}
}

// Record appends one step. The maps are merged; later maps win on key clashes.
func (tr *Trace) Record(snapshots ...map[string]float64) {
	merged := make(map[string]float64)
	for _, snap := range snapshots {
		for k, v := range snap {
			merged[k] = v
		}
	}

	fresh := make([]string, 0)
	for k := range merged {
		if _, ok := tr.series[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	for _, k := range fresh {
		tr.keys = append(tr.keys, k)
		tr.series[k] = make([]Value, tr.n, tr.n+1)
	}

	for _, k := range tr.keys {
		v, ok := merged[k]
		if !ok {
			tr.series[k] = append(tr.series[k], Value{})
			continue
		}
		tr.series[k] = append(tr.series[k], Of(v))
	}
	tr.n++
}

// Reset empties every series. Keys are forgotten too, so a run that no
// longer produces a key does not carry an empty column.
func (tr *Trace) Reset() {
	tr.keys = tr.keys[:0]
	tr.series = make(map[string][]Value)
	tr.n = 0
}

// Len returns the number of recorded steps.
func (tr *Trace) Len() int { return tr.n }

// Keys returns the recorded names in first-seen order.
func (tr *Trace) Keys() []string {
	keys := make([]string, len(tr.keys))
	copy(keys, tr.keys)
	return keys
}

func (tr *Trace) Has(key string) bool {
	_, ok := tr.series[key]
	return ok
}

// Series returns the recorded values of key, or nil.
func (tr *Trace) Series(key string) []Value {
	return tr.series[key]
}

// Floats returns key as plain numbers with NaN in place of no-value markers.
func (tr *Trace) Floats(key string) []float64 {
	s := tr.series[key]
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.Float()
	}
	return out
}

// Last returns the most recent value of key.
func (tr *Trace) Last(key string) (Value, bool) {
	s := tr.series[key]
	if len(s) == 0 {
		return Value{}, false
	}
	return s[len(s)-1], true
}

// Row returns step i across the given keys.
func (tr *Trace) Row(i int, keys []string) []Value {
	row := make([]Value, len(keys))
	for j, k := range keys {
		if s := tr.series[k]; i < len(s) {
			row[j] = s[i]
		}
	}
	return row
}

// Clone returns a deep copy that later Record or Reset calls do not touch.
func (tr *Trace) Clone() *Trace {
	c := &Trace{
		keys:   tr.Keys(),
		series: make(map[string][]Value, len(tr.series)),
		n:      tr.n,
	}
	for k, s := range tr.series {
		cs := make([]Value, len(s))
		copy(cs, s)
		c.series[k] = cs
	}
	return c
}

// FromSeries rebuilds a trace from stored columns. Short columns are padded
// with no-value markers.
func FromSeries(keys []string, columns map[string][]Value) *Trace {
	tr := New()
	for _, k := range keys {
		if len(columns[k]) > tr.n {
			tr.n = len(columns[k])
		}
	}
	for _, k := range keys {
		s := make([]Value, tr.n)
		copy(s, columns[k])
		tr.keys = append(tr.keys, k)
		tr.series[k] = s
	}
	return tr
}
