package dynamo

import (
	"math"
	"sort"
)

// Params holds the named constants of a run.
type Params map[string]float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Has reports whether name is defined.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Vars holds auxiliary variables or derivatives keyed by name.
type Vars map[string]float64

func (v Vars) Clone() Vars {
	c := make(Vars, len(v))
	for k, val := range v {
		c[k] = val
	}
	return c
}

// Keys returns the names in lexical order.
func (v Vars) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Layout fixes the order of the state variables for one run.
type Layout struct {
	keys  []string
	index map[string]int
}

func NewLayout(keys ...string) *Layout {
	l := &Layout{
		keys:  make([]string, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	copy(l.keys, keys)
	for i, k := range l.keys {
		l.index[k] = i
	}
	return l
}

// LayoutOf orders the keys of an initialized state lexically.
func LayoutOf(v Vars) *Layout {
	return NewLayout(v.Keys()...)
}

func (l *Layout) Len() int { return len(l.keys) }

func (l *Layout) Keys() []string {
	keys := make([]string, len(l.keys))
	copy(keys, l.keys)
	return keys
}

// Index returns the vector position of name.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// ToVector flattens v in layout order. Missing keys become zero.
func (l *Layout) ToVector(v Vars) []float64 {
	vec := make([]float64, len(l.keys))
	for i, k := range l.keys {
		vec[i] = v[k]
	}
	return vec
}

// FromVector wraps vec as a State without copying.
func (l *Layout) FromVector(vec []float64) State {
	return State{layout: l, values: vec}
}

// Matches reports whether v has exactly the layout keys.
func (l *Layout) Matches(v Vars) bool {
	if len(v) != len(l.keys) {
		return false
	}
	for _, k := range l.keys {
		if _, ok := v[k]; !ok {
			return false
		}
	}
	return true
}

// State is a named view over a flat state vector.
type State struct {
	layout *Layout
	values []float64
}

// Get returns the value of name, or NaN when name is not a state variable.
func (s State) Get(name string) float64 {
	i, ok := s.layout.index[name]
	if !ok {
		return math.NaN()
	}
	return s.values[i]
}

func (s State) Has(name string) bool {
	_, ok := s.layout.index[name]
	return ok
}

func (s State) Keys() []string { return s.layout.Keys() }

func (s State) Layout() *Layout { return s.layout }

// Values returns the underlying vector.
func (s State) Values() []float64 { return s.values }

// Sum adds up every state variable.
func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s.values {
		total += v
	}
	return total
}

// Vars copies the state into a map.
func (s State) Vars() Vars {
	v := make(Vars, len(s.values))
	for i, k := range s.layout.keys {
		v[k] = s.values[i]
	}
	return v
}

func (s State) IsValid() bool {
	for _, v := range s.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model is the capability every simulation supplies.
type Model interface {
	// Initialize returns the initial state. It may write derived parameters
	// into p and build closures used later by Auxiliaries.
	Initialize(p Params) (Vars, error)
	// Auxiliaries computes the non-integrated variables of the current step.
	Auxiliaries(x State, p Params) Vars
	// Derivatives returns one rate of change per state key.
	Derivatives(x State, aux Vars, p Params) Vars
}

// Validator checks declarations against a computed auxiliary pass before
// stepping begins.
type Validator interface {
	Validate(x State, aux Vars, p Params) error
}

// Clamp keeps a state variable from dropping below Floor.
type Clamp struct {
	Floor float64 `yaml:"floor" json:"floor"`
}

// Clamper declares per-variable floors.
type Clamper interface {
	Clamps() map[string]Clamp
}

// ParamDeriver recomputes derived parameters after p has been changed
// mid-run by an intervention.
type ParamDeriver interface {
	DeriveParams(p Params)
}
