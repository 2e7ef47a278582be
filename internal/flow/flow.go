package flow

import (
	"fmt"

	"github.com/san-kum/popsim/internal/dynamo"
)

// Edge is a conserved transfer between two state variables.
type Edge struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
	Rate string `yaml:"rate" json:"rate"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s @ %s", e.From, e.To, e.Rate)
}

// IsSink reports whether the edge removes from a single compartment.
func (e Edge) IsSink() bool { return e.From == e.To }

// Compartments is the hand-written part of a flow model.
type Compartments interface {
	Initialize(p dynamo.Params) (dynamo.Vars, error)
	Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars
}

// External adds non-conserved terms such as births on top of the edges.
type External interface {
	External(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars
}

// Contribution is the evaluated size of one edge at one point in time.
type Contribution struct {
	Edge
	Value float64
}

// Model derives its derivatives from AuxFlows and ParamFlows.
type Model struct {
	Compartments
	AuxFlows   []Edge
	ParamFlows []Edge
}

func New(c Compartments) *Model {
	return &Model{Compartments: c}
}

// AuxFlow declares an edge whose rate is an auxiliary variable.
func (m *Model) AuxFlow(from, to, rate string) *Model {
	m.AuxFlows = append(m.AuxFlows, Edge{From: from, To: to, Rate: rate})
	return m
}

// ParamFlow declares an edge whose rate is a parameter.
func (m *Model) ParamFlow(from, to, rate string) *Model {
	m.ParamFlows = append(m.ParamFlows, Edge{From: from, To: to, Rate: rate})
	return m
}

// Edges returns every declared edge, auxiliary edges first.
func (m *Model) Edges() []Edge {
	edges := make([]Edge, 0, len(m.AuxFlows)+len(m.ParamFlows))
	edges = append(edges, m.AuxFlows...)
	return append(edges, m.ParamFlows...)
}

// Contributions evaluates every edge against the current step.
func (m *Model) Contributions(x dynamo.State, aux dynamo.Vars, p dynamo.Params) []Contribution {
	out := make([]Contribution, 0, len(m.AuxFlows)+len(m.ParamFlows))
	for _, e := range m.AuxFlows {
		out = append(out, Contribution{Edge: e, Value: aux[e.Rate] * x.Get(e.From)})
	}
	for _, e := range m.ParamFlows {
		out = append(out, Contribution{Edge: e, Value: p[e.Rate] * x.Get(e.From)})
	}
	return out
}

func (m *Model) Derivatives(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	dx := make(dynamo.Vars, x.Layout().Len())
	for _, k := range x.Keys() {
		dx[k] = 0
	}
	apply(dx, m.Contributions(x, aux, p))

	if ext, ok := m.Compartments.(External); ok {
		for k, v := range ext.External(x, aux, p) {
			if _, known := dx[k]; known {
				dx[k] += v
			}
		}
	}
	return dx
}

func apply(dx dynamo.Vars, cs []Contribution) {
	for _, c := range cs {
		if c.IsSink() {
			dx[c.From] -= c.Value
			continue
		}
		dx[c.From] -= c.Value
		dx[c.To] += c.Value
	}
}

// InternalBalance sums the derivative produced by the edges between
// distinct compartments. It is zero up to rounding for any state.
func (m *Model) InternalBalance(x dynamo.State, aux dynamo.Vars, p dynamo.Params) float64 {
	internal := make([]Contribution, 0)
	for _, c := range m.Contributions(x, aux, p) {
		if !c.IsSink() {
			internal = append(internal, c)
		}
	}
	dx := make(dynamo.Vars)
	apply(dx, internal)

	total := 0.0
	for _, v := range dx {
		total += v
	}
	return total
}

// Inflow sums the edge contributions entering key from other compartments.
func (m *Model) Inflow(key string, x dynamo.State, aux dynamo.Vars, p dynamo.Params) float64 {
	total := 0.0
	for _, c := range m.Contributions(x, aux, p) {
		if c.To == key && !c.IsSink() {
			total += c.Value
		}
	}
	return total
}

// Validate checks every edge against the state keys, one auxiliary pass and
// the parameters.
func (m *Model) Validate(x dynamo.State, aux dynamo.Vars, p dynamo.Params) error {
	check := func(e Edge, defined bool, kind string) error {
		for _, end := range []string{e.From, e.To} {
			if !x.Has(end) {
				return &dynamo.ConsistencyError{Key: end, Detail: e.String(), Wrapped: dynamo.ErrUnknownCompartment}
			}
		}
		if !defined {
			return &dynamo.ConsistencyError{Key: e.Rate, Detail: kind + " flow " + e.String(), Wrapped: dynamo.ErrUndefinedRate}
		}
		return nil
	}

	for _, e := range m.AuxFlows {
		_, ok := aux[e.Rate]
		if err := check(e, ok, "auxiliary"); err != nil {
			return err
		}
	}
	for _, e := range m.ParamFlows {
		if err := check(e, p.Has(e.Rate), "parameter"); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) Clamps() map[string]dynamo.Clamp {
	if c, ok := m.Compartments.(dynamo.Clamper); ok {
		return c.Clamps()
	}
	return nil
}

func (m *Model) DeriveParams(p dynamo.Params) {
	if d, ok := m.Compartments.(dynamo.ParamDeriver); ok {
		d.DeriveParams(p)
	}
}

func (m *Model) Charts() []dynamo.Chart {
	if c, ok := m.Compartments.(dynamo.Charter); ok {
		return c.Charts()
	}
	return nil
}

func (m *Model) Title() string {
	if d, ok := m.Compartments.(dynamo.Describer); ok {
		return d.Title()
	}
	return ""
}

func (m *Model) ParamSpecs() []dynamo.ParamSpec {
	if d, ok := m.Compartments.(dynamo.Describer); ok {
		return d.ParamSpecs()
	}
	return nil
}

var (
	_ dynamo.Model        = (*Model)(nil)
	_ dynamo.Validator    = (*Model)(nil)
	_ dynamo.Clamper      = (*Model)(nil)
	_ dynamo.ParamDeriver = (*Model)(nil)
	_ dynamo.Charter      = (*Model)(nil)
	_ dynamo.Describer    = (*Model)(nil)
)
