package flow_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/flow"
	"github.com/san-kum/popsim/internal/integrators"
	"github.com/san-kum/popsim/internal/sim"
)

type sirCompartments struct{}

func (sirCompartments) Initialize(p dynamo.Params) (dynamo.Vars, error) {
	return dynamo.Vars{
		"susceptible": p["susceptible"],
		"infectious":  p["infectious"],
		"recovered":   p["recovered"],
	}, nil
}

func (sirCompartments) Auxiliaries(x dynamo.State, p dynamo.Params) dynamo.Vars {
	population := x.Sum()
	return dynamo.Vars{
		"population": population,
		"rateForce":  p["contactRate"] * x.Get("infectious") / population,
	}
}

type birthCompartments struct{ sirCompartments }

func (birthCompartments) External(x dynamo.State, aux dynamo.Vars, p dynamo.Params) dynamo.Vars {
	return dynamo.Vars{"susceptible": p["birthRate"] * aux["population"], "unknown": 5}
}

func newSIR() *flow.Model {
	return flow.New(sirCompartments{}).
		AuxFlow("susceptible", "infectious", "rateForce").
		ParamFlow("infectious", "recovered", "recoverRate")
}

func sirParams() dynamo.Params {
	return dynamo.Params{
		"susceptible": 999, "infectious": 1, "recovered": 0,
		"contactRate": 0.3, "recoverRate": 0.1,
	}
}

func stateOf(v dynamo.Vars) dynamo.State {
	l := dynamo.LayoutOf(v)
	return l.FromVector(l.ToVector(v))
}

var _ = Describe("Model", func() {
	var (
		m   *flow.Model
		p   dynamo.Params
		x   dynamo.State
		aux dynamo.Vars
	)

	BeforeEach(func() {
		m = newSIR()
		p = sirParams()
		init, err := m.Initialize(p)
		Expect(err).NotTo(HaveOccurred())
		x = stateOf(init)
		aux = m.Auxiliaries(x, p)
	})

	Describe("Derivatives", func() {
		It("covers every state key", func() {
			dx := m.Derivatives(x, aux, p)
			Expect(x.Layout().Matches(dx)).To(BeTrue())
		})

		It("moves each contribution from source to destination", func() {
			dx := m.Derivatives(x, aux, p)
			infection := 0.3 * 1 / 1000 * 999
			recovery := 0.1 * 1

			Expect(dx["susceptible"]).To(BeNumerically("~", -infection, 1e-12))
			Expect(dx["infectious"]).To(BeNumerically("~", infection-recovery, 1e-12))
			Expect(dx["recovered"]).To(BeNumerically("~", recovery, 1e-12))
		})

		It("conserves the total across internal edges", func() {
			dx := m.Derivatives(x, aux, p)
			total := 0.0
			for _, v := range dx {
				total += v
			}
			Expect(total).To(BeNumerically("~", 0, 1e-12))
			Expect(m.InternalBalance(x, aux, p)).To(BeNumerically("~", 0, 1e-12))
		})

		It("applies a same-node edge once as a sink", func() {
			p["fatality"] = 0.05
			m.ParamFlow("infectious", "infectious", "fatality")

			dx := m.Derivatives(x, aux, p)
			infection := 0.3 * 1 / 1000 * 999
			Expect(dx["infectious"]).To(BeNumerically("~", infection-0.1-0.05, 1e-12))
			Expect(m.InternalBalance(x, aux, p)).To(BeNumerically("~", 0, 1e-12))
		})

		It("adds external terms only for state keys", func() {
			bm := flow.New(birthCompartments{}).
				AuxFlow("susceptible", "infectious", "rateForce").
				ParamFlow("infectious", "recovered", "recoverRate")
			p["birthRate"] = 0.01

			dx := bm.Derivatives(x, aux, p)
			Expect(dx).NotTo(HaveKey("unknown"))
			total := dx["susceptible"] + dx["infectious"] + dx["recovered"]
			Expect(total).To(BeNumerically("~", 10, 1e-9))
		})
	})

	Describe("Inflow", func() {
		It("sums transfers into a compartment", func() {
			Expect(m.Inflow("infectious", x, aux, p)).To(BeNumerically("~", 0.3*999/1000, 1e-12))
			Expect(m.Inflow("susceptible", x, aux, p)).To(BeZero())
		})
	})

	Describe("Validate", func() {
		It("accepts consistent declarations", func() {
			Expect(m.Validate(x, aux, p)).To(Succeed())
		})

		It("rejects an undefined auxiliary rate", func() {
			m.AuxFlow("susceptible", "recovered", "vaccinationRate")
			err := m.Validate(x, aux, p)
			Expect(err).To(MatchError(dynamo.ErrUndefinedRate))

			var ce *dynamo.ConsistencyError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Key).To(Equal("vaccinationRate"))
		})

		It("rejects an undefined parameter rate", func() {
			m.ParamFlow("recovered", "susceptible", "waningRate")
			Expect(m.Validate(x, aux, p)).To(MatchError(dynamo.ErrUndefinedRate))
		})

		It("does not resolve parameter flows against auxiliaries", func() {
			m.ParamFlow("susceptible", "infectious", "rateForce")
			Expect(m.Validate(x, aux, p)).To(MatchError(dynamo.ErrUndefinedRate))
		})

		It("rejects an endpoint that is not a state variable", func() {
			m.ParamFlow("infectious", "dead", "recoverRate")
			Expect(m.Validate(x, aux, p)).To(MatchError(dynamo.ErrUnknownCompartment))
		})
	})

	Describe("Edges", func() {
		It("lists auxiliary edges first", func() {
			edges := m.Edges()
			Expect(edges).To(HaveLen(2))
			Expect(edges[0].Rate).To(Equal("rateForce"))
			Expect(edges[1].String()).To(Equal("infectious -> recovered @ recoverRate"))
		})
	})
})

var _ = Describe("Running a flow model", func() {
	It("fails before stepping when a rate is undefined", func() {
		m := newSIR().ParamFlow("recovered", "susceptible", "waningRate")
		s := sim.New("sir", m, sirParams(), integrators.NewRK4())

		result, err := s.Run(sim.Config{Dt: 0.1, Duration: 50})
		Expect(err).To(MatchError(dynamo.ErrUndefinedRate))
		Expect(result).To(BeNil())
		Expect(s.Trace().Len()).To(BeZero())
	})

	It("keeps the SIR epidemic conserved and bell shaped", func() {
		m := newSIR()
		s := sim.New("sir", m, sirParams(), integrators.NewRK4())

		result, err := s.Run(sim.Config{Dt: 0.1, Duration: 50})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.TerminatedEarly()).To(BeFalse())
		Expect(result.Trace.Len()).To(Equal(500))

		sus := result.Trace.Floats("susceptible")
		inf := result.Trace.Floats("infectious")
		rec := result.Trace.Floats("recovered")

		peak := 0
		for i := range inf {
			total := sus[i] + inf[i] + rec[i]
			Expect(math.Abs(total-1000) / 1000).To(BeNumerically("<", 1e-6))
			if inf[i] > inf[peak] {
				peak = i
			}
		}
		Expect(peak).To(BeNumerically(">", 0))
		Expect(peak).To(BeNumerically("<", len(inf)-1))
		Expect(inf[peak]).To(BeNumerically(">", inf[0]))
		Expect(inf[len(inf)-1]).To(BeNumerically("<", inf[peak]))
	})
})
