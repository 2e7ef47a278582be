package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/integrators"
	"github.com/san-kum/popsim/internal/sim"
)

func TestSIR_Epidemic(t *testing.T) {
	p := SIRDefaults()
	p["initPopulation"] = 1000
	p["initPrevalence"] = 1
	p["reproductionNumber"] = 3

	s := sim.New("sir", NewSIR(), p, integrators.NewRK4())
	result, err := s.Run(sim.Config{Dt: 0.1, Duration: 50})
	require.NoError(t, err)

	assert.InDelta(t, 0.1, result.Params["recoverRate"], 1e-12)
	assert.InDelta(t, 0.3, result.Params["contactRate"], 1e-12)

	inf := result.Trace.Floats("infectious")
	pop := result.Trace.Floats("population")
	peak := 0
	for i := range inf {
		assert.InDelta(t, 1000, pop[i], 1e-6)
		if inf[i] > inf[peak] {
			peak = i
		}
	}
	assert.Greater(t, peak, 0)
	assert.Less(t, peak, len(inf)-1)
	assert.Less(t, inf[len(inf)-1], inf[peak])

	rn := result.Trace.Floats("rn")
	assert.InDelta(t, 3*999/1000.0, rn[0], 0.01)
	assert.Less(t, rn[len(rn)-1], 1.0)
}

func TestSIR_InterventionLowersTransmission(t *testing.T) {
	cfg := sim.Config{Dt: 1, Duration: 100}
	base := sim.New("sir", NewSIR(), SIRDefaults(), nil)
	r1, err := base.Run(cfg)
	require.NoError(t, err)

	cfg.Interventions = []sim.Intervention{{At: 5, Params: map[string]float64{"reproductionNumber": 0.8}}}
	treated := sim.New("sir", NewSIR(), SIRDefaults(), nil)
	r2, err := treated.Run(cfg)
	require.NoError(t, err)

	assert.InDelta(t, 0.08, r2.Params["contactRate"], 1e-12)
	assert.Greater(t, r1.Trace.Floats("recovered")[99], r2.Trace.Floats("recovered")[99])
}

func TestEpidemic_RejectsBadPrevalence(t *testing.T) {
	p := SIRDefaults()
	p["initPrevalence"] = p["initPopulation"] + 1
	_, err := NewSIR().Initialize(p)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestSIS_ReachesEndemicLevel(t *testing.T) {
	s := sim.New("sis", NewSIS(), SISDefaults(), nil)
	result, err := s.Run(sim.Config{Dt: 0.5, Duration: 300})
	require.NoError(t, err)

	inf := result.Trace.Floats("infectious")
	// endemic equilibrium is N(1 - 1/R0)
	assert.InDelta(t, 50000*(1-1/1.5), inf[len(inf)-1], 50)
}

func TestSEIR_SinkRemovesPopulation(t *testing.T) {
	s := sim.New("seir", NewSEIR(), SEIRDefaults(), nil)
	result, err := s.Run(sim.Config{Dt: 0.5, Duration: 100})
	require.NoError(t, err)

	pop := result.Trace.Floats("population")
	for i := 1; i < len(pop); i++ {
		assert.LessOrEqual(t, pop[i], pop[i-1]+1e-6)
	}
	assert.Less(t, pop[len(pop)-1], 50000.0)
	dead := result.Trace.Floats("dead")
	assert.Greater(t, dead[len(dead)-1], 0.0)
}

func TestSEIRS_WaningImmunity(t *testing.T) {
	s := sim.New("seirs", NewSEIRS(), SEIRSDefaults(), nil)
	result, err := s.Run(sim.Config{Dt: 0.5, Duration: 100})
	require.NoError(t, err)
	assert.InDelta(t, 0.02, result.Params["immunityLossRate"], 1e-12)
	assert.Equal(t, 200, result.Trace.Len())
}

func TestEbola_Runs(t *testing.T) {
	s := sim.New("ebola", NewEbola(), EbolaDefaults(), nil)
	result, err := s.Run(sim.Config{Dt: 0.5, Duration: 100})
	require.NoError(t, err)

	buried := result.Trace.Floats("buried")
	assert.Greater(t, buried[len(buried)-1], buried[0])
	assert.InDelta(t, 1.0/3, result.Params["burialRate"], 1e-12)
}

func TestPredatorPrey_ConservesInvariant(t *testing.T) {
	p := PredatorPreyDefaults()
	invariant := func(prey, pred float64) float64 {
		return p["digestionRate"]*prey - p["predatorDeathRate"]*math.Log(prey) +
			p["predationRate"]*pred - p["preyGrowthRate"]*math.Log(pred)
	}

	s := sim.New("predator-prey", NewPredatorPrey(), p, integrators.NewRK4())
	result, err := s.Run(sim.Config{Dt: 0.1, Duration: 200})
	require.NoError(t, err)

	prey := result.Trace.Floats("prey")
	pred := result.Trace.Floats("predator")
	v0 := invariant(10, 5)
	for i := range prey {
		require.Greater(t, prey[i], 0.0)
		require.Greater(t, pred[i], 0.0)
		assert.InDelta(t, v0, invariant(prey[i], pred[i]), 5e-3*math.Abs(v0))
	}
}

func TestFiscalState_RevenueFloor(t *testing.T) {
	m := NewFiscalState()
	p := FiscalStateDefaults()
	p["expenditurePerCapita"] = 0.9

	s := sim.New("fiscal-state", m, p, integrators.NewEuler())
	result, err := s.Run(sim.Config{Dt: 1, Duration: 600})
	require.NoError(t, err)

	for _, v := range result.Trace.Floats("revenue") {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	pop := result.Trace.Floats("population")
	assert.InDelta(t, 1, pop[len(pop)-1], 0.05)
}

func TestFiscalState_CapacityChart(t *testing.T) {
	m := NewFiscalState()
	assert.Len(t, m.Charts(), 3)

	_, err := m.Initialize(FiscalStateDefaults())
	require.NoError(t, err)

	charts := m.Charts()
	require.Len(t, charts, 4)
	fn := charts[3]
	require.True(t, fn.IsFunction())
	xs, ys := dynamo.Sample(fn, 11)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 100.0, xs[10])
	assert.InDelta(t, 2.5, ys[1], 1e-12)
}

func TestKeen_Runs(t *testing.T) {
	s := sim.New("keen", NewKeen(), KeenDefaults(), integrators.NewRK4())
	result, err := s.Run(sim.Config{Dt: 0.05, Duration: 100, Cutoff: 1e6})
	require.NoError(t, err)

	assert.True(t, result.Trace.Has("wageShare"))
	assert.InDelta(t, 0.95, result.Trace.Floats("wageShare")[0], 0.05)
	assert.Equal(t, len(result.Times), result.Trace.Len())
}

func TestParamSpecsFilled(t *testing.T) {
	for name, d := range map[string]dynamo.Describer{
		"sir":          NewSIR(),
		"predator":     NewPredatorPrey(),
		"fiscal-state": NewFiscalState(),
		"keen":         NewKeen(),
		"ebola":        NewEbola(),
		"elite":        NewElite(),
		"property":     NewProperty(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, d.Title())
			for _, spec := range d.ParamSpecs() {
				assert.NotEmpty(t, spec.Label, spec.Key)
				assert.Greater(t, spec.Interval, 0.0, spec.Key)
			}
		})
	}

	pp := NewPredatorPrey().ParamSpecs()
	assert.Equal(t, "Initial Prey", pp[0].Label)
	assert.Equal(t, 0.1, pp[0].Interval)
	assert.Equal(t, 10.0, pp[0].Value)
}

func TestProperty_MortgagePaidOff(t *testing.T) {
	assert.InDelta(t, 29273.06, MinimumPayment(450000, 0.05, 30), 0.5)

	s := sim.New("property", NewProperty(), PropertyDefaults(), integrators.NewRK4())
	result, err := s.Run(sim.Config{Dt: 1, Duration: 30})
	require.NoError(t, err)
	require.Equal(t, 30, result.Trace.Len())
	assert.InDelta(t, 29273.06, result.Params["payment"], 0.5)

	principal := result.Trace.Floats("principal")
	for i := 1; i < len(principal); i++ {
		assert.LessOrEqual(t, principal[i], principal[i-1])
		assert.GreaterOrEqual(t, principal[i], 0.0)
	}
	assert.Equal(t, 0.0, principal[len(principal)-1])

	property := result.Trace.Floats("property")
	assert.InEpsilon(t, 600000*math.Exp(0.045*30), property[len(property)-1], 1e-3)
	assert.True(t, result.Trace.Has("fundProfit"))
}

func TestElite_StateStaysNonNegative(t *testing.T) {
	s := sim.New("elite", NewElite(), EliteDefaults(), integrators.NewRK4())
	result, err := s.Run(sim.Config{Dt: 1, Duration: 400})
	require.NoError(t, err)
	assert.False(t, result.TerminatedEarly())

	for _, key := range []string{"producer", "elite", "state"} {
		for i, v := range result.Trace.Floats(key) {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s at %d", key, i)
			require.GreaterOrEqual(t, v, 0.0, "%s at %d", key, i)
		}
	}
	elite := result.Trace.Floats("elite")
	assert.Greater(t, elite[len(elite)-1], 0.0)
}

func TestElite_ProductionDeclineChart(t *testing.T) {
	m := NewElite()
	require.Len(t, m.Charts(), 5)

	_, err := m.Initialize(EliteDefaults())
	require.NoError(t, err)

	charts := m.Charts()
	require.Len(t, charts, 6)
	fn := charts[5]
	require.True(t, fn.IsFunction())
	assert.InDelta(t, 0.5, fn.Fn(0), 1e-12)
	assert.InDelta(t, 0.35, fn.Fn(0.07), 1e-12)

	for _, spec := range m.ParamSpecs() {
		if spec.Key == "initState" {
			assert.Equal(t, 1.0, spec.Max)
		}
	}
}
