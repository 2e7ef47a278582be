package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/solution"
)

func TestFFT_Impulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for _, c := range out {
		assert.InDelta(t, 1, real(c), 1e-12)
		assert.InDelta(t, 0, imag(c), 1e-12)
	}

	odd := FFT([]float64{1, 2, 3})
	require.Len(t, odd, 3)
	assert.InDelta(t, 6, real(odd[0]), 1e-12)
}

func TestDominantPeriod_Sine(t *testing.T) {
	const dt = 0.25
	times := make([]float64, 300)
	values := make([]float64, 300)
	for i := range times {
		times[i] = float64(i) * dt
		values[i] = 100 + 10*math.Sin(2*math.Pi*times[i]/8)
	}

	period, err := DominantPeriod(times, values)
	require.NoError(t, err)
	assert.InDelta(t, 8, period, 1e-9)
}

func TestDominantPeriod_Short(t *testing.T) {
	_, err := DominantPeriod([]float64{0, 1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortSeries)

	// a NaN at index 4 leaves too few samples
	values := []float64{1, 2, 3, 4, math.NaN(), 6, 7, 8, 9, 10}
	times := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	_, err = DominantPeriod(times, values)
	assert.ErrorIs(t, err, ErrShortSeries)
}

func TestDominantPeriod_PredatorPrey(t *testing.T) {
	cfg := &config.Config{Model: "predator-prey", Dt: 0.1, Duration: 400}
	e, err := experiment.New(experiment.NewRegistry(), cfg)
	require.NoError(t, err)
	result, err := e.Run()
	require.NoError(t, err)

	period, err := DominantPeriod(result.Times, result.Trace.Floats("prey"))
	require.NoError(t, err)
	// small oscillations around equilibrium have period 2*pi/sqrt(a*c)
	assert.Greater(t, period, 2*math.Pi/math.Sqrt(0.2*0.2))
	assert.Less(t, period, 80.0)
}

func toyTrace() *solution.Trace {
	tr := solution.New()
	tr.Record(map[string]float64{"x": 0, "y": 0})
	tr.Record(map[string]float64{"x": 1, "y": math.NaN()})
	tr.Record(map[string]float64{"x": 2, "y": 4})
	return tr
}

func TestPhasePortrait(t *testing.T) {
	p, err := NewPhasePortrait(toyTrace(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {2, 4}}, p.Points)

	minX, maxX, minY, maxY := p.Bounds()
	assert.Equal(t, [4]float64{0, 2, 0, 4}, [4]float64{minX, maxX, minY, maxY})

	art := p.ASCII(20, 10)
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, art, "o")
	assert.Contains(t, art, "•")

	_, err = NewPhasePortrait(toyTrace(), "x", "z")
	assert.Error(t, err)
}

func TestCrossings(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4, 5, 6}
	values := make([]solution.Value, 0, len(times))
	for _, v := range []float64{0, 1, 2, 1, 0, 1, 2} {
		values = append(values, solution.Of(v))
	}

	assert.Equal(t, []float64{1.5, 5.5}, Crossings(times, values, 1.5))

	values[5] = solution.Of(math.NaN())
	assert.Equal(t, []float64{1.5}, Crossings(times, values, 1.5))
}

func TestBifurcationDiagram_SIS(t *testing.T) {
	b := Bifurcation{
		Base:       &config.Config{Model: "sis", Dt: 0.5, Duration: 400},
		Param:      "reproductionNumber",
		Min:        0.5,
		Max:        3.5,
		Steps:      3,
		Key:        "infectious",
		Transient:  300,
		Resolution: 1,
	}

	points, err := BifurcationDiagram(context.Background(), experiment.NewRegistry(), b)
	require.NoError(t, err)
	require.Len(t, points, 3)

	want := []float64{0, 50000 * (1 - 1/2.0), 50000 * (1 - 1/3.5)}
	for i, p := range points {
		require.NoError(t, p.Err)
		require.Len(t, p.Values, 1, "R0=%g", p.Param)
		assert.InDelta(t, want[i], p.Values[0], 1)
	}

	art := BifurcationToASCII(points, 30, 8)
	assert.Equal(t, 3, strings.Count(art, "•"))
}

func TestBifurcationDiagram_Errors(t *testing.T) {
	reg := experiment.NewRegistry()

	_, err := BifurcationDiagram(context.Background(), reg, Bifurcation{
		Base: &config.Config{Model: "sis", Duration: 10}, Param: "reproductionNumber", Transient: 20,
	})
	assert.Error(t, err)

	points, err := BifurcationDiagram(context.Background(), reg, Bifurcation{
		Base: &config.Config{Model: "sis", Duration: 10}, Param: "reproductionNumber",
		Min: 1, Max: 2, Steps: 2, Key: "zombies",
	})
	require.NoError(t, err)
	assert.Error(t, points[0].Err)

	assert.Empty(t, BifurcationToASCII(nil, 10, 10))
}

func TestSeparationRate(t *testing.T) {
	a, b := solution.New(), solution.New()
	times := make([]float64, 20)
	for i := range times {
		times[i] = float64(i) * 0.5
		base := 10.0
		a.Record(map[string]float64{"x": base, "y": base})
		b.Record(map[string]float64{"x": base + 1e-3*math.Exp(0.5*times[i]), "y": base})
	}

	rate, err := SeparationRate(times, a, b, []string{"x", "y"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rate, 1e-9)

	_, err = SeparationRate(times, a, a, []string{"x"})
	assert.ErrorIs(t, err, ErrShortSeries)
}

func TestLyapunovExponent(t *testing.T) {
	reg := experiment.NewRegistry()
	cfg := &config.Config{Model: "predator-prey", Dt: 0.1, Duration: 50}

	rate, err := LyapunovExponent(reg, cfg, "preyGrowthRate", 1e-6)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(rate))
	// no exponential divergence in a conservative cycle
	assert.Less(t, rate, 0.3)

	_, err = LyapunovExponent(reg, cfg, "gravity", 1e-6)
	assert.Error(t, err)
}
