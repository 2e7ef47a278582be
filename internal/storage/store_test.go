package storage

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/solution"
)

func toyTrace() ([]float64, *solution.Trace) {
	tr := solution.New()
	tr.Record(map[string]float64{"s": 9, "i": 1})
	tr.Record(map[string]float64{"s": 8.5, "i": math.Inf(1)})
	tr.Record(map[string]float64{"s": 8, "i": 1.25, "r": 0.75})
	return []float64{0, 0.5, 1}, tr
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestWriteCSV_Golden(t *testing.T) {
	times, tr := toyTrace()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, times, tr))
	golden(t).Assert(t, "trace_csv", buf.Bytes())
}

func TestReadCSV_RoundTrip(t *testing.T) {
	times, tr := toyTrace()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, times, tr))

	gotTimes, got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, times, gotTimes)
	assert.Equal(t, tr.Keys(), got.Keys())
	for _, k := range tr.Keys() {
		assert.Equal(t, tr.Series(k), got.Series(k), k)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, _, err = ReadCSV(strings.NewReader("step,x\n0,1\n"))
	assert.Error(t, err)

	_, _, err = ReadCSV(strings.NewReader("time,x\n0,abc\n"))
	assert.ErrorContains(t, err, "line 2: x")
}

func TestWriteCSV_ShortAxis(t *testing.T) {
	times, tr := toyTrace()
	var buf bytes.Buffer
	assert.ErrorContains(t, WriteCSV(&buf, times[:2], tr), "time axis has 2 points")
}

func TestExportJSON_Golden(t *testing.T) {
	times, tr := toyTrace()
	result := &sim.Result{
		Model:       "toy",
		Times:       times,
		Trace:       tr,
		Termination: sim.TerminatedNormal,
		StepsTaken:  3,
		Metrics:     map[string]float64{"peak_i": 1.25, "missing": math.NaN()},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewExportData("rk4", 0.5, 1.5, result)))
	golden(t).Assert(t, "export_json", buf.Bytes())
}

func runSIR(t *testing.T) (*config.Config, *sim.Result) {
	t.Helper()
	cfg := &config.Config{Model: "sir", Integrator: "rk4", Dt: 0.5, Duration: 10}
	s := sim.New("sir", models.NewSIR(), models.SIRDefaults(), nil)
	s.AddMetric(&nanMetric{})
	result, err := s.Run(cfg.SimConfig())
	require.NoError(t, err)
	return cfg, result
}

type nanMetric struct{}

func (nanMetric) Name() string                                       { return "never" }
func (nanMetric) Observe(x dynamo.State, aux dynamo.Vars, t float64) {}
func (nanMetric) Value() float64                                     { return math.NaN() }
func (nanMetric) Reset()                                             {}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, result := runSIR(t)
	runID, err := st.Save(cfg, result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "sir_"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "sir", meta.Model)
	assert.Equal(t, "normal", meta.Termination)
	assert.Equal(t, 20, meta.StepsTaken)
	assert.False(t, meta.Metrics["never"].Valid)
	assert.InDelta(t, 0.1, meta.Params["recoverRate"].V, 1e-12)
	assert.InDelta(t, 0.1, meta.ParamSet()["recoverRate"], 1e-12)

	times, tr, err := st.LoadTrace(runID)
	require.NoError(t, err)
	assert.Len(t, times, 20)
	assert.Equal(t, result.Trace.Keys(), tr.Keys())
	assert.InDelta(t, result.Trace.Floats("infectious")[19], tr.Floats("infectious")[19], 1e-9)
}

func TestStoreSave_NonFiniteParam(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	defaults := models.SIRDefaults()
	defaults["infectiousPeriod"] = 0
	cfg := &config.Config{Model: "sir", Integrator: "rk4", Dt: 0.5, Duration: 10}
	s := sim.New("sir", models.NewSIR(), defaults, nil)
	result, err := s.Run(cfg.SimConfig())
	require.NoError(t, err)
	require.True(t, math.IsInf(result.Params["recoverRate"], 1))

	runID, err := st.Save(cfg, result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.False(t, meta.Params["recoverRate"].Valid)
	assert.True(t, math.IsNaN(meta.ParamSet()["recoverRate"]))
	assert.Equal(t, 0.0, meta.ParamSet()["infectiousPeriod"])

	raw, err := os.ReadFile(filepath.Join(dir, runID, "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recoverRate": null`)

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestStoreSave_FailureLeavesNoDirectory(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	cfg, result := runSIR(t)
	result.Times = result.Times[:3]
	_, err := st.Save(cfg, result)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := New(filepath.Join(dir, "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	cfg, result := runSIR(t)
	first, err := st.Save(cfg, result)
	require.NoError(t, err)
	second, err := st.Save(cfg, result)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
}

func TestFromStored(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runSIR(t)
	runID, err := st.Save(cfg, result)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	times, tr, err := st.LoadTrace(runID)
	require.NoError(t, err)

	data := FromStored(meta, times, tr)
	assert.Equal(t, "rk4", data.Integrator)
	assert.Len(t, data.Series["susceptible"], 20)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"never": null`)
}
