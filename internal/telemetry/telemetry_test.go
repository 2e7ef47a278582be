package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/sim"
)

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveRun(sim.RunReport{Model: "sir", Termination: sim.TerminatedNormal, StepsTaken: 200, Elapsed: time.Millisecond})
	c.ObserveRun(sim.RunReport{Model: "sir", Termination: sim.TerminatedNormal, StepsTaken: 200})
	c.ObserveRun(sim.RunReport{Model: "keen", Termination: sim.TerminatedCutoff, StepsTaken: 12})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runs.WithLabelValues("sir", "normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("keen", "cutoff")))
	assert.Equal(t, 3, testutil.CollectAndCount(c.runs))
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestCollector_AsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s := sim.New("predator-prey", models.NewPredatorPrey(), models.PredatorPreyDefaults(), nil, sim.WithObserver(c))
	_, err = s.Run(sim.Config{Dt: 0.1, Duration: 10})
	require.NoError(t, err)

	expected := `
# HELP popsim_runs_total Total number of finished simulation runs
# TYPE popsim_runs_total counter
popsim_runs_total{model="predator-prey",termination="normal"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "popsim_runs_total"))
}

func TestWriteFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	c.ObserveRun(sim.RunReport{Model: "sis", StepsTaken: 50})

	path := filepath.Join(t.TempDir(), "popsim.prom")
	require.NoError(t, WriteFile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `popsim_steps_count{model="sis"} 1`)
}
