package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "sir", cfg.Model)
	assert.Zero(t, cfg.Dt)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
model: fiscal-state
integrator: euler
dt: 1
duration: 300
cutoff: 1000
check_auxiliaries: true
params:
  tax: "1.5"
  maxSurplus: 2
clamps:
  population:
    floor: 0.1
interventions:
  - at: 100
    params:
      expenditurePerCapita: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fiscal-state", cfg.Model)
	assert.Equal(t, "euler", cfg.Integrator)
	assert.Equal(t, 300.0, cfg.Duration)
	assert.Equal(t, "1.5", cfg.Params["tax"])
	assert.Equal(t, dynamo.Clamp{Floor: 0.1}, cfg.Clamps["population"])
	require.Len(t, cfg.Interventions, 1)
	assert.Equal(t, 0.5, cfg.Interventions[0].Params["expenditurePerCapita"])

	sc := cfg.SimConfig()
	assert.True(t, sc.CheckAuxiliaries)
	assert.Equal(t, 1000.0, sc.Cutoff)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dt: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, Save(path, GetPreset("sir", "lockdown")))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sir", cfg.Model)
	require.Len(t, cfg.Interventions, 2)
	assert.Equal(t, 80.0, cfg.Interventions[1].At)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("sir", "classic")
	require.NotNil(t, cfg)
	assert.Equal(t, 3, cfg.Params["reproductionNumber"])

	cfg.SetParam("reproductionNumber", 9)
	assert.Equal(t, 3, GetPreset("sir", "classic").Params["reproductionNumber"])
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("sir", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "classic"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"classic", "lockdown", "measles"}, ListPresets("sir"))
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestPresetsNameTheirModel(t *testing.T) {
	for model, presets := range Presets {
		for name, cfg := range presets {
			assert.Equal(t, model, cfg.Model, name)
			assert.Greater(t, cfg.Dt, 0.0, name)
			assert.Greater(t, cfg.Duration, 0.0, name)
		}
	}
}
