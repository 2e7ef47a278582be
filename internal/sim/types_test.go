package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxis(t *testing.T) {
	axis := Axis(0.1, 50)
	assert.Len(t, axis, 500)
	assert.Zero(t, axis[0])
	assert.InDelta(t, 49.9, axis[499], 1e-9)

	assert.Len(t, Axis(0.3, 1), 4)
	assert.Len(t, Axis(0.25, 1), 4)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Dt: 0.1, Duration: 1}.withDefaults()
	assert.Equal(t, DefaultCutoff, cfg.Cutoff)
	assert.NoError(t, cfg.validate())
}

func TestTermination_String(t *testing.T) {
	assert.Equal(t, "normal", TerminatedNormal.String())
	assert.Equal(t, "cutoff", TerminatedCutoff.String())
	assert.Equal(t, "termination(7)", Termination(7).String())
}
