package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExponential(t *testing.T) {
	fn := Exponential(0.95, 0, 0.5, -0.01)
	assert.InDelta(t, 0, fn(0.95), 1e-12)
	assert.Greater(t, fn(1), fn(0.95))
	assert.InDelta(t, -0.01, fn(-100), 1e-9)
}

func TestLinear(t *testing.T) {
	fn := Linear(-4.8, 5)
	assert.InDelta(t, 0.2, fn(1), 1e-12)
}

func TestInverseSquare(t *testing.T) {
	fn := InverseSquare(1, 1, 1, 0.5)
	assert.InDelta(t, 0.5, fn(0), 1e-12)
	assert.True(t, math.IsInf(fn(1), 1))
}

func TestApproach(t *testing.T) {
	fn := Approach(1, 3, 10)
	assert.Equal(t, 1.0, fn(0))
	assert.InDelta(t, 2.5, fn(10), 1e-12)
	assert.Less(t, fn(1e9), 4.0)
}

func TestCapped(t *testing.T) {
	fn := Capped(Linear(0, 2), 1)
	assert.Equal(t, 1.0, fn(0.5))
	assert.Equal(t, 2.0, fn(5))

	pole := Capped(InverseSquare(0.0175, 0.53, 6, 0.065), 0.1)
	ceiling := pole(0.1)
	assert.LessOrEqual(t, pole(0.53/6-1e-6), ceiling)
	assert.Equal(t, ceiling, pole(1))
}
