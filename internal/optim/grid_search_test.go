package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
)

func sirGrid(t *testing.T, goal Goal) *GridSearch {
	t.Helper()
	g, err := NewGridSearch(
		[]string{"reproductionNumber", "infectiousPeriod"},
		[][]float64{{1.5, 2, 3}, {5, 10}},
		goal,
	)
	require.NoError(t, err)
	return g
}

func TestNewGridSearch_Mismatch(t *testing.T) {
	_, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}, Minimize)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"a"}, [][]float64{{}}, Minimize)
	assert.Error(t, err)
}

func TestGridSearch_Advance(t *testing.T) {
	g := sirGrid(t, Minimize)
	assert.Equal(t, 6, g.Size())

	idx := []int{0, 0}
	var seen [][]int
	for {
		seen = append(seen, append([]int(nil), idx...))
		if !g.advance(idx) {
			break
		}
	}
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}, seen)
}

func TestGridSearch_Maximize(t *testing.T) {
	build := Builder(experiment.NewRegistry(), &config.Config{Model: "sir", Dt: 0.5, Duration: 100})

	best, err := sirGrid(t, Maximize).Search(context.Background(), build, "peak_infectious")
	require.NoError(t, err)
	assert.Equal(t, 6, best.Evaluated)
	assert.Equal(t, 3.0, best.Params["reproductionNumber"])
}

func TestGridSearch_Minimize(t *testing.T) {
	build := Builder(experiment.NewRegistry(), &config.Config{Model: "sir", Dt: 0.5, Duration: 100})

	best, err := sirGrid(t, Minimize).Search(context.Background(), build, "peak_infectious")
	require.NoError(t, err)
	assert.Equal(t, 1.5, best.Params["reproductionNumber"])
	assert.Less(t, best.Value, 50000.0)
}

func TestGridSearch_NoUsablePoint(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{9.8}}, Minimize)
	require.NoError(t, err)

	build := Builder(experiment.NewRegistry(), &config.Config{Model: "sir"})
	_, err = g.Search(context.Background(), build, "peak_infectious")
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestGridSearch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	build := Builder(experiment.NewRegistry(), &config.Config{Model: "sir"})
	best, err := sirGrid(t, Minimize).Search(ctx, build, "peak_infectious")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, best.Evaluated)
}
