package analysis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/sim"
)

// BifurcationPoint holds the distinct long-run values of a key for one
// parameter value. A fixed point gives one value, a cycle gives many.
type BifurcationPoint struct {
	Param  float64
	Values []float64
	Err    error
}

type Bifurcation struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	Steps    int
	Key      string
	// Transient is skipped before values are collected.
	Transient float64
	// Resolution merges values closer than this. Zero means 1e-3.
	Resolution float64
	Workers    int
}

// BifurcationDiagram runs one simulation per parameter value through a
// sim.Ensemble. Runs the model rejects are reported per point.
func BifurcationDiagram(ctx context.Context, reg *experiment.Registry, b Bifurcation) ([]BifurcationPoint, error) {
	factory, simCfg, err := experiment.Factory(reg, b.Base)
	if err != nil {
		return nil, err
	}
	if b.Transient >= simCfg.Duration {
		return nil, fmt.Errorf("transient %g leaves nothing of duration %g", b.Transient, simCfg.Duration)
	}
	res := b.Resolution
	if res <= 0 {
		res = 1e-3
	}
	steps := max(b.Steps, 2)
	width := (b.Max - b.Min) / float64(steps-1)

	jobs := make([]sim.Job, steps)
	for i := range jobs {
		v := b.Min + float64(i)*width
		jobs[i] = sim.Job{
			Label:  b.Param + "=" + strconv.FormatFloat(v, 'g', 6, 64),
			Params: map[string]any{b.Param: v},
			Config: simCfg,
		}
	}

	outcomes, err := sim.NewEnsemble(factory, b.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	points := make([]BifurcationPoint, len(outcomes))
	for i, o := range outcomes {
		points[i] = BifurcationPoint{Param: o.Job.Params[b.Param].(float64), Err: o.Err}
		if o.Err != nil {
			continue
		}
		if !o.Result.Trace.Has(b.Key) {
			points[i].Err = fmt.Errorf("no recorded key %q", b.Key)
			continue
		}
		points[i].Values = settled(o.Result.Times, o.Result.Trace.Floats(b.Key), b.Transient, res)
	}
	return points, nil
}

func settled(times, values []float64, transient, res float64) []float64 {
	seen := make(map[int64]bool)
	var out []float64
	for i, v := range values {
		if i >= len(times) || times[i] < transient || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		bucket := int64(math.Round(v / res))
		if !seen[bucket] {
			seen[bucket] = true
			out = append(out, v)
		}
	}
	return out
}

// BifurcationToASCII plots one column per parameter value.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return ""
	}
	if hi == lo {
		hi = lo + 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i, p := range data {
		col := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			row := height - 1 - int((v-lo)/(hi-lo)*float64(height-1))
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
