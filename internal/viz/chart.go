package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/solution"
)

var ErrNothingToPlot = errors.New("nothing to plot")

type ChartOptions struct {
	Width, Height int
	Caption       string
	Theme         Theme
	// Color off leaves out escape codes, for files and tests.
	Color bool
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 15
	}
	if o.Theme.Name == "" {
		o.Theme = Themes[0]
	}
	return o
}

// RenderSeries plots the given keys of tr on one set of axes. Missing
// values leave gaps. Keys that are absent or hold no value at all are
// skipped; if none remain ErrNothingToPlot is returned.
func RenderSeries(tr *solution.Trace, keys []string, opts ChartOptions) (string, error) {
	opts = opts.withDefaults()

	var data [][]float64
	var plotted []string
	for _, k := range keys {
		if !tr.Has(k) {
			continue
		}
		ys := tr.Floats(k)
		if !anyFinite(ys) {
			continue
		}
		data = append(data, ys)
		plotted = append(plotted, k)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%v: %w", keys, ErrNothingToPlot)
	}

	options := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
	}
	if opts.Caption != "" {
		options = append(options, asciigraph.Caption(opts.Caption))
	}
	if opts.Color {
		colors := make([]asciigraph.AnsiColor, len(plotted))
		for i := range plotted {
			colors[i] = opts.Theme.SeriesColor(i)
		}
		options = append(options, asciigraph.SeriesColors(colors...))
	}

	graph := asciigraph.PlotMany(data, options...)
	return graph + "\n" + legend(plotted, opts), nil
}

// RenderChart draws a model chart: its trace keys, or its function sampled
// across the domain.
func RenderChart(c dynamo.Chart, tr *solution.Trace, opts ChartOptions) (string, error) {
	if opts.Caption == "" {
		opts.Caption = c.Title
		if c.XLabel != "" {
			opts.Caption += " (" + c.XLabel + ")"
		}
	}
	if !c.IsFunction() {
		return RenderSeries(tr, c.Keys, opts)
	}

	opts = opts.withDefaults()
	_, ys := dynamo.Sample(c, opts.Width)
	if !anyFinite(ys) {
		return "", fmt.Errorf("%s: %w", c.ID, ErrNothingToPlot)
	}
	caption := fmt.Sprintf("%s [%g, %g]", opts.Caption, c.Domain[0], c.Domain[1])
	return asciigraph.Plot(ys,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	), nil
}

func legend(keys []string, opts ChartOptions) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		label := "■ " + k
		if opts.Color {
			label = opts.Theme.seriesStyle(i).Render(label)
		}
		parts[i] = label
	}
	return strings.Join(parts, "  ")
}

func anyFinite(vs []float64) bool {
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
