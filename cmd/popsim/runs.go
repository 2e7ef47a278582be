package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/solution"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/viz"
)

func loadRun(runID string) (*storage.RunMetadata, []float64, *solution.Trace, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	times, tr, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, times, tr, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tSTEPS\tEND")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.StepsTaken,
			run.Termination,
		)
	}
	return w.Flush()
}

// storedCharts rebuilds the model of a stored run so that its charts,
// including function charts built during Initialize, can be drawn.
func storedCharts(meta *storage.RunMetadata) []dynamo.Chart {
	entry, err := experiment.NewRegistry().GetModel(meta.Model)
	if err != nil {
		return []dynamo.Chart{{ID: "all", Title: meta.Model, Keys: meta.Keys}}
	}
	m := entry.New()
	if _, err := m.Initialize(meta.ParamSet()); err != nil {
		logger.Warn("model rebuild failed", "model", meta.Model, "err", err)
	}
	charter, ok := m.(dynamo.Charter)
	if !ok {
		return []dynamo.Chart{{ID: "all", Title: meta.Model, Keys: meta.Keys}}
	}
	return charter.Charts()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, _, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", tr.Len())

	for _, c := range storedCharts(meta) {
		out, err := viz.RenderChart(c, tr, chartOptions())
		if err != nil {
			logger.Info("chart skipped", "chart", c.ID, "err", err)
			continue
		}
		fmt.Println(out)
		fmt.Println()
	}
	return nil
}

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one recorded key against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	cmd.Flags().StringVar(&xKey, "x", "", "key for the x-axis (first recorded key when unset)")
	cmd.Flags().StringVar(&yKey, "y", "", "key for the y-axis (second recorded key when unset)")
	return cmd
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, _, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	keys := tr.Keys()
	x, y := xKey, yKey
	if x == "" && len(keys) > 0 {
		x = keys[0]
	}
	if y == "" && len(keys) > 1 {
		y = keys[1]
	}

	portrait, err := analysis.NewPhasePortrait(tr, x, y)
	if err != nil {
		return err
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	minX, maxX, minY, maxY := portrait.Bounds()
	fmt.Printf("x: %s [%.4g, %.4g]  y: %s [%.4g, %.4g]\n\n", x, minX, maxX, y, minY, maxY)
	fmt.Print(viz.PhasePlot(portrait, 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, times, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tPEAK\tPEAK T\tFINAL\tPERIOD\tSPARK")
	for _, k := range tr.Keys() {
		ys := tr.Floats(k)
		peak, peakT := math.NaN(), math.NaN()
		for i, v := range ys {
			if !math.IsNaN(v) && (math.IsNaN(peak) || v > peak) {
				peak, peakT = v, times[i]
			}
		}
		final, _ := tr.Last(k)

		period := "-"
		if p, err := analysis.DominantPeriod(times, ys); err == nil && !math.IsInf(p, 0) {
			period = fmt.Sprintf("%.4g", p)
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.4g\t%s\t%s\t%s\n", k, peak, peakT, final, period, viz.Sparkline(ys, 24))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	first := tr.Keys()[0]
	ys := tr.Floats(first)
	n := 1
	for n*2 <= len(ys) {
		n *= 2
	}
	if n >= 8 {
		ps := analysis.PowerSpectrum(ys[:n])
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:max(len(ps)/4, 2)],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+first+")"),
		))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, times, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, times, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, times, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, storage.FromStored(meta, times, tr))
}

func replayRun(cmd *cobra.Command, args []string) error {
	meta, times, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.RunReplay(viz.NewReplay(meta.Model+" "+meta.ID, times, tr, viz.GetTheme(themeName)))
}
