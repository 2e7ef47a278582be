package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/viz"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a model and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(cmd)
	cmd.Flags().BoolVar(&showPlot, "plot", false, "print the model's charts after the run")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(registry, cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}
	for _, m := range registry.DefaultMetrics(cfg.Model) {
		exp.GetSimulator().AddMetric(m)
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, err := exp.Run()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Config(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (%s)\n", result.StepsTaken, result.Termination)
	printMetrics(result.Metrics)

	if showPlot {
		if charter, ok := exp.GetSimulator().Model().(dynamo.Charter); ok {
			for _, c := range charter.Charts() {
				out, err := viz.RenderChart(c, result.Trace, chartOptions())
				if err != nil {
					logger.Warn("chart skipped", "chart", c.ID, "err", err)
					continue
				}
				fmt.Println(out)
				fmt.Println()
			}
		}
	}
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func chartOptions() viz.ChartOptions {
	return viz.ChartOptions{Width: 80, Height: 12, Theme: viz.GetTheme(themeName), Color: true}
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "run one model under several integrators",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(cmd)
	return cmd
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tEND\tTIME\tMETRICS")

	for _, name := range args[1:] {
		cfg, err := resolveConfig(cmd, args[:1])
		if err != nil {
			return err
		}
		cfg.Integrator = name

		exp, err := experiment.New(registry, cfg, sim.WithLogger(logger))
		if err != nil {
			return err
		}
		for _, m := range registry.DefaultMetrics(cfg.Model) {
			exp.GetSimulator().AddMetric(m)
		}

		start := time.Now()
		result, err := exp.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%s\n", name, result.StepsTaken, result.Termination, time.Since(start).Round(time.Microsecond), summary(result.Metrics))
	}
	return w.Flush()
}

func summary(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, name := range names {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.4g", name, m[name])
	}
	return out
}
