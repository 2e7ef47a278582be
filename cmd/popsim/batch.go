package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/analysis"
	"github.com/san-kum/popsim/internal/automation"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/optim"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/storage"
	"github.com/san-kum/popsim/internal/telemetry"
)

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newSweepCmd() *cobra.Command {
	var (
		param       string
		lo, hi      float64
		steps       int
		workers     int
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a model across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			collector, err := telemetry.NewCollector(reg)
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()

			sweep := &automation.ParameterSweep{
				Base: cfg, ParamName: param, ParamMin: lo, ParamMax: hi, NumSteps: steps, Workers: workers,
			}
			results, err := automation.RunSweep(ctx, sweep, experiment.NewRegistry(), logger,
				sim.WithLogger(logger), sim.WithObserver(collector))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tSTEPS\tEND\tMETRICS\n", strings.ToUpper(param))
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(w, "%.4g\t-\terror\t%v\n", r.ParamValue, r.Err)
					continue
				}
				fmt.Fprintf(w, "%.4g\t%d\t%s\t%s\n", r.ParamValue, r.StepsTaken, r.Termination, summary(r.Metrics))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := telemetry.WriteFile(metricsFile, reg); err != nil {
					return err
				}
				logger.Info("metrics written", "path", metricsFile)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&param, "param", "", "parameter to sweep")
	cmd.Flags().Float64Var(&lo, "min", 0, "first value")
	cmd.Flags().Float64Var(&hi, "max", 1, "last value")
	cmd.Flags().IntVar(&steps, "steps", 10, "number of values")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (one per CPU when 0)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	_ = cmd.MarkFlagRequired("param")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	var (
		params  []string
		perturb float64
		trials  int
		seed    int64
		workers int
	)
	cmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "perturb parameters randomly and count runs that stay bounded",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			ctx, cancel := interruptible()
			defer cancel()

			mc := &automation.MonteCarloConfig{
				Base: cfg, Params: params, Perturbation: perturb, NumTrials: trials, Seed: seed, Workers: workers,
			}
			results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), logger, sim.WithLogger(logger))
			if err != nil {
				return err
			}

			stable, unstable := automation.MonteCarloStats(results)
			fmt.Printf("trials: %d\n", len(results))
			fmt.Printf("stable: %d\n", stable)
			fmt.Printf("cut off or non-finite: %d\n", unstable)
			if failed := len(results) - stable - unstable; failed > 0 {
				fmt.Printf("failed: %d\n", failed)
			}
			if len(results) == 0 {
				return nil
			}

			names := make([]string, 0, len(results[0].Params))
			for k := range results[0].Params {
				names = append(names, k)
			}
			sort.Strings(names)
			fmt.Println()
			for _, name := range names {
				lo, hi := automation.Spread(results, func(r automation.MonteCarloResult) float64 { return r.Params[name] })
				fmt.Printf("  %-24s %.6g .. %.6g\n", name, lo, hi)
			}
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringSliceVar(&params, "params", nil, "parameters to perturb (all when empty)")
	cmd.Flags().Float64Var(&perturb, "perturb", 0.1, "largest relative change")
	cmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (time based when 0)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (one per CPU when 0)")
	return cmd
}

// parseGrid reads "name=v1,v2,v3".
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("--grid %q: want name=v1,v2,...", spec)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func newOptimizeCmd() *cobra.Command {
	var (
		grid     []string
		metric   string
		maximize bool
	)
	cmd := &cobra.Command{
		Use:   "optimize [model]",
		Short: "grid search for the parameters that minimise a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			goal := optim.Minimize
			if maximize {
				goal = optim.Maximize
			}
			search, err := optim.NewGridSearch(names, ranges, goal)
			if err != nil {
				return err
			}

			ctx, cancel := interruptible()
			defer cancel()

			logger.Info("grid search", "points", search.Size(), "metric", metric)
			best, err := search.Search(ctx, optim.Builder(experiment.NewRegistry(), cfg), metric)
			if err != nil {
				return err
			}

			fmt.Printf("evaluated: %d of %d\n", best.Evaluated, search.Size())
			fmt.Printf("%s: %.6g\n", metric, best.Value)
			for _, name := range names {
				fmt.Printf("  %s = %g\n", name, best.Params[name])
			}
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter values name=v1,v2,..., repeatable")
	cmd.Flags().StringVar(&metric, "metric", "", "metric to optimise, e.g. peak_infectious")
	cmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")
	_ = cmd.MarkFlagRequired("grid")
	_ = cmd.MarkFlagRequired("metric")
	return cmd
}

func newBifurcationCmd() *cobra.Command {
	var b analysis.Bifurcation
	cmd := &cobra.Command{
		Use:   "bifurcation [model]",
		Short: "long-run values of a key across a parameter range",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, args)
			if err != nil {
				return err
			}
			b.Base = cfg

			ctx, cancel := interruptible()
			defer cancel()

			points, err := analysis.BifurcationDiagram(ctx, experiment.NewRegistry(), b)
			if err != nil {
				return err
			}
			for _, p := range points {
				if p.Err != nil {
					logger.Warn("bifurcation point failed", "param", p.Param, "err", p.Err)
				}
			}
			fmt.Printf("%s vs %s\n\n", b.Key, b.Param)
			fmt.Print(analysis.BifurcationToASCII(points, 60, 20))
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&b.Param, "param", "", "parameter to vary")
	cmd.Flags().Float64Var(&b.Min, "min", 0, "first value")
	cmd.Flags().Float64Var(&b.Max, "max", 1, "last value")
	cmd.Flags().IntVar(&b.Steps, "steps", 40, "number of values")
	cmd.Flags().StringVar(&b.Key, "key", "", "recorded key to collect")
	cmd.Flags().Float64Var(&b.Transient, "transient", 0, "time to skip before collecting")
	cmd.Flags().Float64Var(&b.Resolution, "resolution", 0, "merge values closer than this")
	cmd.Flags().IntVar(&b.Workers, "workers", 0, "parallel runs (one per CPU when 0)")
	_ = cmd.MarkFlagRequired("param")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger, sim.WithLogger(logger))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tMODEL\tSTEPS\tEND\tRUN ID")
	for _, r := range results {
		runID, err := st.Save(r.Config, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.Label, r.Config.Model, r.Result.StepsTaken, r.Result.Termination, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
