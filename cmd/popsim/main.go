package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/experiment"
	"github.com/san-kum/popsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	themeName string

	dt         float64
	duration   float64
	cutoff     float64
	integrator string
	configFile string
	preset     string
	sets       []string
	showPlot   bool

	xKey string
	yKey string

	logger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "popsim",
		Short: "system dynamics lab for epidemics, ecology and economies",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunBrowser(experiment.NewRegistry(), viz.GetTheme(themeName))
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".popsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "clinic", "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	rootCmd.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		&cobra.Command{Use: "list", Short: "list stored runs", Args: cobra.NoArgs, RunE: listRuns},
		&cobra.Command{Use: "plot [run_id]", Short: "plot a stored run", Args: cobra.ExactArgs(1), RunE: plotRun},
		newPhaseCmd(),
		&cobra.Command{Use: "analyze [run_id]", Short: "peaks and cycle periods of a stored run", Args: cobra.ExactArgs(1), RunE: analyzeRun},
		&cobra.Command{Use: "export-csv [run_id]", Short: "write a stored trace as CSV to stdout", Args: cobra.ExactArgs(1), RunE: exportCSV},
		&cobra.Command{Use: "export-json [run_id]", Short: "write a stored run as JSON to stdout", Args: cobra.ExactArgs(1), RunE: exportJSON},
		&cobra.Command{Use: "replay [run_id]", Short: "step through a stored run", Args: cobra.ExactArgs(1), RunE: replayRun},
		&cobra.Command{Use: "tui", Short: "pick, tune and run a model interactively", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunBrowser(experiment.NewRegistry(), viz.GetTheme(themeName))
		}},
		newSweepCmd(),
		newMonteCarloCmd(),
		newOptimizeCmd(),
		newBifurcationCmd(),
		&cobra.Command{Use: "scenario [file]", Short: "run a YAML scenario", Args: cobra.ExactArgs(1), RunE: runScenario},
		&cobra.Command{Use: "models", Short: "list registered models", Args: cobra.NoArgs, RunE: listModels},
		&cobra.Command{Use: "presets [model]", Short: "list presets for a model", Args: cobra.ExactArgs(1), RunE: listPresets},
		&cobra.Command{Use: "params [model]", Short: "show a model's parameters", Args: cobra.ExactArgs(1), RunE: showParams},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

// addRunFlags registers the flags that override a config file or preset.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (model default when unset)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (model default when unset)")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "divergence ceiling")
	cmd.Flags().StringVar(&integrator, "integrator", "", "euler or rk4")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "parameter override key=value, repeatable")
}

// resolveConfig builds the run config from a preset or config file, then
// applies the flags the user actually set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	if preset != "" && configFile != "" {
		return nil, fmt.Errorf("--preset and --config are exclusive")
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		cfg.SetParam(k, v)
	}
	return cfg, nil
}
