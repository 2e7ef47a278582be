package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/experiment"
)

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tINTEG\tDT\tDURATION\tDESCRIPTION")
	for _, name := range registry.ListModels() {
		e, err := registry.GetModel(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%s\n", e.Name, e.Integrator, e.Dt, e.Duration, e.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func showParams(cmd *cobra.Command, args []string) error {
	e, err := experiment.NewRegistry().GetModel(args[0])
	if err != nil {
		return err
	}
	defaults := e.Defaults()
	m := e.New()

	labels := make(map[string]string)
	if d, ok := m.(dynamo.Describer); ok {
		fmt.Printf("%s\n\n", d.Title())
		for _, s := range d.ParamSpecs() {
			labels[s.Key] = s.Label
		}
	}

	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tDEFAULT\tLABEL")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%g\t%s\n", k, defaults[k], labels[k])
	}
	return w.Flush()
}
