package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/solution"
)

type ExportData struct {
	Model       string                      `json:"model"`
	Integrator  string                      `json:"integrator"`
	Dt          float64                     `json:"dt"`
	Duration    float64                     `json:"duration"`
	Termination string                      `json:"termination"`
	Steps       int                         `json:"steps"`
	Times       []float64                   `json:"times"`
	Series      map[string][]solution.Value `json:"series"`
	Metrics     map[string]solution.Value   `json:"metrics"`
}

func NewExportData(integrator string, dt, duration float64, result *sim.Result) ExportData {
	data := ExportData{
		Model:       result.Model,
		Integrator:  integrator,
		Dt:          dt,
		Duration:    duration,
		Termination: result.Termination.String(),
		Steps:       result.StepsTaken,
		Times:       result.Times,
		Series:      make(map[string][]solution.Value),
		Metrics:     values(result.Metrics),
	}
	for _, k := range result.Trace.Keys() {
		data.Series[k] = result.Trace.Series(k)
	}
	return data
}

// WriteJSON encodes data with no-value markers as null.
func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

// FromStored rebuilds export data from a saved run.
func FromStored(meta *RunMetadata, times []float64, tr *solution.Trace) ExportData {
	data := ExportData{
		Model:       meta.Model,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Termination: meta.Termination,
		Steps:       meta.StepsTaken,
		Times:       times,
		Series:      make(map[string][]solution.Value),
		Metrics:     meta.Metrics,
	}
	for _, k := range tr.Keys() {
		data.Series[k] = tr.Series(k)
	}
	return data
}
