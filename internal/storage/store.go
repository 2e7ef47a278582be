package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/sim"
	"github.com/san-kum/popsim/internal/solution"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string                    `json:"id"`
	Model         string                    `json:"model"`
	Timestamp     time.Time                 `json:"timestamp"`
	Dt            float64                   `json:"dt"`
	Duration      float64                   `json:"duration"`
	Cutoff        float64                   `json:"cutoff,omitempty"`
	Integrator    string                    `json:"integrator"`
	Termination   string                    `json:"termination"`
	StepsTaken    int                       `json:"steps_taken"`
	Params        map[string]solution.Value `json:"params"`
	Interventions []sim.Intervention        `json:"interventions,omitempty"`
	Metrics       map[string]solution.Value `json:"metrics"`
	Keys          []string                  `json:"keys"`
}

// ParamSet returns the stored parameters; null entries come back as NaN.
func (m *RunMetadata) ParamSet() dynamo.Params {
	p := make(dynamo.Params, len(m.Params))
	for k, v := range m.Params {
		p[k] = v.Float()
	}
	return p
}

// Save writes the metadata and trace of one run into a new directory named
// after the model and a random id, and returns that id. A failed save leaves
// no directory behind.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Model, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, runID, cfg, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir, runID string, cfg *config.Config, result *sim.Result) error {
	meta := RunMetadata{
		ID:            runID,
		Model:         cfg.Model,
		Timestamp:     time.Now(),
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		Cutoff:        cfg.Cutoff,
		Integrator:    cfg.Integrator,
		Termination:   result.Termination.String(),
		StepsTaken:    result.StepsTaken,
		Params:        values(result.Params),
		Interventions: cfg.Interventions,
		Metrics:       values(result.Metrics),
		Keys:          result.Trace.Keys(),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(data, '\n'), 0644); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return err
	}
	if err := WriteCSV(csvFile, result.Times, result.Trace); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

// values keeps non-finite numbers, such as a peak of a key that never had a
// value or a rate derived from a zero period, representable in JSON.
func values(m map[string]float64) map[string]solution.Value {
	out := make(map[string]solution.Value, len(m))
	for k, v := range m {
		out[k] = solution.Of(v)
	}
	return out
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrace reads back the time axis and trace of a stored run.
func (s *Store) LoadTrace(runID string) ([]float64, *solution.Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}
