package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/integrators"
	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/models"
	"github.com/san-kum/popsim/internal/sim"
)

// Entry is a registered model with the run settings it works best with.
type Entry struct {
	Name        string
	Description string
	New         func() dynamo.Model
	Defaults    func() dynamo.Params
	Integrator  string
	Dt          float64
	Duration    float64
	Cutoff      float64
	// Watch names the key most metrics summarise.
	Watch string
	// Closed models only move people between compartments, so their total
	// is conserved.
	Closed bool
}

type Registry struct {
	models map[string]Entry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Entry)}

	r.Register(Entry{
		Name: "sir", Description: "susceptible, infectious, recovered",
		New: func() dynamo.Model { return models.NewSIR() }, Defaults: models.SIRDefaults,
		Integrator: "rk4", Dt: 0.5, Duration: 100, Watch: "infectious", Closed: true,
	})
	r.Register(Entry{
		Name: "sis", Description: "recovery without immunity",
		New: func() dynamo.Model { return models.NewSIS() }, Defaults: models.SISDefaults,
		Integrator: "rk4", Dt: 0.5, Duration: 100, Watch: "infectious", Closed: true,
	})
	r.Register(Entry{
		Name: "seir", Description: "latent stage and disease deaths",
		New: func() dynamo.Model { return models.NewSEIR() }, Defaults: models.SEIRDefaults,
		Integrator: "rk4", Dt: 0.5, Duration: 100, Watch: "infectious",
	})
	r.Register(Entry{
		Name: "seirs", Description: "seir with waning immunity",
		New: func() dynamo.Model { return models.NewSEIRS() }, Defaults: models.SEIRSDefaults,
		Integrator: "rk4", Dt: 0.5, Duration: 100, Watch: "infectious",
	})
	r.Register(Entry{
		Name: "ebola", Description: "hospital capacity and unsafe burial",
		New: func() dynamo.Model { return models.NewEbola() }, Defaults: models.EbolaDefaults,
		Integrator: "rk4", Dt: 0.5, Duration: 100, Watch: "infectious", Closed: true,
	})
	r.Register(Entry{
		Name: "predator-prey", Description: "lotka-volterra cycles",
		New: func() dynamo.Model { return models.NewPredatorPrey() }, Defaults: models.PredatorPreyDefaults,
		Integrator: "rk4", Dt: 0.1, Duration: 200, Watch: "prey",
	})
	r.Register(Entry{
		Name: "fiscal-state", Description: "turchin demographic-fiscal model",
		New: func() dynamo.Model { return models.NewFiscalState() }, Defaults: models.FiscalStateDefaults,
		Integrator: "euler", Dt: 1, Duration: 600, Watch: "population",
	})
	r.Register(Entry{
		Name: "keen", Description: "keen-minsky debt dynamics",
		New: func() dynamo.Model { return models.NewKeen() }, Defaults: models.KeenDefaults,
		Integrator: "rk4", Dt: 0.05, Duration: 100, Cutoff: 1e6, Watch: "debtRatio",
	})
	r.Register(Entry{
		Name: "elite", Description: "turchin elites, producers and the state",
		New: func() dynamo.Model { return models.NewElite() }, Defaults: models.EliteDefaults,
		Integrator: "rk4", Dt: 1, Duration: 400, Watch: "elite",
	})
	r.Register(Entry{
		Name: "property", Description: "mortgage against renting and investing",
		New: func() dynamo.Model { return models.NewProperty() }, Defaults: models.PropertyDefaults,
		Integrator: "rk4", Dt: 1, Duration: 30, Watch: "propertyProfit",
	})

	return r
}

func (r *Registry) Register(e Entry) {
	r.models[e.Name] = e
}

func (r *Registry) GetModel(name string) (Entry, error) {
	e, ok := r.models[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown model: %s", name)
	}
	return e, nil
}

// GetIntegrator returns a builder of fresh steppers of the named kind.
func (r *Registry) GetIntegrator(name string) (func() integrators.Stepper, error) {
	return integrators.Constructor(name)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics summarises the watched key, checks the state against the
// model's cutoff and, for closed models, monitors conservation of the total.
func (r *Registry) DefaultMetrics(model string) []sim.Metric {
	e, ok := r.models[model]
	if !ok || e.Watch == "" {
		return nil
	}
	ceiling := e.Cutoff
	if ceiling == 0 {
		ceiling = sim.DefaultCutoff
	}
	out := []sim.Metric{
		metrics.NewPeak(e.Watch),
		metrics.NewPeakTime(e.Watch),
		metrics.NewFinal(e.Watch),
		metrics.NewStability(ceiling),
	}
	if e.Closed {
		out = append(out, metrics.NewDrift())
	}
	return out
}
