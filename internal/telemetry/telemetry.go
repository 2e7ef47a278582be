// Package telemetry exports run counters and timings in the Prometheus
// format. A Collector is a sim.Observer; attach it with sim.WithObserver.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/popsim/internal/sim"
)

type Collector struct {
	runs     *prometheus.CounterVec
	steps    *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

// NewCollector registers the popsim metrics on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "popsim_runs_total",
				Help: "Total number of finished simulation runs",
			},
			[]string{"model", "termination"},
		),
		steps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popsim_steps",
				Help:    "Steps taken per run",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
			[]string{"model"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "popsim_run_seconds",
				Help:    "Wall time per run",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"model"},
		),
	}
	for _, col := range []prometheus.Collector{c.runs, c.steps, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveRun(r sim.RunReport) {
	c.runs.WithLabelValues(r.Model, r.Termination.String()).Inc()
	c.steps.WithLabelValues(r.Model).Observe(float64(r.StepsTaken))
	c.duration.WithLabelValues(r.Model).Observe(r.Elapsed.Seconds())
}

// WriteFile writes everything gathered by g to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

var _ sim.Observer = (*Collector)(nil)
