// Package metrics records planning run statistics. Each run gets its own
// registry; the CLI writes it as a Prometheus textfile for node_exporter's
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the collectors of one run.
type Recorder struct {
	reg *prometheus.Registry

	BundlesDiscovered prometheus.Gauge
	PlanSteps         *prometheus.GaugeVec
	BundleErrors      *prometheus.CounterVec
	PhaseDuration     *prometheus.HistogramVec
	PlanVersion       prometheus.Gauge
	LastRun           prometheus.Gauge
}

// New creates a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		BundlesDiscovered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "assetgrid_bundles_discovered",
				Help: "Number of bundles found by the last discovery pass",
			},
		),
		PlanSteps: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetgrid_plan_steps",
				Help: "Number of planned steps per step kind",
			},
			[]string{"kind"},
		),
		BundleErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetgrid_bundle_errors_total",
				Help: "Number of per-bundle problems, by type",
			},
			[]string{"error_type"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetgrid_phase_duration_seconds",
				Help:    "Duration of each planning phase in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"phase"},
		),
		PlanVersion: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "assetgrid_plan_version",
				Help: "Version token embedded in the last plan",
			},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "assetgrid_last_run_timestamp_seconds",
				Help: "Unix timestamp of the last completed planning run",
			},
		),
	}
}

// Registry exposes the underlying registry, e.g. for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObservePhase records how long phase took since start.
func (r *Recorder) ObservePhase(phase string, start time.Time) {
	r.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
