// Package metrics exports analysis run metrics in Prometheus format
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samijaber1/bloomwatch/internal/analysis"
)

// Run outcomes
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Recorder holds the collectors of one process on a private registry
type Recorder struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	sectionsTotal  *prometheus.CounterVec
	uptimePercent  *prometheus.GaugeVec
	tankRotation   *prometheus.GaugeVec
	timeoutSources *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers its collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloomwatch_runs_total",
				Help: "Analysis runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bloomwatch_run_duration_seconds",
				Help:    "Time taken by one analysis run",
				Buckets: prometheus.DefBuckets,
			},
		),

		sectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloomwatch_sections_total",
				Help: "Rotation sections produced, by closure reason",
			},
			[]string{"closure"},
		),

		uptimePercent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bloomwatch_lifebloom_uptime_percent",
				Help: "Tracked buff uptime of the last run per participant",
			},
			[]string{"participant", "encounter"},
		),

		tankRotation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bloomwatch_tank_rotation_percent",
				Help: "Share of identified rotations opened on a tank in the last run per participant",
			},
			[]string{"participant", "encounter"},
		),

		timeoutSources: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bloomwatch_timeout_policy_total",
				Help: "Rotation timeout policies by source",
			},
			[]string{"source"},
		),
	}

	r.registry.MustRegister(
		r.runsTotal,
		r.runDuration,
		r.sectionsTotal,
		r.uptimePercent,
		r.tankRotation,
		r.timeoutSources,
	)

	return r
}

// ObserveRun records a finished run. A nil result counts as a failure.
func (r *Recorder) ObserveRun(result *analysis.Result, elapsed time.Duration) {
	r.runDuration.Observe(elapsed.Seconds())
	if result == nil {
		r.runsTotal.WithLabelValues(OutcomeFailed).Inc()
		return
	}

	r.runsTotal.WithLabelValues(OutcomeOK).Inc()
	for _, s := range result.Sections {
		r.sectionsTotal.WithLabelValues(string(s.Closure)).Inc()
	}
	r.timeoutSources.WithLabelValues(result.Policy.Source).Inc()

	encounter := result.Fight.Name
	r.uptimePercent.WithLabelValues(result.Participant, encounter).Set(result.Uptime.Percent)
	r.tankRotation.WithLabelValues(result.Participant, encounter).Set(result.Summary.TankRotationPercent)
}

// ObserveSkip records a run skipped because it was already stored
func (r *Recorder) ObserveSkip() {
	r.runsTotal.WithLabelValues(OutcomeSkipped).Inc()
}

// Registry exposes the private registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
