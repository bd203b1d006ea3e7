// internal/common/metrics/metrics.go
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// Registry holds the counters of one CLI run. The CLI is short-lived, so the
// values are exported through a node-exporter textfile rather than scraped.
type Registry struct {
	reg *prometheus.Registry

	SeededResources *prometheus.CounterVec
	APIRequests     *prometheus.CounterVec
	APIRetries      *prometheus.CounterVec
	PhaseDuration   *prometheus.HistogramVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		SeededResources: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_resources_total",
				Help: "Resources submitted to Formbricks by kind and outcome",
			},
			[]string{"resource", "outcome"},
		),
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_api_requests_total",
				Help: "HTTP requests issued per API surface and status class",
			},
			[]string{"surface", "status"},
		),
		APIRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seeder_api_retries_total",
				Help: "Backoff retries per API surface",
			},
			[]string{"surface"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seeder_phase_duration_seconds",
				Help:    "Duration of each seeding phase",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"phase"},
		),
	}
}

// Registerer exposes the underlying registry, e.g. for the OpenTelemetry bridge.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// RecordResource counts one seeding outcome.
func (r *Registry) RecordResource(resource string, created bool) {
	outcome := OutcomeFailed
	if created {
		outcome = OutcomeCreated
	}
	r.SeededResources.WithLabelValues(resource, outcome).Inc()
}

// RecordRequest counts one HTTP exchange; status 0 means a transport error.
func (r *Registry) RecordRequest(surface string, status int) {
	r.APIRequests.WithLabelValues(surface, StatusClass(status)).Inc()
}

func (r *Registry) RecordRetry(surface string) {
	r.APIRetries.WithLabelValues(surface).Inc()
}

func (r *Registry) ObservePhase(phase string, d time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// StatusClass maps an HTTP status to 2xx/4xx/5xx, or "error" for 0.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", status/100)
}
