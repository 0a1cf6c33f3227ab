// Package metrics exposes the Prometheus instrumentation for the
// ingestion core.  Collectors are package-level and registered on the
// default registry; the router serves them at GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts runner invocations by venue and outcome
	// ("ok", "extraction_error", "validation_error", "persistence_error",
	// "blocked", "unknown_venue").
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmbill_runs_total",
		Help: "Scraper runner invocations by venue and outcome.",
	}, []string{"venue", "outcome"})

	// RunDuration observes wall-clock run duration per venue.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filmbill_run_duration_seconds",
		Help:    "Wall-clock duration of scraper runs.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"venue"})

	// ScreeningsSaved counts screenings handed to the store.
	ScreeningsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmbill_screenings_saved_total",
		Help: "Screenings written or refreshed by the ingestion pipeline.",
	})

	// ContaminationDetected counts booking URLs nulled at ingest time.
	ContaminationDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmbill_contamination_detected_total",
		Help: "Cross-chain booking URLs detected and nulled during ingestion.",
	})

	// ContaminationRepaired counts rows nulled by maintenance repair.
	ContaminationRepaired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filmbill_contamination_repaired_total",
		Help: "Booking URLs nulled by the contamination repair operation.",
	})

	// HealthChecksTotal counts per-venue health evaluations by severity.
	HealthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmbill_health_checks_total",
		Help: "Per-venue health evaluations by resulting severity.",
	}, []string{"venue", "severity"})

	// AlertsSent counts dispatched health alerts by severity.
	AlertsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filmbill_health_alerts_sent_total",
		Help: "Health alerts dispatched after deduplication.",
	}, []string{"venue", "severity"})
)
