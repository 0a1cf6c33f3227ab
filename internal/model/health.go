package model

import "time"

// Severity classifies one venue's extraction health at one check.
type Severity string

// Severity values, ordered from best to worst.
const (
	SeverityHealthy  Severity = "HEALTHY"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns an integer ordering for severities so callers can compare
// them ("escalated since last alert").  Higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 0
	}
}

// HealthMetrics captures the outcome of evaluating one venue at one health
// check.  Everything here is derived from the venue's current screening
// count and its append-only snapshot history; there is no hidden state.
type HealthMetrics struct {
	VenueID         string    // canonical venue ID
	Count           int       // upcoming screenings observed at this check
	Baseline        float64   // rolling average over recent snapshots (0 when no history)
	ZeroResult      bool      // Count == 0, or the latest run failed or produced nothing
	Warnings        []string  // human-readable heuristics that triggered
	Severity        Severity  // classification for this check
	AnomalyDetected bool      // Severity != HEALTHY
	ShouldBlockNext bool      // circuit breaker: suppress the next run for this venue
	CheckedAt       time.Time // UTC evaluation time
}

// HealthSnapshot is one persisted HealthMetrics row.  Snapshots are
// append-only: they are inserted at check time and never mutated, so the
// history is always a faithful record of past classifications.
// This struct corresponds to a row in the `health_snapshots` table.
type HealthSnapshot struct {
	ID        uint64    // health_snapshots.id
	VenueID   string    // health_snapshots.venue_id
	Count     int       // health_snapshots.count
	Baseline  float64   // health_snapshots.baseline
	Severity  Severity  // health_snapshots.severity
	Warnings  []string  // health_snapshots.warnings (newline separated in the DB)
	Alerted   bool      // health_snapshots.alerted (an alert was dispatched at insert time)
	CheckedAt time.Time // health_snapshots.checked_at (UTC)
}

// HealthReport aggregates one full health check over all active venues.
type HealthReport struct {
	Healthy   int               // venues classified HEALTHY
	Warning   int               // venues classified WARNING
	Critical  int               // venues classified CRITICAL
	Metrics   []HealthMetrics   // per-venue results, registry order
	Errors    map[string]string // venueID -> evaluation error (check continued)
	CheckedAt time.Time         // UTC time the check started
}
