// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns scheduler messages into runs.
package queue

// ScrapeRequestedEvent asks for one venue extraction run.  The scheduler
// may send a canonical id or a legacy alias; the runner resolves it.
type ScrapeRequestedEvent struct {
	VenueID string `json:"venue_id"`
}

// HealthCheckRequestedEvent asks for a full health check.  The body is
// currently empty but kept as a struct so fields can be added without a
// wire break.
type HealthCheckRequestedEvent struct{}

// RunCompletedEvent is published after every extraction run, success or
// failure, so the scheduler can track outcomes without polling.
type RunCompletedEvent struct {
	RunID           string `json:"run_id"`
	VenueID         string `json:"venue_id"`
	OrchestrationID string `json:"orchestration_id"`
	Count           int    `json:"count"`
	DurationMS      int64  `json:"duration_ms"`
	Error           string `json:"error,omitempty"`
	FinishedAt      string `json:"finished_at"`
}

// HealthAlertEvent is published for venues at Warning or Critical severity
// after alert deduplication.
type HealthAlertEvent struct {
	VenueID   string `json:"venue_id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	CheckedAt string `json:"checked_at"`
}
