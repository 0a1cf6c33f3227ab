package health

import (
	"context"
	"log"
	"time"

	"github.com/filmbill/filmbill/internal/model"
)

// Alert is one dispatched health notification.  Only Warning and Critical
// classifications ever become alerts; Healthy venues are reported in the
// aggregate report and nowhere else.
type Alert struct {
	VenueID   string         `json:"venue_id"`
	Severity  model.Severity `json:"severity"`
	Message   string         `json:"message"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Sink is an alert destination.
type Sink interface {
	Send(ctx context.Context, a Alert) error
	Name() string
}

// Dispatcher routes alerts to every configured sink.  A failing sink is
// logged and skipped; alerting must never take the health check down.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Dispatch sends an alert to all sinks.
func (d *Dispatcher) Dispatch(ctx context.Context, a Alert) {
	for _, s := range d.sinks {
		if err := s.Send(ctx, a); err != nil {
			log.Printf("health: alert sink %s failed for venue=%s: %v", s.Name(), a.VenueID, err)
		}
	}
}

// LogSink writes alerts to the process log.  It is always configured, so
// an operator tailing the log sees every alert even when the queue sink
// is down.
type LogSink struct{}

// Name returns the sink identifier.
func (LogSink) Name() string { return "log" }

// Send writes the alert to the process log.
func (LogSink) Send(_ context.Context, a Alert) error {
	log.Printf("health: ALERT [%s] venue=%s %s", a.Severity, a.VenueID, a.Message)
	return nil
}
