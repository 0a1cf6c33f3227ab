// Package health watches each venue's extraction output for silent
// failures: a site redesign that makes a scraper return zero or garbage
// results long before any human notices.  Classification is recomputed at
// every check purely from the venue's current screening count and its
// append-only snapshot history, so a missed check or a restart cannot
// corrupt it.  The monitor reads the canonical store and writes only its
// own snapshot table.
package health

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/filmbill/filmbill/internal/config"
	"github.com/filmbill/filmbill/internal/metrics"
	"github.com/filmbill/filmbill/internal/model"
	"github.com/filmbill/filmbill/internal/registry"
)

// nontrivialBaseline is the rolling average below which a venue's history
// is considered too thin for a zero result to be alarming on its own.  A
// venue that normally lists two screenings a fortnight legitimately hits
// zero between programmes.
const nontrivialBaseline = 5.0

// SnapshotStore is the snapshot history contract.  *repository.SnapshotRepo
// satisfies it; tests use an in-memory fake.
type SnapshotStore interface {
	Append(ctx context.Context, s model.HealthSnapshot) error
	ListRecent(ctx context.Context, venueID string, limit int) ([]model.HealthSnapshot, error)
	LastAlerted(ctx context.Context, venueID string) (*model.HealthSnapshot, error)
	ListSince(ctx context.Context, venueID string, since time.Time) ([]model.HealthSnapshot, error)
}

// ScreeningCounter is the read-only store access the monitor needs.
type ScreeningCounter interface {
	CountUpcoming(ctx context.Context, venueID string, now, until time.Time) (int, error)
}

// RunHistory reads the run trail.  *repository.RunRepo satisfies it; a nil
// RunHistory disables the run signal and classification falls back to the
// store count alone.
type RunHistory interface {
	LatestByVenue(ctx context.Context, venueID string) (*model.RunResult, error)
}

// Monitor evaluates venue health.  Construct with NewMonitor.
type Monitor struct {
	cfg        config.HealthConfig
	reg        *registry.Registry
	snapshots  SnapshotStore
	screenings ScreeningCounter
	runs       RunHistory
	dispatcher *Dispatcher
	summarizer Summarizer
	now        func() time.Time // injectable clock for tests
}

// NewMonitor constructs a Monitor.  runs may be nil (no run signal),
// dispatcher may be nil (no alerting) and summarizer may be nil (falls
// back to the deterministic template).
func NewMonitor(cfg config.HealthConfig, reg *registry.Registry, snapshots SnapshotStore, screenings ScreeningCounter, runs RunHistory, dispatcher *Dispatcher, summarizer Summarizer) *Monitor {
	return &Monitor{
		cfg:        cfg,
		reg:        reg,
		snapshots:  snapshots,
		screenings: screenings,
		runs:       runs,
		dispatcher: dispatcher,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// Evaluate computes HealthMetrics for one venue from its current upcoming
// count and its snapshot history.  It performs no writes.
func (m *Monitor) Evaluate(ctx context.Context, venueID string) (model.HealthMetrics, error) {
	canonical, err := m.reg.ResolveCanonical(venueID)
	if err != nil {
		return model.HealthMetrics{}, err
	}

	now := m.now().UTC()
	count, err := m.screenings.CountUpcoming(ctx, canonical, now, now.Add(m.cfg.ForwardWindow))
	if err != nil {
		return model.HealthMetrics{}, fmt.Errorf("counting upcoming screenings for %s: %w", canonical, err)
	}

	history, err := m.snapshots.ListRecent(ctx, canonical, m.cfg.BaselineWindow)
	if err != nil {
		return model.HealthMetrics{}, fmt.Errorf("loading snapshot history for %s: %w", canonical, err)
	}

	// The run trail catches a scraper that went silent while old future
	// screenings still pad the store count.  A lookup failure degrades to
	// the store count alone rather than failing the evaluation.
	var lastRun *model.RunResult
	if m.runs != nil {
		lastRun, err = m.runs.LatestByVenue(ctx, canonical)
		if err != nil {
			log.Printf("health: venue=%s run history lookup failed, using store count only: %v", canonical, err)
			lastRun = nil
		}
	}

	metricsOut := m.classify(canonical, count, lastRun, history, now)
	metrics.HealthChecksTotal.WithLabelValues(canonical, string(metricsOut.Severity)).Inc()
	return metricsOut, nil
}

// classify applies the severity rules.  history is newest-first; lastRun
// may be nil when the venue has never been run or run history is disabled.
func (m *Monitor) classify(venueID string, count int, lastRun *model.RunResult, history []model.HealthSnapshot, now time.Time) model.HealthMetrics {
	out := model.HealthMetrics{
		VenueID:    venueID,
		Count:      count,
		Baseline:   baseline(history),
		ZeroResult: count == 0,
		Severity:   model.SeverityHealthy,
		CheckedAt:  now,
	}

	warn := func(format string, args ...any) {
		out.Warnings = append(out.Warnings, fmt.Sprintf(format, args...))
	}

	// A failed or empty latest run is a zero-result signal even while the
	// store still holds future screenings from earlier runs: the scraper
	// has already stopped producing, the count just has not drained yet.
	if lastRun != nil {
		switch {
		case lastRun.Err != nil:
			out.ZeroResult = true
			warn("latest run at %s failed: %v", lastRun.FinishedAt.Format(time.RFC3339), lastRun.Err)
		case lastRun.Count == 0:
			out.ZeroResult = true
			warn("latest run at %s returned no screenings", lastRun.FinishedAt.Format(time.RFC3339))
		}
	}

	switch {
	case len(history) < m.cfg.MinHistory || out.Baseline <= 0:
		// Not enough history to trust a baseline comparison.  A zero
		// result is still worth a look, but not worth blocking runs over.
		if out.ZeroResult {
			out.Severity = model.SeverityWarning
			warn("zero upcoming screenings (history too thin for baseline, %d snapshots)", len(history))
		}
	case out.ZeroResult:
		signal := "zero upcoming screenings"
		if count > 0 {
			signal = "no extraction output" // the zero signal came from the run trail
		}
		if out.Baseline >= nontrivialBaseline {
			out.Severity = model.SeverityCritical
			warn("%s against a baseline of %.1f", signal, out.Baseline)
		} else {
			// A venue that normally lists a couple of screenings
			// legitimately hits zero between programmes.
			out.Severity = model.SeverityWarning
			warn("%s against a small baseline of %.1f", signal, out.Baseline)
		}
	default:
		ratio := float64(count) / out.Baseline
		switch {
		case ratio < m.cfg.CriticalRatio:
			out.Severity = model.SeverityCritical
			warn("count %d is below %.0f%% of baseline %.1f", count, m.cfg.CriticalRatio*100, out.Baseline)
		case ratio < m.cfg.WarnRatio:
			out.Severity = model.SeverityWarning
			warn("count %d is below %.0f%% of baseline %.1f", count, m.cfg.WarnRatio*100, out.Baseline)
		}
	}

	// Escalate a persistent warning: the current warning plus the most
	// recent snapshots form an unbroken degraded streak.
	if out.Severity == model.SeverityWarning {
		streak := 1
		for _, s := range history {
			if s.Severity == model.SeverityHealthy {
				break
			}
			streak++
		}
		if streak >= m.cfg.ConsecutiveLimit {
			out.Severity = model.SeverityCritical
			warn("degraded for %d consecutive checks", streak)
		}
	}

	out.AnomalyDetected = out.Severity != model.SeverityHealthy
	out.ShouldBlockNext = out.Severity == model.SeverityCritical
	return out
}

// baseline computes the rolling average screening count over the history
// window.  Zero means "no usable history".
func baseline(history []model.HealthSnapshot) float64 {
	if len(history) == 0 {
		return 0
	}
	sum := 0
	for _, s := range history {
		sum += s.Count
	}
	return float64(sum) / float64(len(history))
}

// ShouldBlock derives the per-venue circuit breaker from snapshot history
// at read time.  A venue is blocked when its latest snapshot is Critical,
// or when its last ConsecutiveLimit snapshots are all degraded.  There is
// no stored flag to drift out of sync with the history that justified it.
func (m *Monitor) ShouldBlock(ctx context.Context, venueID string) (bool, string, error) {
	canonical, err := m.reg.ResolveCanonical(venueID)
	if err != nil {
		return false, "", err
	}
	history, err := m.snapshots.ListRecent(ctx, canonical, m.cfg.ConsecutiveLimit)
	if err != nil {
		return false, "", err
	}
	if len(history) == 0 {
		return false, "", nil
	}
	if history[0].Severity == model.SeverityCritical {
		return true, fmt.Sprintf("latest health check critical at %s", history[0].CheckedAt.Format(time.RFC3339)), nil
	}
	if len(history) >= m.cfg.ConsecutiveLimit {
		degraded := 0
		for _, s := range history {
			if s.Severity == model.SeverityHealthy {
				break
			}
			degraded++
		}
		if degraded >= m.cfg.ConsecutiveLimit {
			return true, fmt.Sprintf("degraded for %d consecutive checks", degraded), nil
		}
	}
	return false, "", nil
}

// History returns a venue's snapshot trail since the given time, newest
// first.  Operators use it to see when a venue degraded and whether an
// alert went out.
func (m *Monitor) History(ctx context.Context, venueID string, since time.Time) ([]model.HealthSnapshot, error) {
	canonical, err := m.reg.ResolveCanonical(venueID)
	if err != nil {
		return nil, err
	}
	return m.snapshots.ListSince(ctx, canonical, since)
}

// RunFullHealthCheck evaluates every active venue independently, persists
// one snapshot per venue, dispatches deduplicated alerts, and aggregates a
// report.  A failure evaluating one venue is recorded in the report and
// never aborts the rest of the check.
func (m *Monitor) RunFullHealthCheck(ctx context.Context) (*model.HealthReport, error) {
	report := &model.HealthReport{
		Errors:    make(map[string]string),
		CheckedAt: m.now().UTC(),
	}

	for _, venue := range m.reg.ActiveVenues() {
		hm, err := m.Evaluate(ctx, venue.ID)
		if err != nil {
			report.Errors[venue.ID] = err.Error()
			log.Printf("health: venue=%s evaluation failed: %v", venue.ID, err)
			continue
		}

		alerted := false
		if hm.Severity != model.SeverityHealthy && m.dispatcher != nil {
			should, err := m.shouldAlert(ctx, hm)
			if err != nil {
				log.Printf("health: venue=%s alert dedup check failed, suppressing: %v", venue.ID, err)
			} else if should {
				m.dispatcher.Dispatch(ctx, Alert{
					VenueID:   hm.VenueID,
					Severity:  hm.Severity,
					Message:   alertMessage(hm),
					CheckedAt: hm.CheckedAt,
				})
				metrics.AlertsSent.WithLabelValues(hm.VenueID, string(hm.Severity)).Inc()
				alerted = true
			}
		}

		snap := model.HealthSnapshot{
			VenueID:   hm.VenueID,
			Count:     hm.Count,
			Baseline:  hm.Baseline,
			Severity:  hm.Severity,
			Warnings:  hm.Warnings,
			Alerted:   alerted,
			CheckedAt: hm.CheckedAt,
		}
		if err := m.snapshots.Append(ctx, snap); err != nil {
			report.Errors[venue.ID] = fmt.Sprintf("snapshot write failed: %v", err)
			log.Printf("health: venue=%s snapshot write failed: %v", venue.ID, err)
			continue
		}

		report.Metrics = append(report.Metrics, hm)
		switch hm.Severity {
		case model.SeverityCritical:
			report.Critical++
		case model.SeverityWarning:
			report.Warning++
		default:
			report.Healthy++
		}
	}
	return report, nil
}

// shouldAlert implements the alert cadence policy: alert on a degraded
// venue only if it has never been alerted, or its severity escalated since
// the last alert, or at least AlertMinInterval has passed since the last
// alert.  A persistent unchanged condition therefore re-fires at most once
// per interval, not once per check.
func (m *Monitor) shouldAlert(ctx context.Context, hm model.HealthMetrics) (bool, error) {
	last, err := m.snapshots.LastAlerted(ctx, hm.VenueID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	if hm.Severity.Rank() > last.Severity.Rank() {
		return true, nil
	}
	return hm.CheckedAt.Sub(last.CheckedAt) >= m.cfg.AlertMinInterval, nil
}

func alertMessage(hm model.HealthMetrics) string {
	if len(hm.Warnings) > 0 {
		return hm.Warnings[0]
	}
	return fmt.Sprintf("count %d against baseline %.1f", hm.Count, hm.Baseline)
}
