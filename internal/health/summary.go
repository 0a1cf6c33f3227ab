package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/filmbill/filmbill/internal/model"
)

// Summarizer turns a health report into a short prose summary for chat
// notifications.  An AI-backed implementation can be plugged in at the
// boundary; the core never depends on one being present or working.
type Summarizer interface {
	Summarize(ctx context.Context, report *model.HealthReport) (string, error)
}

// GenerateHealthSummary produces the report summary.  If a Summarizer is
// configured and succeeds its text is used; otherwise the deterministic
// template below is the answer.  Summarizer failures are deliberately
// swallowed: a flaky enrichment must not degrade monitoring.
func (m *Monitor) GenerateHealthSummary(ctx context.Context, report *model.HealthReport) string {
	if m.summarizer != nil {
		if text, err := m.summarizer.Summarize(ctx, report); err == nil && text != "" {
			return text
		}
	}
	return templateSummary(report)
}

// templateSummary is the fallback plain-text report summary.
func templateSummary(report *model.HealthReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Venue health at %s: %d healthy, %d warning, %d critical.",
		report.CheckedAt.Format("2006-01-02 15:04 MST"), report.Healthy, report.Warning, report.Critical)

	for _, hm := range report.Metrics {
		if hm.Severity == model.SeverityHealthy {
			continue
		}
		fmt.Fprintf(&b, "\n- %s [%s]: %s", hm.VenueID, hm.Severity, alertMessage(hm))
	}
	for venueID, msg := range report.Errors {
		fmt.Fprintf(&b, "\n- %s [UNCHECKED]: %s", venueID, msg)
	}
	return b.String()
}
