package runner

import (
	"fmt"
	"strings"
	"time"

	"github.com/filmbill/filmbill/internal/config"
	"github.com/filmbill/filmbill/internal/model"
)

// ValidationError reports that a scrape produced data failing the venue
// sanity rules.  It is not retried automatically: the same site will
// produce the same garbage, so it is surfaced for investigation and the
// results never reach the ingestion pipeline.
type ValidationError struct {
	VenueID    string
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.VenueID, strings.Join(e.Violations, "; "))
}

// maxReportedViolations caps the violation list so one broken feed does
// not produce a megabyte of diagnostics.
const maxReportedViolations = 10

// validate checks a raw batch against the venue sanity rules: the batch is
// non-empty, titles are non-empty, and showtimes fall inside a plausible
// window (yesterday through cfg.ForwardWindowDays ahead — a backdated or
// far-future programme means the scraper is reading the wrong fields).
func validate(venueID string, raws []model.RawScreening, cfg config.RunnerConfig, now time.Time) error {
	if len(raws) == 0 {
		return &ValidationError{VenueID: venueID, Violations: []string{"scrape produced zero screenings"}}
	}

	earliest := now.Add(-24 * time.Hour)
	latest := now.AddDate(0, 0, cfg.ForwardWindowDays)

	var violations []string
	add := func(format string, args ...any) {
		if len(violations) < maxReportedViolations {
			violations = append(violations, fmt.Sprintf(format, args...))
		}
	}

	for i, raw := range raws {
		if strings.TrimSpace(raw.Title) == "" {
			add("record %d: empty title", i)
		}
		if raw.StartsAt.IsZero() {
			add("record %d (%q): zero start time", i, raw.Title)
			continue
		}
		if raw.StartsAt.Before(earliest) {
			add("record %d (%q): start %s is in the past", i, raw.Title, raw.StartsAt.Format(time.RFC3339))
		}
		if raw.StartsAt.After(latest) {
			add("record %d (%q): start %s is beyond the %d-day window", i, raw.Title, raw.StartsAt.Format(time.RFC3339), cfg.ForwardWindowDays)
		}
	}

	if len(violations) > 0 {
		return &ValidationError{VenueID: venueID, Violations: violations}
	}
	return nil
}
