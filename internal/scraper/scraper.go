// Package scraper defines the extraction-job contract and the per-venue
// strategies that implement it.  A Scraper fetches one venue's programme
// and returns raw screenings; how it does that (JSON API, text feed, …) is
// its own business and invisible to the runner.  New venues plug in by
// adding a strategy, or reusing an existing one with different parameters,
// and wiring it in the catalog.
package scraper

import (
	"context"
	"fmt"

	"github.com/filmbill/filmbill/internal/model"
)

// Scraper is the extraction-job contract.  Scrape must return the complete
// in-memory programme for its venue(s) or fail; there is no partial
// success, because persistence only happens after the full sequence is
// collected and validated.
type Scraper interface {
	Scrape(ctx context.Context) ([]model.RawScreening, error)
}

// ExtractionError reports that a venue's upstream site was unreachable or
// unparsable.  It is retryable by the orchestrator: the usual cause is a
// transient outage, the interesting cause is a silent site redesign, and
// the health monitor catches the latter either way.
type ExtractionError struct {
	VenueID string // canonical venue the job was extracting for
	Reason  string // short diagnostic, safe to surface to operators
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.VenueID, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.VenueID, e.Reason)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *ExtractionError) Unwrap() error { return e.Err }

// extractionErrf builds an ExtractionError with a formatted reason.
func extractionErrf(venueID string, err error, format string, args ...any) *ExtractionError {
	return &ExtractionError{VenueID: venueID, Reason: fmt.Sprintf(format, args...), Err: err}
}
