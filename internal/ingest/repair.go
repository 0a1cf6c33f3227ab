package ingest

import (
	"context"
	"log"
	"time"

	"github.com/filmbill/filmbill/internal/metrics"
)

// RepairFilter restricts a contamination-repair pass.
type RepairFilter struct {
	VenueID string // canonical venue id, empty for all venues
	DryRun  bool   // report without mutating
}

// RepairAction describes one screening the repair pass affects (or would
// affect, in dry-run mode).
type RepairAction struct {
	ScreeningID uint64  `json:"screening_id"`
	VenueID     string  `json:"venue_id"`
	Chain       string  `json:"owning_chain"` // chain the URL actually belongs to
	PriorURL    string  `json:"prior_booking_url"`
	NewURL      *string `json:"new_booking_url"` // always nil today; kept for report symmetry
}

// RepairReport is the outcome of one repair pass.
type RepairReport struct {
	DryRun  bool           `json:"dry_run"`
	Actions []RepairAction `json:"actions"`
	Nulled  int64          `json:"nulled"` // rows actually changed (0 in dry-run)
}

// RepairContamination finds future screenings whose booking URL belongs to
// a different chain than their own venue and nulls the field.  Dry-run
// reports the affected rows without mutating anything.  Past screenings
// are historical record and are never touched regardless of contamination;
// the store query excludes them outright.
func (p *Pipeline) RepairContamination(ctx context.Context, filter RepairFilter) (*RepairReport, error) {
	if filter.VenueID != "" {
		canonical, err := p.reg.ResolveCanonical(filter.VenueID)
		if err != nil {
			return nil, err
		}
		filter.VenueID = canonical
	}

	links, err := p.screenings.ListFutureBookingLinks(ctx, filter.VenueID, time.Now())
	if err != nil {
		return nil, &PersistenceError{VenueID: filter.VenueID, Err: err}
	}

	report := &RepairReport{DryRun: filter.DryRun}
	var ids []uint64
	for _, l := range links {
		owner, bad := p.contaminatedBy(l.VenueID, l.BookingURL)
		if !bad {
			continue
		}
		report.Actions = append(report.Actions, RepairAction{
			ScreeningID: l.ScreeningID,
			VenueID:     l.VenueID,
			Chain:       owner,
			PriorURL:    l.BookingURL,
		})
		ids = append(ids, l.ScreeningID)
	}

	if filter.DryRun || len(ids) == 0 {
		return report, nil
	}

	nulled, err := p.screenings.NullBookingURLs(ctx, ids)
	if err != nil {
		return nil, &PersistenceError{VenueID: filter.VenueID, Err: err}
	}
	report.Nulled = nulled
	metrics.ContaminationRepaired.Add(float64(nulled))
	log.Printf("ingest: contamination repair nulled %d booking urls (venue=%q)", nulled, filter.VenueID)
	return report, nil
}
