// Package ingest is the pipeline between raw scraper output and the
// canonical store.  It normalizes and deduplicates raw screenings,
// resolves films conservatively, strips cross-chain booking links, and
// applies each venue's batch transactionally.  Writes for the same venue
// are serialized; writes for distinct venues proceed in parallel.
package ingest

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/filmbill/filmbill/internal/metrics"
	"github.com/filmbill/filmbill/internal/model"
	"github.com/filmbill/filmbill/internal/registry"
	"github.com/filmbill/filmbill/internal/repository"
)

// PersistenceError reports a failed store write.  The run that produced it
// is failed as a whole: the transaction rolled back, so the venue keeps
// its prior screenings unchanged.
type PersistenceError struct {
	VenueID string
	Err     error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed for %s: %v", e.VenueID, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *PersistenceError) Unwrap() error { return e.Err }

// VenueStore is the venue write contract the pipeline needs.
type VenueStore interface {
	Upsert(ctx context.Context, v model.Venue) error
}

// ScreeningStore is the screening read/write contract the pipeline needs.
// *repository.ScreeningRepo satisfies it; tests use an in-memory fake.
type ScreeningStore interface {
	SaveBatch(ctx context.Context, venueID string, batch []repository.ScreeningUpsert) error
	ListFutureBookingLinks(ctx context.Context, venueID string, now time.Time) ([]repository.BookingLink, error)
	NullBookingURLs(ctx context.Context, ids []uint64) (int64, error)
}

// SaveSummary reports what one SaveScreenings call did.
type SaveSummary struct {
	Saved        int      // screenings handed to the store
	Deduped      int      // raw records collapsed as in-batch duplicates
	Skipped      int      // raw records dropped as unusable (empty title, zero time)
	Contaminated int      // booking URLs nulled for pointing at a foreign chain
	Warnings     []string // human-readable data-quality notes
}

// Pipeline is the ingestion pipeline.  Construct with NewPipeline.
type Pipeline struct {
	reg        *registry.Registry
	venues     VenueStore
	screenings ScreeningStore

	mu    sync.Mutex             // guards locks
	locks map[string]*sync.Mutex // per-venue write serialization
}

// NewPipeline constructs a Pipeline over the given stores.
func NewPipeline(reg *registry.Registry, venues VenueStore, screenings ScreeningStore) *Pipeline {
	return &Pipeline{
		reg:        reg,
		venues:     venues,
		screenings: screenings,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing writes to one venue.
func (p *Pipeline) lockFor(venueID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[venueID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[venueID] = l
	}
	return l
}

// EnsureVenueExists idempotently upserts a venue row.  Concurrent calls
// for the same venue collapse into last-writer-wins on the metadata, which
// is fine for registry-sourced fields.
func (p *Pipeline) EnsureVenueExists(ctx context.Context, v model.Venue) error {
	if err := p.venues.Upsert(ctx, v); err != nil {
		return &PersistenceError{VenueID: v.ID, Err: err}
	}
	return nil
}

// SaveScreenings normalizes, deduplicates and persists one venue's batch.
// The whole batch is applied in one store transaction; on failure the
// venue's prior state is retained and a PersistenceError is returned.
// Contaminated booking URLs are nulled and counted, never fatal.
func (p *Pipeline) SaveScreenings(ctx context.Context, venueID string, raws []model.RawScreening) (*SaveSummary, error) {
	canonical, err := p.reg.ResolveCanonical(venueID)
	if err != nil {
		return nil, err
	}

	lock := p.lockFor(canonical)
	lock.Lock()
	defer lock.Unlock()

	summary := &SaveSummary{}
	seen := make(map[string]bool, len(raws))
	batch := make([]repository.ScreeningUpsert, 0, len(raws))

	for _, raw := range raws {
		normTitle := NormalizeTitle(raw.Title)
		if normTitle == "" || raw.StartsAt.IsZero() {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("skipped unusable record title=%q starts_at=%s", raw.Title, raw.StartsAt))
			continue
		}

		starts := raw.StartsAt.UTC()
		key := fmt.Sprintf("%s|%d|%d|%s", normTitle, raw.Year, starts.Unix(), raw.Screen)
		if seen[key] {
			summary.Deduped++
			continue
		}
		seen[key] = true

		up := repository.ScreeningUpsert{
			Title:     raw.Title,
			NormTitle: normTitle,
			Year:      raw.Year,
			Directors: raw.Directors,
			PosterURL: raw.PosterURL,
			StartsAt:  starts,
			Screen:    raw.Screen,
			Formats:   raw.Formats,
		}
		if raw.BookingURL != "" {
			if owner, bad := p.contaminatedBy(canonical, raw.BookingURL); bad {
				summary.Contaminated++
				summary.Warnings = append(summary.Warnings,
					fmt.Sprintf("contaminated booking url for %q: %s belongs to chain %q", raw.Title, raw.BookingURL, owner))
				metrics.ContaminationDetected.Inc()
				log.Printf("ingest: venue=%s contaminated booking url dropped (owner=%s url=%s)", canonical, owner, raw.BookingURL)
			} else {
				u := raw.BookingURL
				up.BookingURL = &u
			}
		}
		batch = append(batch, up)
	}

	if err := p.screenings.SaveBatch(ctx, canonical, batch); err != nil {
		return nil, &PersistenceError{VenueID: canonical, Err: err}
	}
	summary.Saved = len(batch)
	metrics.ScreeningsSaved.Add(float64(summary.Saved))
	return summary, nil
}

// contaminatedBy reports whether a booking URL belongs to a chain other
// than the venue's own.  URLs on unregistered domains (the venue's own
// site, venue-agnostic ticketing platforms) are never contamination.
func (p *Pipeline) contaminatedBy(venueID, bookingURL string) (owner string, bad bool) {
	u, err := url.Parse(bookingURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	owner, ok := registry.BookingDomainOwner(u.Hostname())
	if !ok {
		return "", false
	}
	if owner == p.reg.ChainOf(venueID) {
		return "", false
	}
	return owner, true
}
