// Package registry is the canonical source of venue identity.  It maps
// legacy aliases onto stable canonical slugs, carries the static metadata
// for every venue we scrape, and knows which extraction job and which
// external scheduler identifier belong to each venue.  All lookups are
// pure functions over the compiled-in table in venues.go; the registry
// performs no I/O and is never mutated after construction.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filmbill/filmbill/internal/model"
)

// ErrUnknownVenue is returned when an identifier resolves to no registered
// venue.  Callers must treat this as their own error: passing an unknown
// identifier is a caller bug, not an upstream failure.
var ErrUnknownVenue = errors.New("unknown venue")

// Entry ties one canonical venue to everything the ingestion core needs to
// know about it.
type Entry struct {
	Venue           model.Venue
	Aliases         []string          // legacy identifiers, all resolving to Venue.ID
	ScraperID       string            // extraction strategy in the scraper catalog
	ScraperParams   map[string]string // per-venue parameters for the strategy (site slug, feed URL)
	OrchestrationID string            // identifier the external scheduler uses for this venue
	Chain           string            // chain key, empty for independents
}

// Registry answers identity lookups.  Construct with New.
type Registry struct {
	entries map[string]*Entry // canonical id -> entry
	aliases map[string]string // alias -> canonical id
	order   []string          // canonical ids in table order, for stable iteration
}

// New builds a Registry from the static venue table.  It panics on a
// malformed table (duplicate canonical id or alias) because that is a
// programming error caught by the package tests, not a runtime condition.
func New() *Registry {
	r := &Registry{
		entries: make(map[string]*Entry, len(venueTable)),
		aliases: make(map[string]string),
	}
	for i := range venueTable {
		e := &venueTable[i]
		id := e.Venue.ID
		if _, dup := r.entries[id]; dup {
			panic(fmt.Sprintf("registry: duplicate canonical id %q", id))
		}
		r.entries[id] = e
		r.order = append(r.order, id)
		for _, a := range e.Aliases {
			if _, dup := r.aliases[a]; dup {
				panic(fmt.Sprintf("registry: duplicate alias %q", a))
			}
			r.aliases[a] = id
		}
	}
	return r
}

// ResolveCanonical maps any known identifier (canonical or legacy alias)
// onto its canonical id.  Resolution is idempotent: a canonical id resolves
// to itself.  Unknown identifiers fail with ErrUnknownVenue.
func (r *Registry) ResolveCanonical(id string) (string, error) {
	if _, ok := r.entries[id]; ok {
		return id, nil
	}
	if canonical, ok := r.aliases[id]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVenue, id)
}

// Venue returns the metadata for a canonical id.
func (r *Registry) Venue(canonicalID string) (model.Venue, error) {
	e, ok := r.entries[canonicalID]
	if !ok {
		return model.Venue{}, fmt.Errorf("%w: %q", ErrUnknownVenue, canonicalID)
	}
	return e.Venue, nil
}

// ScraperID returns the extraction-job identifier assigned to a venue.
func (r *Registry) ScraperID(canonicalID string) (string, error) {
	e, ok := r.entries[canonicalID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVenue, canonicalID)
	}
	return e.ScraperID, nil
}

// OrchestrationID returns the identifier the external scheduler uses for a
// venue.  The scheduler's namespace predates the canonical slugs and is
// allowed to diverge from them indefinitely.
func (r *Registry) OrchestrationID(canonicalID string) (string, error) {
	e, ok := r.entries[canonicalID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVenue, canonicalID)
	}
	if e.OrchestrationID != "" {
		return e.OrchestrationID, nil
	}
	return canonicalID, nil
}

// ScraperParams returns the per-venue parameters for a venue's extraction
// strategy.  The returned map must be treated as read-only.
func (r *Registry) ScraperParams(canonicalID string) map[string]string {
	if e, ok := r.entries[canonicalID]; ok {
		return e.ScraperParams
	}
	return nil
}

// ChainOf returns the chain key a venue belongs to, or the empty string for
// independents.  Unknown venues also return the empty string; callers that
// need to distinguish should resolve first.
func (r *Registry) ChainOf(canonicalID string) string {
	if e, ok := r.entries[canonicalID]; ok {
		return e.Chain
	}
	return ""
}

// Venues returns every registered venue in table order, active or not.
func (r *Registry) Venues() []model.Venue {
	out := make([]model.Venue, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Venue)
	}
	return out
}

// ActiveVenues returns every active venue in table order.  Health checks
// and batch runs iterate this list.
func (r *Registry) ActiveVenues() []model.Venue {
	out := make([]model.Venue, 0, len(r.order))
	for _, id := range r.order {
		if v := r.entries[id].Venue; v.Active {
			out = append(out, v)
		}
	}
	return out
}

// BookingDomainOwner reports which chain owns a booking-URL host, if any.
// Hosts are matched on exact domain or any subdomain of a registered
// domain.  Hosts owned by no chain (venue-agnostic ticketing platforms,
// the venue's own site) return ok == false and are never treated as
// contamination.
func BookingDomainOwner(host string) (chain string, ok bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for c, domains := range chainBookingDomains {
		for _, d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return c, true
			}
		}
	}
	return "", false
}
