package scraper

import (
	"context"
	"time"

	"github.com/filmbill/filmbill/internal/model"
)

// Eastlight scrapes the Eastlight Cinema programme API.  The site exposes
// a clean JSON feed, so this is the simplest strategy we have: one request,
// one event list, RFC 3339 timestamps.
type Eastlight struct {
	client       *Client
	venueID      string
	programmeURL string
}

// NewEastlight constructs the Eastlight strategy.
func NewEastlight(client *Client, venueID, programmeURL string) *Eastlight {
	return &Eastlight{client: client, venueID: venueID, programmeURL: programmeURL}
}

// eastlightFeed mirrors the programme API response.
type eastlightFeed struct {
	Events []struct {
		Title     string   `json:"title"`
		Year      int      `json:"year"`
		Directors []string `json:"directors"`
		Poster    string   `json:"poster"`
		StartsAt  string   `json:"starts_at"` // RFC 3339
		EndsAt    string   `json:"ends_at"`   // RFC 3339, may be empty
		Screen    string   `json:"screen"`
		Formats   []string `json:"formats"`
		Booking   string   `json:"booking_url"`
	} `json:"events"`
}

// Scrape implements the Scraper contract.
func (s *Eastlight) Scrape(ctx context.Context) ([]model.RawScreening, error) {
	var feed eastlightFeed
	if err := s.client.GetJSON(ctx, s.programmeURL, &feed); err != nil {
		return nil, extractionErrf(s.venueID, err, "fetch programme feed")
	}

	out := make([]model.RawScreening, 0, len(feed.Events))
	for _, ev := range feed.Events {
		starts, err := time.Parse(time.RFC3339, ev.StartsAt)
		if err != nil {
			return nil, extractionErrf(s.venueID, err, "event %q has unparsable start %q", ev.Title, ev.StartsAt)
		}
		var ends *time.Time
		if ev.EndsAt != "" {
			if t, err := time.Parse(time.RFC3339, ev.EndsAt); err == nil {
				ends = &t
			}
		}
		out = append(out, model.RawScreening{
			Title:      ev.Title,
			Year:       ev.Year,
			Directors:  ev.Directors,
			PosterURL:  ev.Poster,
			StartsAt:   starts,
			EndsAt:     ends,
			Screen:     ev.Screen,
			Formats:    ev.Formats,
			BookingURL: ev.Booking,
			VenueID:    s.venueID,
		})
	}
	return out, nil
}
