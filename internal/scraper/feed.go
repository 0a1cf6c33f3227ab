package scraper

import (
	"context"
	"time"

	"github.com/filmbill/filmbill/internal/model"
)

// Feed scrapes any venue that publishes the common showtimes-JSON layout a
// few booking platforms emit.  It carries no venue-specific logic at all;
// the feed URL is the whole configuration, which makes it the default
// strategy for small independents.
type Feed struct {
	client  *Client
	venueID string
	feedURL string
}

// NewFeed constructs the generic feed strategy.
func NewFeed(client *Client, venueID, feedURL string) *Feed {
	return &Feed{client: client, venueID: venueID, feedURL: feedURL}
}

type feedItem struct {
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Directors []string `json:"directors"`
	Poster    string   `json:"poster"`
	StartsAt  string   `json:"starts_at"` // RFC 3339
	EndsAt    string   `json:"ends_at"`
	Screen    string   `json:"screen"`
	Formats   []string `json:"formats"`
	Booking   string   `json:"booking_url"`
}

// Scrape implements the Scraper contract.
func (s *Feed) Scrape(ctx context.Context) ([]model.RawScreening, error) {
	var items []feedItem
	if err := s.client.GetJSON(ctx, s.feedURL, &items); err != nil {
		return nil, extractionErrf(s.venueID, err, "fetch showtimes feed")
	}

	out := make([]model.RawScreening, 0, len(items))
	for _, it := range items {
		starts, err := time.Parse(time.RFC3339, it.StartsAt)
		if err != nil {
			return nil, extractionErrf(s.venueID, err, "item %q has unparsable start %q", it.Title, it.StartsAt)
		}
		var ends *time.Time
		if it.EndsAt != "" {
			if t, err := time.Parse(time.RFC3339, it.EndsAt); err == nil {
				ends = &t
			}
		}
		out = append(out, model.RawScreening{
			Title:      it.Title,
			Year:       it.Year,
			Directors:  it.Directors,
			PosterURL:  it.Poster,
			StartsAt:   starts,
			EndsAt:     ends,
			Screen:     it.Screen,
			Formats:    it.Formats,
			BookingURL: it.Booking,
			VenueID:    s.venueID,
		})
	}
	return out, nil
}
