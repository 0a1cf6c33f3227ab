package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/filmbill/filmbill/internal/model"
)

// cineluxAPIBase is the chain-wide showtimes API.  Every Cinelux site is
// served by the same backend, so one strategy parameterized by site slug
// covers the whole chain.
const cineluxAPIBase = "https://www.cinelux.co.uk/api/v2/sites"

// cineluxTicketsBase is where the API's relative booking paths resolve.
const cineluxTicketsBase = "https://tickets.cinelux.co.uk"

// Cinelux scrapes one Cinelux site.  The API splits films from
// performances and references films by id, and performance times come as
// Unix seconds.
type Cinelux struct {
	client  *Client
	venueID string
	site    string
}

// NewCinelux constructs the Cinelux strategy for one site slug.
func NewCinelux(client *Client, venueID, site string) *Cinelux {
	return &Cinelux{client: client, venueID: venueID, site: site}
}

type cineluxResponse struct {
	Films []struct {
		ID       int    `json:"id"`
		Title    string `json:"title"`
		Year     int    `json:"release_year"`
		Director string `json:"director"`
		Poster   string `json:"poster_url"`
	} `json:"films"`
	Performances []struct {
		FilmID      int      `json:"film_id"`
		StartsEpoch int64    `json:"starts_at"` // unix seconds
		Screen      string   `json:"screen"`
		Attributes  []string `json:"attributes"`
		BookingPath string   `json:"booking_path"` // relative to the tickets host
	} `json:"performances"`
}

// Scrape implements the Scraper contract.
func (s *Cinelux) Scrape(ctx context.Context) ([]model.RawScreening, error) {
	url := fmt.Sprintf("%s/%s/performances", cineluxAPIBase, s.site)
	var resp cineluxResponse
	if err := s.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, extractionErrf(s.venueID, err, "fetch site %q performances", s.site)
	}

	films := make(map[int]int, len(resp.Films)) // film id -> index
	for i, f := range resp.Films {
		films[f.ID] = i
	}

	out := make([]model.RawScreening, 0, len(resp.Performances))
	for _, p := range resp.Performances {
		idx, ok := films[p.FilmID]
		if !ok {
			// The API occasionally lists performances for withdrawn films.
			continue
		}
		f := resp.Films[idx]
		raw := model.RawScreening{
			Title:     f.Title,
			Year:      f.Year,
			PosterURL: f.Poster,
			StartsAt:  time.Unix(p.StartsEpoch, 0).UTC(),
			Screen:    p.Screen,
			Formats:   p.Attributes,
			VenueID:   s.venueID,
		}
		if f.Director != "" {
			raw.Directors = []string{f.Director}
		}
		if p.BookingPath != "" {
			raw.BookingURL = cineluxTicketsBase + p.BookingPath
		}
		out = append(out, raw)
	}
	return out, nil
}
