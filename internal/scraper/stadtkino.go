package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/filmbill/filmbill/internal/model"
)

// Stadtkino scrapes the Stadtkino am Kanal plain-text programme export.
// The venue publishes a pipe-separated file, one showtime per line:
//
//	2026-03-01T19:30|Titel|2024|Saal 1|OmU,35mm|https://...
//
// Lines starting with '#' are comments.  Times are local to the venue's
// timezone (a scraper parameter) and converted to UTC here, because the
// screening identity key includes the start timestamp.
type Stadtkino struct {
	client  *Client
	venueID string
	feedURL string
	loc     *time.Location
}

// NewStadtkino constructs the Stadtkino strategy.  tz must be an IANA
// timezone name; an unknown name falls back to UTC.
func NewStadtkino(client *Client, venueID, feedURL, tz string) *Stadtkino {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	return &Stadtkino{client: client, venueID: venueID, feedURL: feedURL, loc: loc}
}

// Scrape implements the Scraper contract.
func (s *Stadtkino) Scrape(ctx context.Context) ([]model.RawScreening, error) {
	body, err := s.client.Get(ctx, s.feedURL)
	if err != nil {
		return nil, extractionErrf(s.venueID, err, "fetch programme export")
	}

	var out []model.RawScreening
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw, err := s.parseLine(line)
		if err != nil {
			return nil, extractionErrf(s.venueID, err, "unparsable programme line %q", line)
		}
		out = append(out, raw)
	}
	return out, nil
}

func (s *Stadtkino) parseLine(line string) (model.RawScreening, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 4 {
		return model.RawScreening{}, &ExtractionError{VenueID: s.venueID, Reason: "expected at least 4 fields"}
	}
	starts, err := time.ParseInLocation("2006-01-02T15:04", parts[0], s.loc)
	if err != nil {
		return model.RawScreening{}, err
	}

	raw := model.RawScreening{
		Title:    strings.TrimSpace(parts[1]),
		StartsAt: starts.UTC(),
		Screen:   strings.TrimSpace(parts[3]),
		VenueID:  s.venueID,
	}
	if y := strings.TrimSpace(parts[2]); y != "" {
		raw.Year = atoiSafe(y)
	}
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		for _, tag := range strings.Split(parts[4], ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				raw.Formats = append(raw.Formats, tag)
			}
		}
	}
	if len(parts) > 5 {
		raw.BookingURL = strings.TrimSpace(parts[5])
	}
	return raw, nil
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
