package model

import "time"

// RawScreening is the ephemeral record a scraper produces for one showtime.
// It is never persisted directly: the ingestion pipeline normalizes it,
// resolves the film, checks the booking URL and only then writes a
// Screening row.
//
// Fields:
//  Title      – scraped film title, as displayed by the venue.
//  Year       – release year when the source provides one, else 0.
//  Directors  – director names when the source provides them.
//  PosterURL  – poster image URL when the source provides one.
//  StartsAt   – showtime start.
//  EndsAt     – optional showtime end (nil when unknown).
//  Screen     – auditorium label ("Screen 2", "Kino 1"), may be empty.
//  Formats    – format tags such as "35mm" or "subtitled".
//  BookingURL – per-showtime ticketing link, may be empty.
//  VenueID    – venue identifier the scraper attributes this showtime to;
//               may be a legacy alias, the pipeline resolves it.
type RawScreening struct {
	Title      string
	Year       int
	Directors  []string
	PosterURL  string
	StartsAt   time.Time
	EndsAt     *time.Time
	Screen     string
	Formats    []string
	BookingURL string
	VenueID    string
}

// Screening is a persisted showtime.  Its logical identity is
// (venue, film, start time, screen label): re-ingesting the same showtime
// updates the existing row instead of inserting a new one.
// This struct corresponds to a row in the `screenings` table.
type Screening struct {
	ID         uint64    // screenings.id
	FilmID     uint64    // screenings.film_id
	VenueID    string    // screenings.venue_id
	StartsAt   time.Time // screenings.starts_at (UTC)
	Screen     string    // screenings.screen
	Formats    []string  // screenings.formats
	BookingURL *string   // screenings.booking_url (nil when absent or contaminated)
	UpdatedAt  time.Time // screenings.updated_at
}
