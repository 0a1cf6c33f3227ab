package model

import "time"

// Venue represents a cinema whose programme we ingest.  Venues are
// configuration data: they are registered once in the venue registry and
// their canonical ID (a stable slug such as "eastlight-hackney") never
// changes.  Legacy identifiers map many-to-one onto the canonical ID.
// This struct corresponds to a row in the `venues` table.
//
// Fields:
//  ID        – canonical slug, primary key.
//  Name      – full display name of the venue.
//  ShortName – abbreviated name used in dense listings.
//  Website   – public website URL.
//  Address   – postal address as a single display string.
//  Features  – feature tags such as "independent" or "35mm".
//  Latitude  – optional geographic latitude (nil when unknown).
//  Longitude – optional geographic longitude (nil when unknown).
//  Active    – whether the venue is currently scraped and shown.
type Venue struct {
	ID        string   // venues.id (canonical slug)
	Name      string   // venues.name
	ShortName string   // venues.short_name
	Website   string   // venues.website
	Address   string   // venues.address
	Features  []string // venues.features (comma separated in the DB)
	Latitude  *float64 // venues.latitude
	Longitude *float64 // venues.longitude
	Active    bool     // venues.active
}

// RunResult summarises one runner invocation for a single venue.  It is
// returned to the orchestration boundary and recorded in the `runs` table.
type RunResult struct {
	RunID      string        // uuid assigned at the start of the run
	VenueID    string        // canonical venue ID the run targeted
	Count      int           // number of screenings handed to the pipeline
	Duration   time.Duration // wall-clock duration of the run
	Err        error         // nil on success; the typed failure otherwise
	FinishedAt time.Time     // UTC completion time
}
