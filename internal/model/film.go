package model

// Film represents a canonical film record shared by screenings across all
// venues.  Films are resolved or created by the ingestion pipeline from
// scraped titles.  The matching policy is deliberately conservative: an
// exact match on (normalized title, year) or a new row.  Duplicate films
// can be merged later by a curation pass; a wrong merge cannot.
// This struct corresponds to a row in the `films` table.
type Film struct {
	ID        uint64   // films.id
	Title     string   // films.title (display form, as scraped)
	Year      int      // films.year (0 when the source does not provide one)
	Directors []string // films.directors (ordered, comma separated in the DB)
	PosterURL string   // films.poster_url
}
