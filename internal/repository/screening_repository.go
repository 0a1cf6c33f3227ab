package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"strings"      // strings builds IN clauses and joins format tags
	"time"         // time bounds the upcoming-screenings window
)

// ScreeningUpsert is one normalized, validated screening ready to persist.
// The ingestion pipeline produces these; the repository resolves the film
// and writes the screening inside a single transaction.
type ScreeningUpsert struct {
	Title      string     // display title, as scraped
	NormTitle  string     // normalized title used for film matching
	Year       int        // release year, 0 when unknown
	Directors  []string   // director names, may be empty
	PosterURL  string     // poster image URL, may be empty
	StartsAt   time.Time  // showtime start, UTC
	Screen     string     // auditorium label, may be empty
	Formats    []string   // format tags
	BookingURL *string    // ticketing link; nil when absent or contaminated
}

// BookingLink is a screening's booking URL with enough context to judge
// whether it belongs to the right venue.  Used by contamination repair.
type BookingLink struct {
	ScreeningID uint64    // screenings.id
	VenueID     string    // screenings.venue_id
	BookingURL  string    // screenings.booking_url (non-null by query)
	StartsAt    time.Time // screenings.starts_at
}

// ScreeningRepo encapsulates all database queries related to screenings.
type ScreeningRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewScreeningRepo constructs a ScreeningRepo with the provided DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

// SaveBatch persists one venue's batch of screenings atomically.  Films are
// resolved or created inside the same transaction, and each screening is
// upsert-keyed by (venue_id, film_id, starts_at, screen): repeat extraction
// of the same showtime updates the mutable columns (booking URL, formats,
// updated_at) and never inserts a second row.  On any error the whole
// transaction rolls back and the prior state is retained unchanged.
func (r *ScreeningRepo) SaveBatch(ctx context.Context, venueID string, batch []ScreeningUpsert) (err error) {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const qUpsert = `INSERT INTO screenings (venue_id, film_id, starts_at, screen, formats, booking_url)
	                 VALUES (?, ?, ?, ?, ?, ?)
	                 ON DUPLICATE KEY UPDATE
	                   formats = VALUES(formats),
	                   booking_url = VALUES(booking_url),
	                   updated_at = CURRENT_TIMESTAMP`

	for _, s := range batch {
		var filmID uint64
		filmID, err = resolveFilmTx(ctx, tx, s.Title, s.NormTitle, s.Year, s.Directors, s.PosterURL)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, qUpsert,
			venueID, filmID, s.StartsAt.UTC(), s.Screen,
			strings.Join(s.Formats, ","), s.BookingURL); err != nil {
			return err
		}
	}
	return nil
}

// CountUpcoming returns how many screenings a venue has with a start time
// in [now, until].  The health monitor compares this against the venue's
// rolling baseline.
func (r *ScreeningRepo) CountUpcoming(ctx context.Context, venueID string, now, until time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM screenings WHERE venue_id = ? AND starts_at >= ? AND starts_at <= ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, venueID, now.UTC(), until.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListFutureBookingLinks returns every future screening that still carries
// a booking URL, optionally restricted to one venue (empty venueID means
// all venues).  Past screenings are historical record and are deliberately
// excluded: repair never touches them.
func (r *ScreeningRepo) ListFutureBookingLinks(ctx context.Context, venueID string, now time.Time) ([]BookingLink, error) {
	q := `SELECT id, venue_id, booking_url, starts_at FROM screenings
	      WHERE booking_url IS NOT NULL AND starts_at > ?`
	args := []any{now.UTC()}
	if venueID != "" {
		q += ` AND venue_id = ?`
		args = append(args, venueID)
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookingLink
	for rows.Next() {
		var l BookingLink
		if err := rows.Scan(&l.ScreeningID, &l.VenueID, &l.BookingURL, &l.StartsAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NullBookingURLs clears the booking URL on the given screening ids and
// returns how many rows changed.  Callers decide which ids are
// contaminated; this method only executes the repair.
func (r *ScreeningRepo) NullBookingURLs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `UPDATE screenings SET booking_url = NULL, updated_at = CURRENT_TIMESTAMP WHERE id IN (` + placeholders + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
