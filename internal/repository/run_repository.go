package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sql.ErrNoRows
	"time"         // time converts stored durations

	"github.com/filmbill/filmbill/internal/model"
)

// RunRepo records runner invocations.  One row per run gives operators and
// the health monitor a trail of when each venue was last scraped and with
// what outcome.
type RunRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewRunRepo constructs a RunRepo with the provided DB handle.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert records one finished run.  A nil Err is stored as an empty error
// column; the run id is the uuid minted by the runner.
func (r *RunRepo) Insert(ctx context.Context, res model.RunResult) error {
	const q = `INSERT INTO runs (id, venue_id, count, duration_ms, error, finished_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}
	_, err := r.db.ExecContext(ctx, q,
		res.RunID, res.VenueID, res.Count, res.Duration.Milliseconds(), errText, res.FinishedAt.UTC())
	return err
}

// LatestByVenue returns the most recent run for a venue, or nil when the
// venue has never been run.
func (r *RunRepo) LatestByVenue(ctx context.Context, venueID string) (*model.RunResult, error) {
	const q = `SELECT id, venue_id, count, duration_ms, error, finished_at
	           FROM runs WHERE venue_id = ? ORDER BY finished_at DESC, id DESC LIMIT 1`
	var (
		res        model.RunResult
		durationMS int64
		errText    string
	)
	err := r.db.QueryRowContext(ctx, q, venueID).Scan(
		&res.RunID, &res.VenueID, &res.Count, &durationMS, &errText, &res.FinishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	res.Duration = time.Duration(durationMS) * time.Millisecond
	if errText != "" {
		res.Err = errors.New(errText)
	}
	return &res, nil
}
