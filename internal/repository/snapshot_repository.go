package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sql.ErrNoRows
	"strings"      // strings joins warning lines for storage
	"time"         // time bounds history queries

	"github.com/filmbill/filmbill/internal/model"
)

// SnapshotRepo encapsulates queries on the append-only health snapshot
// history.  Rows are inserted at check time and never updated or deleted,
// so every classification the monitor derives is reproducible from what is
// in this table.
type SnapshotRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewSnapshotRepo constructs a SnapshotRepo with the provided DB handle.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Append inserts one snapshot row.  This is the only write this repository
// performs.
func (r *SnapshotRepo) Append(ctx context.Context, s model.HealthSnapshot) error {
	const q = `INSERT INTO health_snapshots (venue_id, count, baseline, severity, warnings, alerted, checked_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		s.VenueID, s.Count, s.Baseline, string(s.Severity),
		strings.Join(s.Warnings, "\n"), s.Alerted, s.CheckedAt.UTC())
	return err
}

// ListRecent returns up to limit snapshots for a venue, newest first.
// The monitor uses the slice both for the rolling baseline and for
// consecutive-anomaly counting, so ordering matters.
func (r *SnapshotRepo) ListRecent(ctx context.Context, venueID string, limit int) ([]model.HealthSnapshot, error) {
	const q = `SELECT id, venue_id, count, baseline, severity, warnings, alerted, checked_at
	           FROM health_snapshots WHERE venue_id = ?
	           ORDER BY checked_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, venueID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HealthSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LastAlerted returns the most recent snapshot for a venue on which an
// alert was dispatched, or nil when the venue has never been alerted.
// The alert cadence policy is computed against this row.
func (r *SnapshotRepo) LastAlerted(ctx context.Context, venueID string) (*model.HealthSnapshot, error) {
	const q = `SELECT id, venue_id, count, baseline, severity, warnings, alerted, checked_at
	           FROM health_snapshots WHERE venue_id = ? AND alerted = 1
	           ORDER BY checked_at DESC, id DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, q, venueID)
	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListSince returns all snapshots for a venue with checked_at >= since,
// newest first.  The monitor serves the per-venue history endpoint from it.
func (r *SnapshotRepo) ListSince(ctx context.Context, venueID string, since time.Time) ([]model.HealthSnapshot, error) {
	const q = `SELECT id, venue_id, count, baseline, severity, warnings, alerted, checked_at
	           FROM health_snapshots WHERE venue_id = ? AND checked_at >= ?
	           ORDER BY checked_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, venueID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HealthSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSnapshot(row rowScanner) (model.HealthSnapshot, error) {
	var (
		s        model.HealthSnapshot
		severity string
		warnings string
	)
	err := row.Scan(&s.ID, &s.VenueID, &s.Count, &s.Baseline, &severity, &warnings, &s.Alerted, &s.CheckedAt)
	if err != nil {
		return model.HealthSnapshot{}, err
	}
	s.Severity = model.Severity(severity)
	if warnings != "" {
		s.Warnings = strings.Split(warnings, "\n")
	}
	return s, nil
}
