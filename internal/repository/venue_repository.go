package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sentinel error values
	"strings"      // strings joins feature tags for storage

	"github.com/filmbill/filmbill/internal/model"
)

// VenueRepo encapsulates all database queries related to venues.  Venues
// are registry-backed configuration; the table exists so screenings have a
// foreign key target and so downstream pages can join display metadata.
type VenueRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Upsert writes a venue row keyed by its canonical id.  The operation is
// idempotent and safe under concurrency: MySQL's ON DUPLICATE KEY UPDATE
// makes concurrent upserts for the same venue collapse into last-writer-wins
// on the metadata columns, which is acceptable for registry-sourced data.
func (r *VenueRepo) Upsert(ctx context.Context, v model.Venue) error {
	const q = `INSERT INTO venues (id, name, short_name, website, address, features, latitude, longitude, active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             name = VALUES(name), short_name = VALUES(short_name),
	             website = VALUES(website), address = VALUES(address),
	             features = VALUES(features), latitude = VALUES(latitude),
	             longitude = VALUES(longitude), active = VALUES(active),
	             updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q,
		v.ID, v.Name, v.ShortName, v.Website, v.Address,
		strings.Join(v.Features, ","), v.Latitude, v.Longitude, v.Active)
	return err
}

// GetByID fetches a venue by canonical id.  It returns ErrVenueNotFound
// if no row is found.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	const q = `SELECT id, name, short_name, website, address, features, latitude, longitude, active
	           FROM venues WHERE id = ?`
	var (
		v        model.Venue
		features string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.Name, &v.ShortName, &v.Website, &v.Address,
		&features, &v.Latitude, &v.Longitude, &v.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	if features != "" {
		v.Features = strings.Split(features, ",")
	}
	return &v, nil
}
