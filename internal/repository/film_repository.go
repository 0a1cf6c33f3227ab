package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to match sentinel error values
	"strings"      // strings joins director names for storage

	"github.com/filmbill/filmbill/internal/model"
)

// FilmRepo encapsulates database queries related to films.  Films are
// shared across venues, so resolution must be conservative: two screenings
// of the same work should share a row, but a false merge of two different
// works is worse than a duplicate row a curator can merge later.
type FilmRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewFilmRepo constructs a FilmRepo with the provided DB handle.
func NewFilmRepo(db *sql.DB) *FilmRepo {
	return &FilmRepo{db: db}
}

// GetByID fetches a film by id.  It returns ErrFilmNotFound if no row exists.
func (r *FilmRepo) GetByID(ctx context.Context, id uint64) (*model.Film, error) {
	const q = `SELECT id, title, year, directors, poster_url FROM films WHERE id = ?`
	return scanFilm(r.db.QueryRowContext(ctx, q, id))
}

// FindByNormTitleYear fetches a film by its normalized title and year.
// This is the only matching key the pipeline uses.
func (r *FilmRepo) FindByNormTitleYear(ctx context.Context, normTitle string, year int) (*model.Film, error) {
	const q = `SELECT id, title, year, directors, poster_url FROM films WHERE norm_title = ? AND year = ?`
	return scanFilm(r.db.QueryRowContext(ctx, q, normTitle, year))
}

// rowScanner abstracts *sql.Row so scanFilm also works inside transactions.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(row rowScanner) (*model.Film, error) {
	var (
		f         model.Film
		directors string
	)
	if err := row.Scan(&f.ID, &f.Title, &f.Year, &directors, &f.PosterURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	if directors != "" {
		f.Directors = strings.Split(directors, ",")
	}
	return &f, nil
}

// resolveFilmTx finds or creates a film inside an open transaction.  Match
// policy: exact (norm_title, year) equality, nothing fuzzier.  On a miss a
// new row is inserted with the scraped display title.  The returned id is
// stable for the lifetime of the row.
func resolveFilmTx(ctx context.Context, tx *sql.Tx, title, normTitle string, year int, directors []string, posterURL string) (uint64, error) {
	const qFind = `SELECT id FROM films WHERE norm_title = ? AND year = ?`
	var id uint64
	err := tx.QueryRowContext(ctx, qFind, normTitle, year).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	const qInsert = `INSERT INTO films (title, norm_title, year, directors, poster_url) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qInsert, title, normTitle, year, strings.Join(directors, ","), posterURL)
	if err != nil {
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}
