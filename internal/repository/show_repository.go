// Package repository contains data access logic for Show domain operations.
// This file defines repository methods for shows. A Show row carries the
// schedule and the fixed per-seat price; its seat state lives in the
// show_booked_seats and seat_holds tables managed by SeatLedgerRepo.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"time"         // time for schedule fields and date filters

	"github.com/cinebook/movie-booking/internal/model" // model defines persisted entities
)

// ShowDetail is a show joined with its movie, cinema and screen so that
// the seat-map page can be rendered from a single response.  SeatRows and
// SeatCols are the screen's layout dimensions.
type ShowDetail struct {
	Show         model.Show
	MovieTitle   string
	CinemaName   string
	ScreenNumber uint32
	SeatRows     uint32
	SeatCols     uint32
}

// ShowListing is one entry of a cinema's programme: the show schedule
// plus the movie it screens.  Used by the browse endpoint that groups a
// cinema's shows by movie.
type ShowListing struct {
	Show  model.Show
	Movie model.Movie
}

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, screen_id, cinema_id, starts_at, price_cents, created_at, updated_at
	           FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.ScreenID, &s.CinemaID, &s.StartsAt, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LockTx loads a show inside the provided transaction with a row lock
// (SELECT ... FOR UPDATE).  Every seat-state mutation for a show passes
// through this lock, so the read-check-mutate-persist sequence of two
// concurrent requests on the same show cannot interleave.  Requests on
// different shows lock different rows and proceed in parallel.
func (r *ShowRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, screen_id, cinema_id, starts_at, price_cents, created_at, updated_at
	           FROM shows WHERE id = ? FOR UPDATE`
	var s model.Show
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.ScreenID, &s.CinemaID, &s.StartsAt, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDetail retrieves a show joined with its movie title, cinema name and
// screen layout.  It returns ErrShowNotFound when the show is absent.
func (r *ShowRepo) GetDetail(ctx context.Context, id uint64) (*ShowDetail, error) {
	const q = `SELECT s.id, s.movie_id, s.screen_id, s.cinema_id, s.starts_at, s.price_cents,
	                  s.created_at, s.updated_at,
	                  m.title, c.name, sc.screen_number, sc.seat_rows, sc.seat_cols
	           FROM shows s
	           JOIN movies m  ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           JOIN screens sc ON sc.id = s.screen_id
	           WHERE s.id = ?`
	var d ShowDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.Show.ID, &d.Show.MovieID, &d.Show.ScreenID, &d.Show.CinemaID, &d.Show.StartsAt, &d.Show.PriceCents,
		&d.Show.CreatedAt, &d.Show.UpdatedAt,
		&d.MovieTitle, &d.CinemaName, &d.ScreenNumber, &d.SeatRows, &d.SeatCols,
	)
	if err == sql.ErrNoRows {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ScreenLayoutTx returns the seat grid dimensions of the show's screen
// within the provided transaction.  Seat label validation during block
// and booking calls uses these bounds.
func (r *ShowRepo) ScreenLayoutTx(ctx context.Context, tx *sql.Tx, screenID uint64) (rows, cols uint32, err error) {
	const q = `SELECT seat_rows, seat_cols FROM screens WHERE id = ?`
	err = tx.QueryRowContext(ctx, q, screenID).Scan(&rows, &cols)
	if err == sql.ErrNoRows {
		return 0, 0, ErrShowNotFound
	}
	return rows, cols, err
}

// ListByCinema returns the shows of a cinema joined with their movies,
// ordered by start time.  When day is non-nil, only shows starting within
// that calendar day (UTC) are returned.  Grouping by movie is left to the
// handler so the query stays a plain ordered scan.
func (r *ShowRepo) ListByCinema(ctx context.Context, cinemaID uint64, day *time.Time) ([]ShowListing, error) {
	q := `SELECT s.id, s.movie_id, s.screen_id, s.cinema_id, s.starts_at, s.price_cents, s.created_at, s.updated_at,
	             m.id, m.title, m.description, m.genre, m.duration_min, m.rating, m.poster_url, m.release_date,
	             m.created_at, m.updated_at
	      FROM shows s
	      JOIN movies m ON m.id = s.movie_id
	      WHERE s.cinema_id = ?`
	args := []interface{}{cinemaID}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		q += ` AND s.starts_at >= ? AND s.starts_at < ?`
		args = append(args, start, start.AddDate(0, 0, 1))
	}
	q += ` ORDER BY s.starts_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShowListing
	for rows.Next() {
		var l ShowListing
		if err := rows.Scan(
			&l.Show.ID, &l.Show.MovieID, &l.Show.ScreenID, &l.Show.CinemaID, &l.Show.StartsAt, &l.Show.PriceCents,
			&l.Show.CreatedAt, &l.Show.UpdatedAt,
			&l.Movie.ID, &l.Movie.Title, &l.Movie.Description, &l.Movie.Genre, &l.Movie.DurationMin, &l.Movie.Rating,
			&l.Movie.PosterURL, &l.Movie.ReleaseDate, &l.Movie.CreatedAt, &l.Movie.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
