package repository

import (
	"context"
	"database/sql"

	"github.com/cinebook/movie-booking/internal/model"
)

// MovieRepo provides read access to the movie catalog for the browse
// endpoints.  Movies are written by the external catalog service.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the provided DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// ListAll returns every movie ordered by release date, newest first.
func (r *MovieRepo) ListAll(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, genre, duration_min, rating, poster_url, release_date,
	                  created_at, updated_at
	           FROM movies ORDER BY release_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &m.DurationMin, &m.Rating,
			&m.PosterURL, &m.ReleaseDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
