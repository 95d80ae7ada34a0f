// Package repository contains data access logic separated from HTTP handlers.
// This file defines read access to cinemas. Cinema rows are created by the
// external catalog service; this service only lists and resolves them for
// the browse endpoints.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers

	"github.com/cinebook/movie-booking/internal/model"
)

// CinemaRepo encapsulates all database queries related to cinemas.  It
// depends on a sql.DB connection which should be configured elsewhere.
type CinemaRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCinemaRepo constructs a CinemaRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewCinemaRepo(db *sql.DB) *CinemaRepo {
	return &CinemaRepo{db: db}
}

// GetByID fetches a single cinema.  It returns ErrCinemaNotFound when no
// row matches.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	const q = `SELECT id, name, location, created_at, updated_at FROM cinemas WHERE id = ?`
	var c model.Cinema
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCinemaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAll returns every cinema ordered by name.  The browse endpoint
// serves this list to guests; an empty table yields an empty slice.
func (r *CinemaRepo) ListAll(ctx context.Context) ([]model.Cinema, error) {
	const q = `SELECT id, name, location, created_at, updated_at FROM cinemas ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Cinema{}
	for rows.Next() {
		var c model.Cinema
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
