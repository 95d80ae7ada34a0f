package model

import "time"

// Show represents a scheduled screening of a movie on a particular
// screen of a cinema.  The per-seat price is fixed when the show is
// created; the seat state itself (booked seats and live holds) lives in
// the `show_booked_seats` and `seat_holds` tables and is only mutated
// inside the per-show critical section.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being screened.
//  ScreenID   – screen the show runs in; determines the seat layout.
//  CinemaID   – cinema the screen belongs to.
//  StartsAt   – when the show begins; bookings cannot be cancelled after
//               this instant.
//  PriceCents – per-seat price in cents, fixed at show creation.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Show struct {
	ID         uint64    // shows.id
	MovieID    uint64    // shows.movie_id
	ScreenID   uint64    // shows.screen_id
	CinemaID   uint64    // shows.cinema_id
	StartsAt   time.Time // shows.starts_at
	PriceCents uint32    // shows.price_cents
	CreatedAt  time.Time // shows.created_at
	UpdatedAt  time.Time // shows.updated_at
}
