package model

import "time"

// Screen is an individual auditorium within a cinema.  Its seat grid is
// described by SeatRows × SeatCols; seat labels are derived from the grid
// (row letter plus 1-based column, "A1".."J10" for a 10×10 screen) and no
// label outside the grid is a valid seat for any show on this screen.
// This struct corresponds to a row in the `screens` table.
//
// Fields:
//  ID           – primary key identifier.
//  CinemaID     – cinema that houses the screen.
//  ScreenNumber – number of the screen within its cinema (unique per cinema).
//  SeatRows     – number of seating rows.
//  SeatCols     – number of seats per row.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Screen struct {
	ID           uint64    // screens.id
	CinemaID     uint64    // screens.cinema_id
	ScreenNumber uint32    // screens.screen_number
	SeatRows     uint32    // screens.seat_rows
	SeatCols     uint32    // screens.seat_cols
	CreatedAt    time.Time // screens.created_at
	UpdatedAt    time.Time // screens.updated_at
}
