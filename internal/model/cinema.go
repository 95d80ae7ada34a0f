package model

import "time"

// Cinema represents a movie theatre venue.  A cinema contains one or
// more screens; shows reference both the cinema and the screen they run
// in.  This struct corresponds to a row in the `cinemas` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the cinema.
//  Location  – human-readable address or district.
//  CreatedAt – timestamp when the cinema was created.
//  UpdatedAt – timestamp of last update.
type Cinema struct {
	ID        uint64    // cinemas.id
	Name      string    // cinemas.name
	Location  string    // cinemas.location
	CreatedAt time.Time // cinemas.created_at
	UpdatedAt time.Time // cinemas.updated_at
}
