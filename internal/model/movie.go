package model

import "time"

// Movie describes a film in the catalog.  Movies are managed by an
// external catalog service; this service only reads them when listing
// shows.  This struct corresponds to a row in the `movies` table.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – movie title.
//  Description – synopsis shown on listing pages.
//  Genre       – comma-separated genre list.
//  DurationMin – running time in minutes.
//  Rating      – audience rating on a 0–10 scale.
//  PosterURL   – poster image location.
//  ReleaseDate – theatrical release date.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description string    // movies.description
	Genre       string    // movies.genre
	DurationMin uint32    // movies.duration_min
	Rating      float32   // movies.rating
	PosterURL   string    // movies.poster_url
	ReleaseDate time.Time // movies.release_date
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}
