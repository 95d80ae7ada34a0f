package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/handler"
)

// RegisterBrowse registers the unauthenticated catalog endpoints.  The
// optional cache middleware is produced by the caller (it needs the
// Redis client); pass nil to register the routes uncached.
//
// The show detail route is registered here as well but never cached: it
// carries live seat state and a stale copy would show seats as held
// after their holds expired.
func RegisterBrowse(e *echo.Echo, b *handler.BrowseHandler, s *handler.ShowHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.GET("/cinemas", b.ListCinemas, cache)
		g.GET("/movies", b.ListMovies, cache)
		g.GET("/cinemas/:id/shows", b.ListCinemaShows, cache)
	} else {
		g.GET("/cinemas", b.ListCinemas)
		g.GET("/movies", b.ListMovies)
		g.GET("/cinemas/:id/shows", b.ListCinemaShows)
	}
	g.GET("/shows/:id", s.GetShow)
	g.GET("/shows/:id/events", s.StreamShowEvents)
}
