// This file defines the public browse handlers.  These routes let
// unauthenticated users explore cinemas, movies and showtimes; responses
// carry only catalog data, never holder-specific state, so they sit
// behind the response cache.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/model"
	"github.com/cinebook/movie-booking/internal/repository"
)

// BrowseHandler aggregates the read-only repositories used by the public
// catalog endpoints.
type BrowseHandler struct {
	CinemaRepo *repository.CinemaRepo
	MovieRepo  *repository.MovieRepo
	ShowRepo   *repository.ShowRepo
}

// NewBrowseHandler constructs a BrowseHandler.  All dependencies must be
// non-nil.
func NewBrowseHandler(cinemaRepo *repository.CinemaRepo, movieRepo *repository.MovieRepo, showRepo *repository.ShowRepo) *BrowseHandler {
	if cinemaRepo == nil || movieRepo == nil || showRepo == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{CinemaRepo: cinemaRepo, MovieRepo: movieRepo, ShowRepo: showRepo}
}

// cinemaView is a cinema as exposed publicly.
type cinemaView struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// movieView is a movie as exposed publicly.
type movieView struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	DurationMin uint32    `json:"duration_min"`
	Rating      float32   `json:"rating,omitempty"`
	PosterURL   string    `json:"poster_url,omitempty"`
	ReleaseDate time.Time `json:"release_date"`
}

// showTimeView is one showtime inside a programme listing.
type showTimeView struct {
	ID         uint64    `json:"id"`
	ScreenID   uint64    `json:"screen_id"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
}

// programmeEntry groups a cinema's showtimes of one movie.
type programmeEntry struct {
	Movie movieView      `json:"movie"`
	Shows []showTimeView `json:"shows"`
}

func toMovieView(m model.Movie) movieView {
	return movieView{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Genre:       m.Genre,
		DurationMin: m.DurationMin,
		Rating:      m.Rating,
		PosterURL:   m.PosterURL,
		ReleaseDate: m.ReleaseDate,
	}
}

// ListCinemas handles GET /v1/cinemas.
func (h *BrowseHandler) ListCinemas(c echo.Context) error {
	cinemas, err := h.CinemaRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]cinemaView, 0, len(cinemas))
	for _, cin := range cinemas {
		items = append(items, cinemaView{ID: cin.ID, Name: cin.Name, Location: cin.Location})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMovies handles GET /v1/movies.
func (h *BrowseHandler) ListMovies(c echo.Context) error {
	movies, err := h.MovieRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]movieView, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMovieView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListCinemaShows handles GET /v1/cinemas/:id/shows.  It returns the
// cinema's programme grouped by movie.  An optional ?date=YYYY-MM-DD
// query restricts the listing to shows starting on that UTC day.
func (h *BrowseHandler) ListCinemaShows(c echo.Context) error {
	ctx := c.Request().Context()
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	if _, err := h.CinemaRepo.GetByID(ctx, cinemaID); err != nil {
		if err == repository.ErrCinemaNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cinema not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var day *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		day = &d
	}

	listings, err := h.ShowRepo.ListByCinema(ctx, cinemaID, day)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Group by movie, keeping the order movies first appear in the
	// schedule.
	order := make([]uint64, 0)
	grouped := make(map[uint64]*programmeEntry)
	for _, l := range listings {
		entry, ok := grouped[l.Movie.ID]
		if !ok {
			entry = &programmeEntry{Movie: toMovieView(l.Movie)}
			grouped[l.Movie.ID] = entry
			order = append(order, l.Movie.ID)
		}
		entry.Shows = append(entry.Shows, showTimeView{
			ID:         l.Show.ID,
			ScreenID:   l.Show.ScreenID,
			StartsAt:   l.Show.StartsAt,
			PriceCents: l.Show.PriceCents,
		})
	}
	items := make([]programmeEntry, 0, len(order))
	for _, id := range order {
		items = append(items, *grouped[id])
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
