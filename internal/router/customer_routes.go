package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/handler"
	"github.com/cinebook/movie-booking/internal/middleware"
)

// RegisterCustomer registers the seat and booking endpoints under /v1.
// All routes require a valid JWT with the CUSTOMER role.  The optional
// limiter middleware (the Redis token bucket) is applied to the
// mutations only; reads stay unthrottled.
func RegisterCustomer(e *echo.Echo, sh *handler.ShowHandler, bh *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)

	mutations := []echo.MiddlewareFunc{}
	if limiter != nil {
		mutations = append(mutations, limiter)
	}

	g.POST("/shows/:id/block-seats", sh.BlockSeats, mutations...)
	g.POST("/shows/:id/unblock-seats", sh.UnblockSeats, mutations...)
	g.POST("/bookings", bh.CreateBooking, mutations...)
	g.PUT("/bookings/:id/cancel", bh.CancelBooking, mutations...)

	g.GET("/my-bookings", bh.ListMyBookings)
	g.GET("/bookings/:id", bh.GetBooking)
}
