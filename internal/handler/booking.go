package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/ledger"
	"github.com/cinebook/movie-booking/internal/model"
	"github.com/cinebook/movie-booking/internal/queue"
	"github.com/cinebook/movie-booking/internal/realtime"
	"github.com/cinebook/movie-booking/internal/repository"
	queue_publisher "github.com/cinebook/movie-booking/internal/service"
)

// BookingHandler creates, cancels and lists bookings.  Creation and
// cancellation mutate the seat ledger, so they run under the same
// per-show critical section as the hold operations.
type BookingHandler struct {
	ShowRepo    *repository.ShowRepo
	LedgerRepo  *repository.SeatLedgerRepo
	BookingRepo *repository.BookingRepo
	Hub         *realtime.Hub
	Locks       *ledger.Locks
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(showRepo *repository.ShowRepo, ledgerRepo *repository.SeatLedgerRepo, bookingRepo *repository.BookingRepo, hub *realtime.Hub, locks *ledger.Locks) *BookingHandler {
	if showRepo == nil || ledgerRepo == nil || bookingRepo == nil || hub == nil || locks == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{
		ShowRepo:    showRepo,
		LedgerRepo:  ledgerRepo,
		BookingRepo: bookingRepo,
		Hub:         hub,
		Locks:       locks,
	}
}

// bookingView shapes one booking for API responses.
type bookingView struct {
	ID               uint64    `json:"id"`
	Reference        string    `json:"reference"`
	ShowID           uint64    `json:"show_id"`
	Seats            []string  `json:"seats"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	Status           string    `json:"status"`
	BookingDate      time.Time `json:"booking_date"`
	ShowStartsAt     time.Time `json:"show_starts_at,omitempty"`
	MovieTitle       string    `json:"movie_title,omitempty"`
	CinemaName       string    `json:"cinema_name,omitempty"`
	ScreenNumber     uint32    `json:"screen_number,omitempty"`
}

func detailView(d *repository.BookingDetail) bookingView {
	return bookingView{
		ID:               d.Booking.ID,
		Reference:        d.Booking.Reference,
		ShowID:           d.Booking.ShowID,
		Seats:            d.Booking.Seats,
		TotalAmountCents: d.Booking.TotalAmountCents,
		Status:           d.Booking.Status,
		BookingDate:      d.Booking.BookingDate,
		ShowStartsAt:     d.ShowStartsAt,
		MovieTitle:       d.MovieTitle,
		CinemaName:       d.CinemaName,
		ScreenNumber:     d.ScreenNumber,
	}
}

// CreateBooking handles POST /v1/bookings.  It books one to six seats of
// a show for the acting holder.  Each requested seat must be neither
// booked nor held by another holder; holding the seats first is not
// required.  On conflict nothing changes and the response is 400 with
// the unavailable seats.  On success the booking is committed together
// with the seat-state change, the holder's remaining holds on the show
// are released, and a confirmation is fanned out to seat-map viewers and
// to the message broker.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowID uint64   `json:"show_id"`
		Seats  []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_id is required"})
	}
	seats := dedupeSeats(body.Seats)
	if len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	if len(seats) > maxSeatsPerRequest {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats requested"})
	}
	showID := body.ShowID

	ctx := c.Request().Context()
	unlock := h.Locks.Lock(showID)
	defer unlock()

	tx, err := h.ShowRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	show, err := h.ShowRepo.LockTx(ctx, tx, showID)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock show"})
	}
	rows, cols, err := h.ShowRepo.ScreenLayoutTx(ctx, tx, show.ScreenID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load screen layout"})
	}
	layout := ledger.Layout{Rows: rows, Cols: cols}
	for _, s := range seats {
		if !layout.Valid(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat label", "seat": s})
		}
	}

	now := time.Now().UTC()
	if err := h.LedgerRepo.DeleteExpiredHoldsTx(ctx, tx, showID, now.Add(-ledger.HoldTTL)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to expire holds"})
	}
	state, err := h.LedgerRepo.LoadStateTx(ctx, tx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat state"})
	}
	state.Prune(now)
	if unavailable := state.Unavailable(holderID, seats); len(unavailable) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable,
		})
	}

	if err := h.LedgerRepo.InsertBookedTx(ctx, tx, showID, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark seats booked"})
	}
	// Booking always consumes the holder's entire hold set on the show.
	released, err := h.LedgerRepo.DeleteHolderHoldsTx(ctx, tx, showID, holderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release holds"})
	}
	booking := &model.Booking{
		Reference:        uuid.NewString(),
		HolderID:         holderID,
		ShowID:           showID,
		Seats:            seats,
		TotalAmountCents: uint32(len(seats)) * show.PriceCents,
	}
	if err := h.BookingRepo.CreateTx(ctx, tx, booking); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	origin := clientOrigin(c)
	if dropped := subtractSeats(released, seats); len(dropped) > 0 {
		h.Hub.Publish(ctx, realtime.Event{
			Type: realtime.SeatsUnblocked, ShowID: showID, Seats: dropped, HolderID: holderID, Origin: origin,
		})
	}
	h.Hub.Publish(ctx, realtime.Event{
		Type: realtime.BookingConfirmed, ShowID: showID, Seats: seats, HolderID: holderID, Origin: origin,
	})

	ev := queue.BookingConfirmedEvent{
		BookingID:        booking.ID,
		Reference:        booking.Reference,
		HolderID:         holderID,
		ShowID:           showID,
		ShowStartsAt:     show.StartsAt.UTC().Format(time.RFC3339),
		Seats:            seats,
		TotalAmountCents: booking.TotalAmountCents,
		ConfirmedAt:      booking.BookingDate.UTC().Format(time.RFC3339),
	}
	if detail, derr := h.ShowRepo.GetDetail(ctx, showID); derr == nil {
		ev.MovieTitle = detail.MovieTitle
		ev.CinemaName = detail.CinemaName
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingConfirmed(pubCtx, ev)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"booking": bookingView{
		ID:               booking.ID,
		Reference:        booking.Reference,
		ShowID:           booking.ShowID,
		Seats:            booking.Seats,
		TotalAmountCents: booking.TotalAmountCents,
		Status:           booking.Status,
		BookingDate:      booking.BookingDate,
	}})
}

// CancelBooking handles PUT /v1/bookings/:id/cancel.  It cancels a
// confirmed booking owned by the acting holder and releases its seats,
// provided the show has not started yet.  Cancelling an already
// cancelled booking or one whose show time has passed answers 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	// The show ID is needed before the keyed lock can be taken; the
	// transactional re-read below revalidates everything under the lock.
	peek, err := h.BookingRepo.GetByIDForHolder(ctx, bookingID, holderID)
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	showID := peek.Booking.ShowID

	unlock := h.Locks.Lock(showID)
	defer unlock()

	tx, err := h.ShowRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := h.ShowRepo.LockTx(ctx, tx, showID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock show"})
	}
	booking, startsAt, err := h.BookingRepo.GetForCancelTx(ctx, tx, bookingID, holderID)
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if booking.Status == model.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	}
	now := time.Now().UTC()
	if !startsAt.After(now) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "show already started"})
	}
	if err := h.BookingRepo.CancelTx(ctx, tx, bookingID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := h.LedgerRepo.DeleteBookedTx(ctx, tx, showID, booking.Seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release seats"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	h.Hub.Publish(ctx, realtime.Event{
		Type:     realtime.BookingCancelled,
		ShowID:   showID,
		Seats:    booking.Seats,
		HolderID: holderID,
		Origin:   clientOrigin(c),
	})
	ev := queue.BookingCancelledEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		HolderID:    holderID,
		ShowID:      showID,
		Seats:       booking.Seats,
		CancelledAt: now.Format(time.RFC3339),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCancelled(pubCtx, ev)
	}()

	return c.JSON(http.StatusOK, echo.Map{"booking": bookingView{
		ID:               booking.ID,
		Reference:        booking.Reference,
		ShowID:           booking.ShowID,
		Seats:            booking.Seats,
		TotalAmountCents: booking.TotalAmountCents,
		Status:           model.BookingCancelled,
		BookingDate:      booking.BookingDate,
		ShowStartsAt:     startsAt,
	}})
}

// ListMyBookings handles GET /v1/my-bookings.  It returns every booking
// of the acting holder, newest first, with show and catalog names joined
// in.  An empty history yields an empty items array.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.BookingRepo.ListByHolder(c.Request().Context(), holderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	items := make([]bookingView, 0, len(details))
	for i := range details {
		items = append(items, detailView(&details[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  It returns one booking of
// the acting holder; 404 when it does not exist, 403 when it belongs to
// someone else.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.BookingRepo.GetByIDForHolder(c.Request().Context(), bookingID, holderID)
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detailView(detail)})
}
