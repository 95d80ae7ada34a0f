package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/ledger"
	"github.com/cinebook/movie-booking/internal/realtime"
	"github.com/cinebook/movie-booking/internal/repository"
)

// maxSeatsPerRequest caps how many seats one holder can block or book in
// a single request.
const maxSeatsPerRequest = 6

// ShowHandler serves the seat map and the hold mutations on a show.  All
// seat-state reads and writes go through the same per-show critical
// section: the in-process keyed mutex serializes handlers of this
// instance, and SELECT ... FOR UPDATE on the show row serializes across
// instances sharing the database.
type ShowHandler struct {
	ShowRepo   *repository.ShowRepo
	LedgerRepo *repository.SeatLedgerRepo
	Hub        *realtime.Hub
	Locks      *ledger.Locks
}

// NewShowHandler constructs a ShowHandler.  All dependencies must be
// non-nil.
func NewShowHandler(showRepo *repository.ShowRepo, ledgerRepo *repository.SeatLedgerRepo, hub *realtime.Hub, locks *ledger.Locks) *ShowHandler {
	if showRepo == nil || ledgerRepo == nil || hub == nil || locks == nil {
		panic("nil dependency passed to NewShowHandler")
	}
	return &ShowHandler{ShowRepo: showRepo, LedgerRepo: ledgerRepo, Hub: hub, Locks: locks}
}

// heldSeat is one active hold as exposed on the seat map.  Clients use
// HolderID to tell their own holds apart from other viewers'.
type heldSeat struct {
	Seat      string    `json:"seat"`
	HolderID  uint64    `json:"holder_id"`
	BlockedAt time.Time `json:"blocked_at"`
}

// showView is the seat-map page payload.
type showView struct {
	ID           uint64    `json:"id"`
	MovieTitle   string    `json:"movie_title"`
	CinemaName   string    `json:"cinema_name"`
	ScreenNumber uint32    `json:"screen_number"`
	StartsAt     time.Time `json:"starts_at"`
	PriceCents   uint32    `json:"price_cents"`
	SeatRows     uint32    `json:"seat_rows"`
	SeatCols     uint32    `json:"seat_cols"`
}

// GetShow handles GET /v1/shows/:id.  It returns the show together with
// its current seat state.  Reading the state first expires stale holds
// and persists the cleanup, so expiry needs no background job: any
// visit to the seat map sweeps it.
func (h *ShowHandler) GetShow(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	detail, err := h.ShowRepo.GetDetail(ctx, showID)
	if err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

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
	now := time.Now().UTC()
	if err := h.LedgerRepo.DeleteExpiredHoldsTx(ctx, tx, showID, now.Add(-ledger.HoldTTL)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to expire holds"})
	}
	state, err := h.LedgerRepo.LoadStateTx(ctx, tx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat state"})
	}
	state.Prune(now)
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	held := make([]heldSeat, 0, len(state.Holds))
	for _, hold := range state.Holds {
		held = append(held, heldSeat{Seat: hold.Seat, HolderID: hold.HolderID, BlockedAt: hold.BlockedAt})
	}
	booked := state.Booked
	if booked == nil {
		booked = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show": showView{
			ID:           detail.Show.ID,
			MovieTitle:   detail.MovieTitle,
			CinemaName:   detail.CinemaName,
			ScreenNumber: detail.ScreenNumber,
			StartsAt:     detail.Show.StartsAt,
			PriceCents:   detail.Show.PriceCents,
			SeatRows:     detail.SeatRows,
			SeatCols:     detail.SeatCols,
		},
		"booked": booked,
		"held":   held,
	})
}

// BlockSeats handles POST /v1/shows/:id/block-seats.  It places a
// five-minute hold on the requested seats for the acting holder,
// replacing any holds the holder already had on this show.  When any
// requested seat is booked or held by someone else, nothing changes and
// the response is 409 with the list of unavailable seats.
func (h *ShowHandler) BlockSeats(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var body struct {
		Seats []string `json:"seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seats := dedupeSeats(body.Seats)
	if len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	if len(seats) > maxSeatsPerRequest {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats requested"})
	}

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
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are unavailable",
			"unavailable": unavailable,
		})
	}

	// Replace the holder's previous hold set with the new one.
	released, err := h.LedgerRepo.DeleteHolderHoldsTx(ctx, tx, showID, holderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release previous holds"})
	}
	if err := h.LedgerRepo.InsertHoldsTx(ctx, tx, showID, holderID, seats, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create holds"})
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
		Type: realtime.SeatsBlocked, ShowID: showID, Seats: seats, HolderID: holderID, Origin: origin,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"held":       seats,
		"expires_at": now.Add(ledger.HoldTTL).Format(time.RFC3339),
	})
}

// UnblockSeats handles POST /v1/shows/:id/unblock-seats.  It releases
// every hold the acting holder has on the show.  Releasing when nothing
// is held is not an error; the response then reports zero seats.
func (h *ShowHandler) UnblockSeats(c echo.Context) error {
	holderID, err := getHolderID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

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
	if _, err := h.ShowRepo.LockTx(ctx, tx, showID); err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to lock show"})
	}
	released, err := h.LedgerRepo.DeleteHolderHoldsTx(ctx, tx, showID, holderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release holds"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if len(released) > 0 {
		h.Hub.Publish(ctx, realtime.Event{
			Type:     realtime.SeatsUnblocked,
			ShowID:   showID,
			Seats:    released,
			HolderID: holderID,
			Origin:   clientOrigin(c),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"unblocked_seats": released})
}

// subtractSeats returns the elements of a that are not in b.
func subtractSeats(a, b []string) []string {
	keep := make(map[string]struct{}, len(b))
	for _, s := range b {
		keep[s] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, s := range a {
		if _, ok := keep[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
