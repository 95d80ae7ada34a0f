package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cinebook/movie-booking/internal/repository"
)

// StreamShowEvents handles GET /v1/shows/:id/events.  It streams the
// show's seat events over Server-Sent Events for as long as the client
// stays connected.  Clients that also mutate seats should pass their
// connection ID via ?client_id and repeat it in the X-Client-ID header
// on mutations, so their own changes are not echoed back to them.
func (h *ShowHandler) StreamShowEvents(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if _, err := h.ShowRepo.GetByID(c.Request().Context(), showID); err != nil {
		if err == repository.ErrShowNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	connID := c.QueryParam("client_id")
	if connID == "" {
		connID = uuid.NewString()
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	// Tell the client its connection ID before any seat event arrives.
	fmt.Fprintf(res, "event: connected\ndata: {\"client_id\":%q}\n\n", connID)
	res.Flush()

	sub := h.Hub.Subscribe(showID, connID)
	defer h.Hub.Unsubscribe(sub)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, payload)
			res.Flush()
		}
	}
}
