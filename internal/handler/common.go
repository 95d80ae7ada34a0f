package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getHolderID extracts the acting holder's ID from the echo context and
// converts it to uint64.  The JWT middleware stores the token subject
// under "holder_id"; depending on how the auth service encodes it, the
// value arrives as a string or as a JSON number.
func getHolderID(c echo.Context) (uint64, error) {
	v := c.Get("holder_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("holder id missing from context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// clientOrigin returns the caller's realtime connection ID, when the
// client supplied one.  Seat events carry it so the connection that
// caused a change does not receive its own notification.
func clientOrigin(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("X-Client-ID"))
}

// dedupeSeats normalizes seat labels (trimmed, uppercased) and drops
// duplicates while preserving request order.
func dedupeSeats(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
