package middleware

// identity.go defines helper functions shared across middleware files.
// holderKey pulls the holder identity that JWTAuth stored in the Echo
// context; when the request is unauthenticated it returns "guest", which
// groups anonymous browse traffic under one rate-limit identity.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// holderKey returns a stable string form of the acting holder for use in
// rate-limit keys.  It never fails; unauthenticated requests map to
// "guest".
func holderKey(c echo.Context) string {
	v := c.Get("holder_id")
	if v == nil {
		return "guest"
	}
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return fmt.Sprintf("%.0f", t)
	case uint64:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	}
	return "guest"
}
