package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// invoke runs the JWTAuth middleware around a handler that records the
// holder identity it saw.
func invoke(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var sawHolder, sawRole string
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		sawHolder = holderKey(c)
		if r, ok := c.Get("role").(string); ok {
			sawRole = r
		}
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, sawHolder, sawRole
}

func TestJWTAuthValidToken(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "42",
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, holder, role := invoke(t, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", holder)
	assert.Equal(t, "customer", role)
}

func TestJWTAuthNumericSubject(t *testing.T) {
	// JSON numbers decode as float64; holderKey must render them whole.
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub":  7,
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, holder, _ := invoke(t, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", holder)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _, _ := invoke(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	rec, _, _ := invoke(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec, _, _ := invoke(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok := signToken(t, testSecret, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	rec, _, _ := invoke(t, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole("admin", "customer")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("customer"))
	assert.Equal(t, http.StatusOK, run("admin"))
	assert.Equal(t, http.StatusForbidden, run("viewer"))
	assert.Equal(t, http.StatusForbidden, run(nil))
}
