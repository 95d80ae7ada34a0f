package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetHolderIDAcceptsCommonEncodings(t *testing.T) {
	for _, v := range []interface{}{uint64(7), int(7), int64(7), float64(7), "7", " 7 "} {
		c := testContext(t)
		c.Set("holder_id", v)
		id, err := getHolderID(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	}
}

func TestGetHolderIDRejectsMissingOrGarbage(t *testing.T) {
	c := testContext(t)
	_, err := getHolderID(c)
	assert.Error(t, err)

	c.Set("holder_id", "not-a-number")
	_, err = getHolderID(c)
	assert.Error(t, err)
}

func TestDedupeSeatsNormalizesAndKeepsOrder(t *testing.T) {
	got := dedupeSeats([]string{" a1 ", "B2", "a1", "", "b2", "C10"})
	assert.Equal(t, []string{"A1", "B2", "C10"}, got)
}

func TestSubtractSeats(t *testing.T) {
	assert.Equal(t, []string{"A1"}, subtractSeats([]string{"A1", "B2"}, []string{"B2"}))
	assert.Empty(t, subtractSeats([]string{"A1"}, []string{"A1"}))
	assert.Empty(t, subtractSeats(nil, []string{"A1"}))
}
