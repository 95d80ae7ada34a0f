package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", SeatLabel(0, 1))
	assert.Equal(t, "J10", SeatLabel(9, 10))
	assert.Equal(t, "Z3", SeatLabel(25, 3))
	assert.Equal(t, "AA1", SeatLabel(26, 1))
	assert.Equal(t, "", SeatLabel(-1, 1))
	assert.Equal(t, "", SeatLabel(0, 0))
}

func TestParseSeat(t *testing.T) {
	row, col, ok := ParseSeat("J10")
	require.True(t, ok)
	assert.Equal(t, 9, row)
	assert.Equal(t, uint32(10), col)

	row, col, ok = ParseSeat(" a1 ")
	require.True(t, ok, "labels are case and whitespace insensitive")
	assert.Equal(t, 0, row)
	assert.Equal(t, uint32(1), col)

	for _, bad := range []string{"", "A", "10", "A0", "1A", "A-1", "A1B"} {
		_, _, ok := ParseSeat(bad)
		assert.False(t, ok, "label %q must not parse", bad)
	}
}

func TestLayoutValid(t *testing.T) {
	l := Layout{Rows: 10, Cols: 10}
	assert.True(t, l.Valid("A1"))
	assert.True(t, l.Valid("J10"))
	assert.False(t, l.Valid("K1"), "row beyond layout")
	assert.False(t, l.Valid("A11"), "column beyond layout")
	assert.False(t, l.Valid("AA1"))
	assert.False(t, l.Valid("A0"))
}

func TestLayoutLabels(t *testing.T) {
	l := Layout{Rows: 2, Cols: 3}
	assert.Equal(t, []string{"A1", "A2", "A3", "B1", "B2", "B3"}, l.Labels())
}
