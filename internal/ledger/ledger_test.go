package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneDropsOnlyExpiredHolds(t *testing.T) {
	now := time.Now()
	s := &State{Holds: []Hold{
		{Seat: "A1", HolderID: 1, BlockedAt: now.Add(-6 * time.Minute)},
		{Seat: "A2", HolderID: 2, BlockedAt: now.Add(-4 * time.Minute)},
		{Seat: "A3", HolderID: 1, BlockedAt: now.Add(-HoldTTL)}, // exactly at TTL: expired
	}}
	expired := s.Prune(now)
	assert.ElementsMatch(t, []string{"A1", "A3"}, expired)
	require.Len(t, s.Holds, 1)
	assert.Equal(t, "A2", s.Holds[0].Seat)
}

func TestPruneIsIdempotent(t *testing.T) {
	now := time.Now()
	s := &State{Holds: []Hold{{Seat: "B1", HolderID: 7, BlockedAt: now}}}
	require.Empty(t, s.Prune(now))
	require.Empty(t, s.Prune(now))
	assert.Len(t, s.Holds, 1)
}

func TestUnavailableListsBookedAndForeignHeldSeats(t *testing.T) {
	now := time.Now()
	s := &State{
		Booked: []string{"C1"},
		Holds:  []Hold{{Seat: "A2", HolderID: 1, BlockedAt: now}},
	}
	// u2 asks for a booked seat, a seat held by u1 and a free seat.
	got := s.Unavailable(2, []string{"C1", "A2", "A3"})
	assert.Equal(t, []string{"C1", "A2"}, got)
	// u1's own hold does not count against u1.
	assert.Empty(t, s.Unavailable(1, []string{"A2", "A3"}))
}

func TestDisjointHoldSetsDoNotConflict(t *testing.T) {
	now := time.Now()
	s := &State{}
	require.Empty(t, s.Unavailable(1, []string{"A1", "A2"}))
	s.ReplaceHolds(1, []string{"A1", "A2"}, now)
	require.Empty(t, s.Unavailable(2, []string{"B1", "B2"}))
	s.ReplaceHolds(2, []string{"B1", "B2"}, now)
	assert.Len(t, s.Holds, 4)
}

func TestSecondBlockCallSupersedesFirst(t *testing.T) {
	now := time.Now()
	s := &State{}
	s.ReplaceHolds(1, []string{"A1", "A2"}, now)
	s.ReplaceHolds(1, []string{"B5"}, now.Add(time.Second))
	assert.Equal(t, []string{"B5"}, s.HolderSeats(1))
	assert.Len(t, s.Holds, 1)
}

func TestExpiredHoldDoesNotBlockNewHolder(t *testing.T) {
	t0 := time.Now()
	s := &State{}
	s.ReplaceHolds(1, []string{"B1"}, t0)

	// At t0+6min u1's hold has expired; u2 may take B1.
	later := t0.Add(6 * time.Minute)
	s.Prune(later)
	require.Empty(t, s.Unavailable(2, []string{"B1"}))
	s.ReplaceHolds(2, []string{"B1"}, later)
	assert.Equal(t, []string{"B1"}, s.HolderSeats(2))
	assert.Empty(t, s.HolderSeats(1))
}

func TestReleaseHolderIsIdempotent(t *testing.T) {
	now := time.Now()
	s := &State{}
	s.ReplaceHolds(3, []string{"D4", "D5"}, now)
	assert.ElementsMatch(t, []string{"D4", "D5"}, s.ReleaseHolder(3))
	assert.Empty(t, s.ReleaseHolder(3))
	assert.Empty(t, s.Holds)
}

func TestBookClearsAllHolderHoldsAndMarksSeats(t *testing.T) {
	now := time.Now()
	s := &State{}
	// Holder held A1 and A2 but books A1 and A3 (walk-up on A3).
	s.ReplaceHolds(1, []string{"A1", "A2"}, now)
	require.Empty(t, s.Unavailable(1, []string{"A1", "A3"}))
	s.Book(1, []string{"A1", "A3"})
	assert.ElementsMatch(t, []string{"A1", "A3"}, s.Booked)
	assert.Empty(t, s.HolderSeats(1), "booking discards the holder's entire hold-set")
	// A2 is free again for anybody.
	assert.Empty(t, s.Unavailable(2, []string{"A2"}))
}

func TestCancelReleasesBookedSeats(t *testing.T) {
	s := &State{Booked: []string{"A1", "A2", "B1"}}
	s.Release([]string{"A1", "A2"})
	assert.Equal(t, []string{"B1"}, s.Booked)
	assert.Empty(t, s.Unavailable(9, []string{"A1", "A2"}))
}

// Walks the full scenario from the seat map flow: a 10×10 screen at 200
// cents per seat, two users racing over A2.
func TestTwoUserSeatMapScenario(t *testing.T) {
	now := time.Now()
	layout := Layout{Rows: 10, Cols: 10}
	s := &State{}

	// U1 blocks A1+A2.
	for _, seat := range []string{"A1", "A2"} {
		require.True(t, layout.Valid(seat))
	}
	require.Empty(t, s.Unavailable(1, []string{"A1", "A2"}))
	s.ReplaceHolds(1, []string{"A1", "A2"}, now)

	// U2 attempts A2+A3: conflict on A2 only, and nothing is held for U2.
	assert.Equal(t, []string{"A2"}, s.Unavailable(2, []string{"A2", "A3"}))
	assert.Empty(t, s.HolderSeats(2))

	// U1 books both seats at 200 cents each.
	require.Empty(t, s.Unavailable(1, []string{"A1", "A2"}))
	total := uint32(len([]string{"A1", "A2"})) * 200
	assert.Equal(t, uint32(400), total)
	s.Book(1, []string{"A1", "A2"})
	assert.ElementsMatch(t, []string{"A1", "A2"}, s.Booked)
	assert.Empty(t, s.HolderSeats(1))

	// A2 is now booked; U2 still cannot block it.
	assert.Equal(t, []string{"A2"}, s.Unavailable(2, []string{"A2"}))
}
