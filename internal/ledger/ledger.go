// Package ledger implements the per-show seat ledger: the authoritative
// record of which seats are booked, which are temporarily held, and which
// are free.  The State type is loaded inside a per-show critical section,
// mutated in memory, and persisted back in the same transaction.  Hold
// expiry is lazy: every read or mutate path prunes expired holds first and
// persists the pruned set; there is no background sweeper.
package ledger

import "time"

// HoldTTL is the fixed lifetime of a seat hold.  A hold whose BlockedAt is
// more than HoldTTL in the past is expired and is discarded by Prune before
// any availability decision is made.
const HoldTTL = 5 * time.Minute

// Hold is a temporary, per-holder claim on a single seat.  It is created
// by a block-seats call and dies by expiry, explicit release, a newer
// block-seats call from the same holder, or absorption into a booking.
type Hold struct {
	Seat      string    // seat label such as "A1"
	HolderID  uint64    // user who owns the hold
	BlockedAt time.Time // when the hold was created; expiry is BlockedAt+HoldTTL
}

// State is the seat ledger of one show.  Booked lists permanently occupied
// seats; Holds lists the live temporary claims.  In steady state a seat
// label appears at most once across Booked and the non-expired Holds.
type State struct {
	Booked []string
	Holds  []Hold
}

// Prune drops every hold that has outlived HoldTTL and returns the seat
// labels that were released.  Callers must invoke Prune before any
// availability check and persist the pruned set.
func (s *State) Prune(now time.Time) []string {
	kept := s.Holds[:0]
	var expired []string
	for _, h := range s.Holds {
		if h.BlockedAt.Add(HoldTTL).After(now) {
			kept = append(kept, h)
		} else {
			expired = append(expired, h.Seat)
		}
	}
	s.Holds = kept
	return expired
}

// IsBooked reports whether the seat is permanently occupied.
func (s *State) IsBooked(seat string) bool {
	for _, b := range s.Booked {
		if b == seat {
			return true
		}
	}
	return false
}

// Unavailable returns, in request order, every requested seat that is
// either booked or held by a holder other than holderID.  A seat that is
// free, or that holderID itself holds, is not reported.  Callers must have
// pruned expired holds first.  An empty result means the whole request may
// proceed; a non-empty result means the whole request must fail, so that
// partial holds or bookings are never created.
func (s *State) Unavailable(holderID uint64, seats []string) []string {
	var out []string
	for _, seat := range seats {
		if s.IsBooked(seat) {
			out = append(out, seat)
			continue
		}
		for _, h := range s.Holds {
			if h.Seat == seat && h.HolderID != holderID {
				out = append(out, seat)
				break
			}
		}
	}
	return out
}

// ReplaceHolds removes every existing hold owned by holderID and installs
// fresh holds for seats with BlockedAt = now.  A holder has at most one
// active hold-set per show; a new selection supersedes the old one rather
// than adding to it.
func (s *State) ReplaceHolds(holderID uint64, seats []string, now time.Time) {
	kept := s.Holds[:0]
	for _, h := range s.Holds {
		if h.HolderID != holderID {
			kept = append(kept, h)
		}
	}
	s.Holds = kept
	for _, seat := range seats {
		s.Holds = append(s.Holds, Hold{Seat: seat, HolderID: holderID, BlockedAt: now})
	}
}

// ReleaseHolder removes all holds owned by holderID and returns the seat
// labels that were released.  Releasing with no active holds is not an
// error; it returns an empty slice.
func (s *State) ReleaseHolder(holderID uint64) []string {
	kept := s.Holds[:0]
	released := []string{}
	for _, h := range s.Holds {
		if h.HolderID == holderID {
			released = append(released, h.Seat)
		} else {
			kept = append(kept, h)
		}
	}
	s.Holds = kept
	return released
}

// HolderSeats returns the seats currently held by holderID.
func (s *State) HolderSeats(holderID uint64) []string {
	var out []string
	for _, h := range s.Holds {
		if h.HolderID == holderID {
			out = append(out, h.Seat)
		}
	}
	return out
}

// Book appends seats to the booked set and discards every hold owned by
// holderID, whether or not it matched the booked seats.  Callers must have
// verified availability via Unavailable under the same critical section.
func (s *State) Book(holderID uint64, seats []string) {
	s.Booked = append(s.Booked, seats...)
	s.ReleaseHolder(holderID)
}

// Release removes seats from the booked set.  Used when a booking is
// cancelled; the seats become immediately available again.
func (s *State) Release(seats []string) {
	drop := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		drop[seat] = struct{}{}
	}
	kept := s.Booked[:0]
	for _, b := range s.Booked {
		if _, gone := drop[b]; !gone {
			kept = append(kept, b)
		}
	}
	s.Booked = kept
}
