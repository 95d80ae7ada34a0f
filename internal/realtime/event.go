// Package realtime propagates seat-state changes to every client that is
// currently viewing a show, so remote seat maps converge without polling.
// Delivery is best-effort and at-most-once per connected client: the
// ledger in the database stays authoritative and a client that misses an
// event reconciles by re-fetching show state.
package realtime

// Event types mirror the seat-state mutations on a show.
const (
	SeatsBlocked     = "seats-blocked"
	SeatsUnblocked   = "seats-unblocked"
	BookingConfirmed = "booking-confirmed"
	BookingCancelled = "booking-cancelled"
)

// Event is one seat-state change broadcast to the viewers of a show.
// Origin carries the connection ID of the client whose request caused
// the mutation; that connection is excluded from delivery since it
// already has local optimistic state.
type Event struct {
	Type     string   `json:"type"`
	ShowID   uint64   `json:"show_id"`
	Seats    []string `json:"seats"`
	HolderID uint64   `json:"holder_id"`
	Origin   string   `json:"origin,omitempty"`
}
