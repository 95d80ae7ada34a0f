// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is successfully confirmed.
// It contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	Reference        string   `json:"reference"`
	HolderID         uint64   `json:"holder_id"`
	ShowID           uint64   `json:"show_id"`
	MovieTitle       string   `json:"movie_title"`
	CinemaName       string   `json:"cinema_name"`
	ShowStartsAt     string   `json:"show_starts_at"`
	Seats            []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a confirmed booking is cancelled
// before show time and its seats are released.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	Reference   string   `json:"reference"`
	HolderID    uint64   `json:"holder_id"`
	ShowID      uint64   `json:"show_id"`
	Seats       []string `json:"seats"`
	CancelledAt string   `json:"cancelled_at"`
}
