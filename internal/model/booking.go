package model

import "time"

// BookingStatus values.  A booking is created as CONFIRMED and is
// immutable afterwards except for the transition to CANCELLED.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking records a holder's purchase of one to six seats for a show.
// The seat labels live in the `booking_seats` table; TotalAmountCents is
// always len(seats) × show.PriceCents at the moment of booking.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – opaque UUID handed to the client (ticket reference).
//  HolderID         – user who owns the booking.
//  ShowID           – show being booked.
//  Seats            – seat labels covered by the booking.
//  TotalAmountCents – total price in cents.
//  Status           – CONFIRMED or CANCELLED.
//  BookingDate      – when the booking was confirmed.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64    // bookings.id
	Reference        string    // bookings.reference
	HolderID         uint64    // bookings.holder_id
	ShowID           uint64    // bookings.show_id
	Seats            []string  // booking_seats.seat_label, ordered
	TotalAmountCents uint32    // bookings.total_amount_cents
	Status           string    // bookings.status
	BookingDate      time.Time // bookings.booking_date
	UpdatedAt        time.Time // bookings.updated_at
}
