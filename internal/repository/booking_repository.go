package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinebook/movie-booking/internal/model"
)

// BookingDetail is a booking joined with its show schedule and catalog
// names, shaped for the booking history and confirmation pages.
type BookingDetail struct {
	Booking      model.Booking
	ShowStartsAt time.Time
	MovieTitle   string
	CinemaName   string
	ScreenNumber uint32
}

// BookingRepo provides data access to the bookings and booking_seats
// tables.  Creation and cancellation run inside the caller's transaction
// so they commit atomically with the seat-state mutation on the show.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking and its seat rows within the provided
// transaction.  On success the generated ID and the DB-default fields
// (status, booking_date, updated_at) are populated on the given Booking.
// The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, holder_id, show_id, total_amount_cents) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.Reference, b.HolderID, b.ShowID, b.TotalAmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(b.Seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_label) VALUES `
		args := make([]interface{}, 0, len(b.Seats)*2)
		for i, seat := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, b.ID, seat)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	// Fetch the freshly inserted row to populate default fields.
	const sel = `SELECT status, booking_date, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.Status, &b.BookingDate, &b.UpdatedAt)
}

// GetForCancelTx loads a booking together with its show's start time
// inside the provided transaction.  It returns ErrBookingNotFound when no
// row exists and ErrForbidden when the booking belongs to a different
// holder.  The seats slice is always populated so the caller can release
// them on cancellation.
func (r *BookingRepo) GetForCancelTx(ctx context.Context, tx *sql.Tx, bookingID, holderID uint64) (*model.Booking, time.Time, error) {
	const q = `SELECT b.id, b.reference, b.holder_id, b.show_id, b.total_amount_cents, b.status,
	                  b.booking_date, b.updated_at, s.starts_at
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           WHERE b.id = ? FOR UPDATE`
	var b model.Booking
	var startsAt time.Time
	err := tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.Reference, &b.HolderID, &b.ShowID, &b.TotalAmountCents, &b.Status,
		&b.BookingDate, &b.UpdatedAt, &startsAt,
	)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrBookingNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	if b.HolderID != holderID {
		return nil, time.Time{}, ErrForbidden
	}
	seats, err := r.seatsTx(ctx, tx, b.ID)
	if err != nil {
		return nil, time.Time{}, err
	}
	b.Seats = seats
	return &b, startsAt, nil
}

// CancelTx transitions a booking to CANCELLED within the transaction.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, model.BookingCancelled, bookingID)
	return err
}

// seatsTx loads the ordered seat labels of one booking.
func (r *BookingRepo) seatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// GetByIDForHolder retrieves a single booking with its show detail.  It
// returns ErrBookingNotFound when the booking does not exist and
// ErrForbidden when it belongs to another holder, so handlers can answer
// 404 and 403 distinctly.
func (r *BookingRepo) GetByIDForHolder(ctx context.Context, bookingID, holderID uint64) (*BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.holder_id, b.show_id, b.total_amount_cents, b.status,
	                  b.booking_date, b.updated_at,
	                  s.starts_at, m.title, c.name, sc.screen_number
	           FROM bookings b
	           JOIN shows s   ON s.id = b.show_id
	           JOIN movies m  ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           JOIN screens sc ON sc.id = s.screen_id
	           WHERE b.id = ?`
	var d BookingDetail
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&d.Booking.ID, &d.Booking.Reference, &d.Booking.HolderID, &d.Booking.ShowID,
		&d.Booking.TotalAmountCents, &d.Booking.Status, &d.Booking.BookingDate, &d.Booking.UpdatedAt,
		&d.ShowStartsAt, &d.MovieTitle, &d.CinemaName, &d.ScreenNumber,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Booking.HolderID != holderID {
		return nil, ErrForbidden
	}
	seats, err := r.seats(ctx, d.Booking.ID)
	if err != nil {
		return nil, err
	}
	d.Booking.Seats = seats
	return &d, nil
}

// seats is the non-transactional variant of seatsTx for read paths.
func (r *BookingRepo) seats(ctx context.Context, bookingID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// ListByHolder returns all bookings of a holder, newest first, each with
// its show detail and seat labels.  When the holder has no bookings an
// empty slice is returned.
func (r *BookingRepo) ListByHolder(ctx context.Context, holderID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.holder_id, b.show_id, b.total_amount_cents, b.status,
	                  b.booking_date, b.updated_at,
	                  s.starts_at, m.title, c.name, sc.screen_number
	           FROM bookings b
	           JOIN shows s   ON s.id = b.show_id
	           JOIN movies m  ON m.id = s.movie_id
	           JOIN cinemas c ON c.id = s.cinema_id
	           JOIN screens sc ON sc.id = s.screen_id
	           WHERE b.holder_id = ?
	           ORDER BY b.booking_date DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, holderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []BookingDetail{}
	ids := []uint64{}
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(
			&d.Booking.ID, &d.Booking.Reference, &d.Booking.HolderID, &d.Booking.ShowID,
			&d.Booking.TotalAmountCents, &d.Booking.Status, &d.Booking.BookingDate, &d.Booking.UpdatedAt,
			&d.ShowStartsAt, &d.MovieTitle, &d.CinemaName, &d.ScreenNumber,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
		ids = append(ids, d.Booking.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return details, nil
	}

	// Load all seat labels in one query and attach them per booking.
	seatQuery := `SELECT booking_id, seat_label FROM booking_seats WHERE booking_id IN (`
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			seatQuery += ","
		}
		seatQuery += "?"
		args = append(args, id)
	}
	seatQuery += `) ORDER BY id`
	seatRows, err := r.db.QueryContext(ctx, seatQuery, args...)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()
	byBooking := make(map[uint64][]string, len(ids))
	for seatRows.Next() {
		var id uint64
		var seat string
		if err := seatRows.Scan(&id, &seat); err != nil {
			return nil, err
		}
		byBooking[id] = append(byBooking[id], seat)
	}
	if err := seatRows.Err(); err != nil {
		return nil, err
	}
	for i := range details {
		details[i].Booking.Seats = byBooking[details[i].Booking.ID]
	}
	return details, nil
}
