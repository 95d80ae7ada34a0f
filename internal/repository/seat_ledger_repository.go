package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinebook/movie-booking/internal/ledger"
)

// SeatLedgerRepo provides data access to a show's seat state: the
// show_booked_seats table (permanent occupancy) and the seat_holds table
// (temporary claims).  All methods take an open transaction; seat state
// is only ever read or written inside the per-show critical section that
// begins with ShowRepo.LockTx.  Timestamps are UTC throughout; callers
// must perform expiry comparisons in UTC.
type SeatLedgerRepo struct {
	db *sql.DB
}

// NewSeatLedgerRepo returns a new SeatLedgerRepo bound to the provided database.
func NewSeatLedgerRepo(db *sql.DB) *SeatLedgerRepo { return &SeatLedgerRepo{db: db} }

// LoadStateTx reads the full seat state of a show (booked seats and all
// remaining holds) into a ledger.State.  Expired holds are included; callers
// prune them via ledger.State.Prune and persist the prune with
// DeleteExpiredHoldsTx so that every read path leaves a clean set behind.
func (r *SeatLedgerRepo) LoadStateTx(ctx context.Context, tx *sql.Tx, showID uint64) (*ledger.State, error) {
	st := &ledger.State{}

	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM show_booked_seats WHERE show_id = ? ORDER BY id`, showID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var seat string
		if scanErr := rows.Scan(&seat); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		st.Booked = append(st.Booked, seat)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT seat_label, holder_id, blocked_at FROM seat_holds WHERE show_id = ? ORDER BY id`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var h ledger.Hold
		if err := rows.Scan(&h.Seat, &h.HolderID, &h.BlockedAt); err != nil {
			return nil, err
		}
		st.Holds = append(st.Holds, h)
	}
	return st, rows.Err()
}

// DeleteExpiredHoldsTx removes every hold of the show whose blocked_at is
// at or before cutoff (now minus ledger.HoldTTL).  It persists the lazy
// prune that ledger.State.Prune performed in memory; the two must be
// given the same instant.
func (r *SeatLedgerRepo) DeleteExpiredHoldsTx(ctx context.Context, tx *sql.Tx, showID uint64, cutoff time.Time) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE show_id = ? AND blocked_at <= ?`,
		showID, cutoff.UTC(),
	)
	return err
}

// DeleteHolderHoldsTx removes all holds of one holder for the show and
// returns the seat labels that were released.  Deleting when the holder
// has no holds is not an error and returns an empty slice.
func (r *SeatLedgerRepo) DeleteHolderHoldsTx(ctx context.Context, tx *sql.Tx, showID, holderID uint64) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM seat_holds WHERE show_id = ? AND holder_id = ?`, showID, holderID)
	if err != nil {
		return nil, err
	}
	seats := []string{}
	for rows.Next() {
		var seat string
		if scanErr := rows.Scan(&seat); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		seats = append(seats, seat)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return seats, nil
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE show_id = ? AND holder_id = ?`, showID, holderID); err != nil {
		return nil, err
	}
	return seats, nil
}

// InsertHoldsTx inserts fresh holds for the given seats, all owned by
// holderID with the same blocked_at.  Passing an empty slice has no
// effect and returns nil.
func (r *SeatLedgerRepo) InsertHoldsTx(ctx context.Context, tx *sql.Tx, showID, holderID uint64, seats []string, blockedAt time.Time) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seat_holds (show_id, seat_label, holder_id, blocked_at) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, showID, seat, holderID, blockedAt.UTC())
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// InsertBookedTx appends seats to the show's permanently booked set.
func (r *SeatLedgerRepo) InsertBookedTx(ctx context.Context, tx *sql.Tx, showID uint64, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO show_booked_seats (show_id, seat_label) VALUES `
	args := make([]interface{}, 0, len(seats)*2)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, showID, seat)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteBookedTx removes seats from the show's booked set.  Used when a
// booking is cancelled; the seats become free immediately.
func (r *SeatLedgerRepo) DeleteBookedTx(ctx context.Context, tx *sql.Tx, showID uint64, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	query := `DELETE FROM show_booked_seats WHERE show_id = ? AND seat_label IN (`
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, showID)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, seat)
	}
	query += ")"
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
