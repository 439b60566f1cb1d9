package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// ReservationRepo serves the admin read side of reservations.  Creation
// and lifecycle changes go through the booking engine, which owns the
// locking rules; this repo never writes.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// ListFilter narrows the admin reservation listing.  Zero values mean
// no filtering on that dimension.
type ListFilter struct {
	CabinID uint64
	Status  string
	Limit   int
	Offset  int
}

// List returns reservations newest first, optionally filtered by cabin
// and status.  Limit defaults to 50 and is capped at 200.
func (r *ReservationRepo) List(ctx context.Context, f ListFilter) ([]model.Reservation, error) {
	sel := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := make([]interface{}, 0, 4)
	if f.CabinID != 0 {
		sel += ` AND cabin_id = ?`
		args = append(args, f.CabinID)
	}
	if f.Status != "" {
		sel += ` AND status = ?`
		args = append(args, f.Status)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	sel += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// CountByStatus returns how many reservations sit in each status, for
// the admin dashboard.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
