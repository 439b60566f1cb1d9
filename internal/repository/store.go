package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cabin-reservation/internal/engine"
	"github.com/iliyamo/cabin-reservation/internal/model"
)

// executor abstracts *sql.DB and *sql.Tx so the same queries serve both
// plain reads and transactional re-checks.
type executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// queries implements the engine's store reads and writes against an
// executor.  All timestamp columns are stored in UTC; DATE columns are
// scanned through model.Date so no timezone conversion ever touches a
// calendar date.
type queries struct {
	ex executor
}

// Store is the MySQL-backed persistence for the booking engine.  It
// satisfies engine.Store for advisory reads and engine.Runner for
// transactions.
type Store struct {
	queries
	db *sql.DB
}

// NewStore binds a Store to the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{queries: queries{ex: db}, db: db}
}

// DB exposes the underlying handle for repositories sharing the pool.
func (s *Store) DB() *sql.DB { return s.db }

// txStore is the transactional view handed to engine callbacks.
type txStore struct {
	queries
}

// InCabinTx runs fn inside a transaction that first takes an exclusive
// lock on the cabin row.  Concurrent bookings for the same cabin
// serialize on this lock, so the availability check fn performs is
// authoritative until commit.  Bookings for different cabins do not
// contend.  A missing cabin locks nothing; fn is still run so it can
// report the cabin as unavailable.
func (s *Store) InCabinTx(ctx context.Context, cabinID uint64, fn func(engine.TxStore) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var locked uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM cabins WHERE id = ? FOR UPDATE`, cabinID).Scan(&locked)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fn(txStore{queries{ex: tx}})
	})
}

// InTx runs fn inside a plain transaction.
func (s *Store) InTx(ctx context.Context, fn func(engine.TxStore) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(txStore{queries{ex: tx}})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CabinByID returns one cabin or engine.ErrNotFound.
func (q queries) CabinByID(ctx context.Context, id uint64) (*model.Cabin, error) {
	const sel = `SELECT id, name, slug, capacity, base_price_irr, base_price_usd,
                        is_available, sort_order, created_at, updated_at
                 FROM cabins WHERE id = ?`
	var c model.Cabin
	err := q.ex.QueryRowContext(ctx, sel, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Capacity, &c.BasePriceIRR, &c.BasePriceUSD,
		&c.IsAvailable, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ActiveStays returns the stay ranges of every reservation on the cabin
// whose status blocks availability.
func (q queries) ActiveStays(ctx context.Context, cabinID uint64) ([]engine.Stay, error) {
	const sel = `SELECT id, check_in_date, check_out_date
                 FROM reservations
                 WHERE cabin_id = ? AND status IN ('pending','pending_payment','confirmed')`
	rows, err := q.ex.QueryContext(ctx, sel, cabinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stays := make([]engine.Stay, 0)
	for rows.Next() {
		var s engine.Stay
		if err := rows.Scan(&s.ReservationID, &s.CheckIn, &s.CheckOut); err != nil {
			return nil, err
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

// BlockedDates returns blocks scoped to the cabin or to all cabins with
// dates in [from, to).
func (q queries) BlockedDates(ctx context.Context, cabinID uint64, from, to model.Date) ([]model.BlockedDate, error) {
	const sel = `SELECT id, date, cabin_id, reason, created_at, created_by
                 FROM blocked_dates
                 WHERE (cabin_id = ? OR cabin_id IS NULL) AND date >= ? AND date < ?`
	rows, err := q.ex.QueryContext(ctx, sel, cabinID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	blocks := make([]model.BlockedDate, 0)
	for rows.Next() {
		var b model.BlockedDate
		var cab sql.NullInt64
		var reason, createdBy sql.NullString
		if err := rows.Scan(&b.ID, &b.Date, &cab, &reason, &b.CreatedAt, &createdBy); err != nil {
			return nil, err
		}
		if cab.Valid {
			id := uint64(cab.Int64)
			b.CabinID = &id
		}
		if reason.Valid {
			r := reason.String
			b.Reason = &r
		}
		if createdBy.Valid {
			cb := createdBy.String
			b.CreatedBy = &cb
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// DailyPrices returns daily overrides scoped to the cabin or global,
// with dates in [from, to).
func (q queries) DailyPrices(ctx context.Context, cabinID uint64, from, to model.Date) ([]model.DailyPrice, error) {
	const sel = `SELECT id, cabin_id, date, price_irr, price_usd, reason, is_blocked, created_at
                 FROM daily_prices
                 WHERE (cabin_id = ? OR cabin_id IS NULL) AND date >= ? AND date < ?`
	rows, err := q.ex.QueryContext(ctx, sel, cabinID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make([]model.DailyPrice, 0)
	for rows.Next() {
		var p model.DailyPrice
		var cab sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&p.ID, &cab, &p.Date, &p.PriceIRR, &p.PriceUSD, &reason, &p.IsBlocked, &p.CreatedAt); err != nil {
			return nil, err
		}
		if cab.Valid {
			id := uint64(cab.Int64)
			p.CabinID = &id
		}
		if reason.Valid {
			r := reason.String
			p.Reason = &r
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// SeasonalPrices returns the cabin's active seasonal ranges.
func (q queries) SeasonalPrices(ctx context.Context, cabinID uint64) ([]model.SeasonalPrice, error) {
	const sel = `SELECT id, cabin_id, season_name, season_type, start_date, end_date,
                        price_irr, price_usd, is_active, created_at, updated_at
                 FROM seasonal_prices
                 WHERE cabin_id = ? AND is_active = 1`
	rows, err := q.ex.QueryContext(ctx, sel, cabinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := make([]model.SeasonalPrice, 0)
	for rows.Next() {
		var p model.SeasonalPrice
		if err := rows.Scan(&p.ID, &p.CabinID, &p.SeasonName, &p.SeasonType, &p.StartDate, &p.EndDate,
			&p.PriceIRR, &p.PriceUSD, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// CouponByCode matches a coupon code case-insensitively.
func (q queries) CouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const sel = `SELECT id, code, discount_type, discount_value, max_uses, used_count,
                        expires_at, is_active, created_at
                 FROM coupons WHERE LOWER(code) = LOWER(?) LIMIT 1`
	return scanCoupon(q.ex.QueryRowContext(ctx, sel, code))
}

// ReservationByID returns one reservation or engine.ErrNotFound.
func (q queries) ReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	return q.reservationRow(ctx, id, false)
}

// ReservationForUpdate locks the reservation row for the rest of the
// transaction.  Only meaningful on a txStore.
func (q queries) ReservationForUpdate(ctx context.Context, id string) (*model.Reservation, error) {
	return q.reservationRow(ctx, id, true)
}

const reservationColumns = `id, cabin_id, guest_name, guest_phone, guest_email, guests_count,
       check_in_date, check_out_date, nights_count,
       calculated_price_irr, calculated_price_usd,
       discount_amount_irr, discount_amount_usd,
       final_price_irr, final_price_usd, coupon_code,
       payment_method, payment_status, payment_reference,
       payment_verified_at, payment_verified_by,
       status, admin_notes, created_at, updated_at, confirmed_at, cancelled_at`

func (q queries) reservationRow(ctx context.Context, id string, forUpdate bool) (*model.Reservation, error) {
	sel := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if forUpdate {
		sel += ` FOR UPDATE`
	}
	r, err := scanReservation(q.ex.QueryRowContext(ctx, sel, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// InsertReservation persists a new reservation under a generated UUID
// and reads back the database-assigned timestamps.
func (q queries) InsertReservation(ctx context.Context, r *model.Reservation) error {
	r.ID = uuid.NewString()
	const ins = `INSERT INTO reservations
          (id, cabin_id, guest_name, guest_phone, guest_email, guests_count,
           check_in_date, check_out_date, nights_count,
           calculated_price_irr, calculated_price_usd,
           discount_amount_irr, discount_amount_usd,
           final_price_irr, final_price_usd, coupon_code,
           payment_method, payment_status, status)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ex.ExecContext(ctx, ins,
		r.ID, r.CabinID, r.GuestName, r.GuestPhone, r.GuestEmail, r.GuestsCount,
		r.CheckInDate, r.CheckOutDate, r.NightsCount,
		r.CalculatedPriceIRR, r.CalculatedPriceUSD,
		r.DiscountAmountIRR, r.DiscountAmountUSD,
		r.FinalPriceIRR, r.FinalPriceUSD, r.CouponCode,
		r.PaymentMethod, r.PaymentStatus, r.Status,
	)
	if err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return q.ex.QueryRowContext(ctx, sel, r.ID).Scan(&r.CreatedAt, &r.UpdatedAt)
}

// RedeemCoupon increments used_count only while redemptions remain.  The
// guard lives in the UPDATE itself so used_count can never pass max_uses
// even under concurrent redemptions.
func (q queries) RedeemCoupon(ctx context.Context, couponID string) (bool, error) {
	const upd = `UPDATE coupons
                 SET used_count = used_count + 1
                 WHERE id = ? AND is_active = 1
                   AND (max_uses IS NULL OR used_count < max_uses)`
	res, err := q.ex.ExecContext(ctx, upd, couponID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateReservation writes back the mutable lifecycle and payment
// fields of a reservation.
func (q queries) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	const upd = `UPDATE reservations
                 SET status = ?, payment_status = ?, payment_reference = ?,
                     payment_verified_at = ?, payment_verified_by = ?,
                     admin_notes = ?, confirmed_at = ?, cancelled_at = ?,
                     updated_at = UTC_TIMESTAMP()
                 WHERE id = ?`
	_, err := q.ex.ExecContext(ctx, upd,
		r.Status, r.PaymentStatus, r.PaymentReference,
		r.PaymentVerifiedAt, r.PaymentVerifiedBy,
		r.AdminNotes, r.ConfirmedAt, r.CancelledAt,
		r.ID,
	)
	return err
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	var email, couponCode, payRef, verifiedBy, notes sql.NullString
	var verifiedAt, confirmedAt, cancelledAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.CabinID, &r.GuestName, &r.GuestPhone, &email, &r.GuestsCount,
		&r.CheckInDate, &r.CheckOutDate, &r.NightsCount,
		&r.CalculatedPriceIRR, &r.CalculatedPriceUSD,
		&r.DiscountAmountIRR, &r.DiscountAmountUSD,
		&r.FinalPriceIRR, &r.FinalPriceUSD, &couponCode,
		&r.PaymentMethod, &r.PaymentStatus, &payRef,
		&verifiedAt, &verifiedBy,
		&r.Status, &notes, &r.CreatedAt, &r.UpdatedAt, &confirmedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		r.GuestEmail = &v
	}
	if couponCode.Valid {
		v := couponCode.String
		r.CouponCode = &v
	}
	if payRef.Valid {
		v := payRef.String
		r.PaymentReference = &v
	}
	if verifiedBy.Valid {
		v := verifiedBy.String
		r.PaymentVerifiedBy = &v
	}
	if notes.Valid {
		v := notes.String
		r.AdminNotes = &v
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		r.PaymentVerifiedAt = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		r.ConfirmedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		r.CancelledAt = &t
	}
	return &r, nil
}

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var c model.Coupon
	var maxUses sql.NullInt64
	var expiresAt sql.NullTime
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
		&maxUses, &c.UsedCount, &expiresAt, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		c.MaxUses = &n
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}
