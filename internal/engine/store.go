package engine

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// ErrNotFound is returned by Store implementations when a requested row
// does not exist.  The engine translates it into the appropriate kind
// per operation (a missing cabin is "unavailable", not an error).
var ErrNotFound = errors.New("not found")

// Stay is a reservation's claim on a cabin as seen by the availability
// index: just the identity and the half-open date range.
type Stay struct {
	ReservationID string
	model.DateRange
}

// Store is the read surface the engine needs from persistence.  All
// methods are plain reads; they carry no locking on their own and are
// re-validated inside a transaction at booking time.
type Store interface {
	// CabinByID returns the cabin or ErrNotFound.
	CabinByID(ctx context.Context, id uint64) (*model.Cabin, error)
	// ActiveStays returns the date ranges of all reservations on the
	// cabin whose status blocks availability.
	ActiveStays(ctx context.Context, cabinID uint64) ([]Stay, error)
	// BlockedDates returns admin blocks for the cabin (including global
	// rows) with dates in [from, to).
	BlockedDates(ctx context.Context, cabinID uint64, from, to model.Date) ([]model.BlockedDate, error)
	// DailyPrices returns daily overrides for the cabin (including
	// global rows) with dates in [from, to).
	DailyPrices(ctx context.Context, cabinID uint64, from, to model.Date) ([]model.DailyPrice, error)
	// SeasonalPrices returns the cabin's active seasonal ranges.
	SeasonalPrices(ctx context.Context, cabinID uint64) ([]model.SeasonalPrice, error)
	// CouponByCode looks a coupon up case-insensitively, ErrNotFound
	// when the code is unknown.
	CouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	// ReservationByID returns the reservation or ErrNotFound.
	ReservationByID(ctx context.Context, id string) (*model.Reservation, error)
}

// TxStore is the store surface available inside a transaction.  Reads
// observe the transaction's snapshot; writes commit or roll back as one
// unit with it.
type TxStore interface {
	Store
	// InsertReservation persists a new reservation and fills in its
	// generated ID and timestamps.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// RedeemCoupon increments used_count if redemptions remain.  It
	// returns false when the cap was already reached, which callers
	// must treat as an invalid coupon.
	RedeemCoupon(ctx context.Context, couponID string) (bool, error)
	// ReservationForUpdate loads a reservation with an exclusive row
	// lock held until the transaction ends.
	ReservationForUpdate(ctx context.Context, id string) (*model.Reservation, error)
	// UpdateReservation writes back a reservation's mutable lifecycle
	// and payment fields.
	UpdateReservation(ctx context.Context, r *model.Reservation) error
}

// Runner executes functions inside storage transactions.  InCabinTx must
// additionally hold an exclusive per-cabin lock for the duration of fn,
// so two concurrent booking attempts on one cabin serialize: this is the
// discipline that makes the availability re-check authoritative.
type Runner interface {
	InCabinTx(ctx context.Context, cabinID uint64, fn func(TxStore) error) error
	InTx(ctx context.Context, fn func(TxStore) error) error
}

// Engine wires the booking logic to a store and a transaction runner.
// It is safe for concurrent use; all mutable state lives in storage.
type Engine struct {
	store Store
	run   Runner
	now   func() time.Time // injectable clock
}

// New constructs an Engine.  Both dependencies must be non-nil.
func New(store Store, run Runner) *Engine {
	if store == nil || run == nil {
		panic("nil dependency passed to engine.New")
	}
	return &Engine{store: store, run: run, now: time.Now}
}

// today returns the current calendar date from the engine clock.
func (e *Engine) today() model.Date { return model.DateOf(e.now()) }
