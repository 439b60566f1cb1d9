package engine

import (
	"context"
	"errors"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CheckAvailability reports whether every night in [checkIn, checkOut)
// is free on the cabin.  It returns false, never an error, for a
// nonexistent cabin, an inverted range, or a check-in in the past:
// availability of an unbookable range is definitionally "unavailable".
// excludeReservationID, when non-empty, ignores that reservation's own
// nights, so an admin editing a stay does not collide with itself.
func (e *Engine) CheckAvailability(ctx context.Context, cabinID uint64, checkIn, checkOut model.Date, excludeReservationID string) (bool, error) {
	if !checkIn.Before(checkOut) || checkIn.Before(e.today()) {
		return false, nil
	}
	if _, err := e.store.CabinByID(ctx, cabinID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, internalErr(err)
	}
	err := rangeFree(ctx, e.store, cabinID, model.DateRange{CheckIn: checkIn, CheckOut: checkOut}, excludeReservationID)
	if err != nil {
		if IsKind(err, KindDatesNotAvailable) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BookedDates returns the half-open stay ranges of all blocking
// reservations on the cabin.  Clients expanding these into disabled
// calendar days must use the same half-open convention
// (model.DateRange.ExpandNights) so the check-out day stays bookable.
func (e *Engine) BookedDates(ctx context.Context, cabinID uint64) ([]model.DateRange, error) {
	stays, err := e.store.ActiveStays(ctx, cabinID)
	if err != nil {
		return nil, internalErr(err)
	}
	ranges := make([]model.DateRange, 0, len(stays))
	for _, s := range stays {
		ranges = append(ranges, s.DateRange)
	}
	return ranges, nil
}

// OccupiedNights returns the set of individual occupied nights for the
// cabin over [from, to), combining reservations, blocked dates and
// blocked daily-price rows.  Used by the admin calendar.
func (e *Engine) OccupiedNights(ctx context.Context, cabinID uint64, from, to model.Date) (map[model.Date]bool, error) {
	occupied := make(map[model.Date]bool)
	stays, err := e.store.ActiveStays(ctx, cabinID)
	if err != nil {
		return nil, internalErr(err)
	}
	window := model.DateRange{CheckIn: from, CheckOut: to}
	for _, s := range stays {
		for _, night := range s.ExpandNights() {
			if window.Contains(night) {
				occupied[night] = true
			}
		}
	}
	blocks, err := e.store.BlockedDates(ctx, cabinID, from, to)
	if err != nil {
		return nil, internalErr(err)
	}
	for _, b := range blocks {
		occupied[b.Date] = true
	}
	daily, err := e.store.DailyPrices(ctx, cabinID, from, to)
	if err != nil {
		return nil, internalErr(err)
	}
	for _, dp := range daily {
		if dp.IsBlocked {
			occupied[dp.Date] = true
		}
	}
	return occupied, nil
}

// rangeFree verifies that no night of rng is occupied on the cabin.
// It runs against a plain store for advisory reads and against a TxStore
// under the per-cabin lock for the authoritative booking-time check.
// The error, when non-nil and of kind DATES_NOT_AVAILABLE, names the
// first conflicting night.
func rangeFree(ctx context.Context, s Store, cabinID uint64, rng model.DateRange, excludeReservationID string) error {
	stays, err := s.ActiveStays(ctx, cabinID)
	if err != nil {
		return internalErr(err)
	}
	for _, stay := range stays {
		if excludeReservationID != "" && stay.ReservationID == excludeReservationID {
			continue
		}
		// Half-open overlap: a stay checking out on rng.CheckIn does
		// not conflict, which is what allows back-to-back bookings.
		if stay.Overlaps(rng) {
			return E(KindDatesNotAvailable, "dates overlap an existing reservation")
		}
	}
	blocks, err := s.BlockedDates(ctx, cabinID, rng.CheckIn, rng.CheckOut)
	if err != nil {
		return internalErr(err)
	}
	for _, b := range blocks {
		if rng.Contains(b.Date) {
			return E(KindDatesNotAvailable, "date "+b.Date.String()+" is blocked")
		}
	}
	daily, err := s.DailyPrices(ctx, cabinID, rng.CheckIn, rng.CheckOut)
	if err != nil {
		return internalErr(err)
	}
	for _, dp := range daily {
		if dp.IsBlocked && rng.Contains(dp.Date) {
			return E(KindDatesNotAvailable, "date "+dp.Date.String()+" is blocked")
		}
	}
	return nil
}
