package engine

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CreateRequest carries everything needed to book a stay.  Dates are
// civil calendar dates; the coupon code is optional.
type CreateRequest struct {
	CabinID       uint64
	GuestName     string
	GuestPhone    string
	GuestEmail    string
	GuestsCount   int
	CheckIn       model.Date
	CheckOut      model.Date
	PaymentMethod string
	CouponCode    string
}

// CreateResult reports a successful booking.  The prices are the
// engine's authoritative numbers: callers must charge these, never a
// client-side recomputation.
type CreateResult struct {
	ReservationID string  `json:"reservation_id"`
	PriceIRR      int64   `json:"price_irr"`
	PriceUSD      float64 `json:"price_usd"`
	Nights        int     `json:"nights"`
	Status        string  `json:"status"`
}

// CreateReservation validates a booking end to end and persists it.
// The availability re-check, the price computation, the coupon
// redemption and the insert all run in one transaction under an
// exclusive per-cabin lock, so two concurrent overlapping requests
// yield exactly one success and one DATES_NOT_AVAILABLE failure.
// A supplied-but-invalid coupon rejects the whole booking: silently
// charging more than the quoted price is worse than asking the guest
// to retry without the code.
func (e *Engine) CreateReservation(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if err := e.validateRequest(&req); err != nil {
		return nil, err
	}
	var result *CreateResult
	err := e.run.InCabinTx(ctx, req.CabinID, func(tx TxStore) error {
		cabin, err := tx.CabinByID(ctx, req.CabinID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return E(KindCabinNotAvailable, "cabin not found")
			}
			return internalErr(err)
		}
		if !cabin.IsAvailable {
			return E(KindCabinNotAvailable, "cabin is not available for booking")
		}
		if req.GuestsCount > cabin.Capacity {
			return E(KindExceedsCapacity, "guests count exceeds cabin capacity")
		}
		rng := model.DateRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
		if err := rangeFree(ctx, tx, req.CabinID, rng, ""); err != nil {
			return err
		}
		quote, err := calculatePrice(ctx, tx, req.CabinID, req.CheckIn, req.CheckOut)
		if err != nil {
			return err
		}

		res := &model.Reservation{
			CabinID:            req.CabinID,
			GuestName:          req.GuestName,
			GuestPhone:         req.GuestPhone,
			GuestsCount:        req.GuestsCount,
			CheckInDate:        req.CheckIn,
			CheckOutDate:       req.CheckOut,
			NightsCount:        quote.Nights,
			CalculatedPriceIRR: quote.TotalIRR,
			CalculatedPriceUSD: quote.TotalUSD,
			FinalPriceIRR:      quote.TotalIRR,
			FinalPriceUSD:      quote.TotalUSD,
			PaymentMethod:      req.PaymentMethod,
		}
		if req.GuestEmail != "" {
			email := req.GuestEmail
			res.GuestEmail = &email
		}
		if model.OnlinePayment(req.PaymentMethod) {
			res.Status = model.StatusPendingPayment
			res.PaymentStatus = model.PaymentPending
		} else {
			res.Status = model.StatusPending
			res.PaymentStatus = model.PaymentUnpaid
		}

		if req.CouponCode != "" {
			if err := e.applyCoupon(ctx, tx, res, req.CouponCode, quote); err != nil {
				return err
			}
		}

		if err := tx.InsertReservation(ctx, res); err != nil {
			return internalErr(err)
		}
		result = &CreateResult{
			ReservationID: res.ID,
			PriceIRR:      res.FinalPriceIRR,
			PriceUSD:      res.FinalPriceUSD,
			Nights:        res.NightsCount,
			Status:        res.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyCoupon validates the code inside the booking transaction, writes
// the discount onto the reservation, and redeems one use.  The increment
// shares the transaction with the insert: both commit or both roll back,
// so used_count moves exactly once per persisted booking.
func (e *Engine) applyCoupon(ctx context.Context, tx TxStore, res *model.Reservation, code string, quote *Quote) error {
	coupon, invalid, err := lookupCoupon(ctx, tx, e.now(), code)
	if err != nil {
		return err
	}
	if invalid != nil {
		return E(KindCouponInvalid, invalid.Message)
	}
	discountIRR := couponDiscount(coupon, quote.TotalIRR)
	res.DiscountAmountIRR = discountIRR
	res.FinalPriceIRR = quote.TotalIRR - discountIRR
	// Percent discounts carry over to the USD total; a fixed IRR amount
	// has no USD counterpart.
	if coupon.DiscountType == model.DiscountPercent {
		res.DiscountAmountUSD = roundCents(quote.TotalUSD * coupon.DiscountValue / 100)
		res.FinalPriceUSD = roundCents(quote.TotalUSD - res.DiscountAmountUSD)
	}
	res.CouponCode = &coupon.Code

	ok, err := tx.RedeemCoupon(ctx, coupon.ID)
	if err != nil {
		return internalErr(err)
	}
	if !ok {
		// Lost a redemption race since the lookup: treat exactly like
		// an exhausted coupon found up front.
		return E(KindCouponInvalid, "coupon usage limit reached")
	}
	return nil
}

// validateRequest rejects malformed input before any storage work.
func (e *Engine) validateRequest(req *CreateRequest) error {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestPhone = strings.ReplaceAll(strings.TrimSpace(req.GuestPhone), " ", "")
	req.GuestEmail = strings.TrimSpace(req.GuestEmail)
	req.CouponCode = strings.TrimSpace(req.CouponCode)
	if req.GuestName == "" || req.GuestPhone == "" {
		return E(KindInvalidInput, "guest name and phone are required")
	}
	if req.GuestsCount < 1 {
		return E(KindInvalidInput, "guests count must be at least 1")
	}
	if !model.ValidPaymentMethod(req.PaymentMethod) {
		return E(KindInvalidInput, "unknown payment method")
	}
	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return E(KindInvalidCheckIn, "check-in and check-out dates are required")
	}
	if req.CheckIn.Before(e.today()) {
		return E(KindInvalidCheckIn, "check-in date is in the past")
	}
	if !req.CheckIn.Before(req.CheckOut) {
		return E(KindInvalidDateRange, "check-out must be after check-in")
	}
	return nil
}

// roundCents rounds a dollar amount to two decimals.
func roundCents(v float64) float64 { return math.Round(v*100) / 100 }
