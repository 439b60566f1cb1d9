package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CouponResult is the outcome of validating a code against a total.
// Invalid codes carry a message; valid ones carry the discount and the
// would-be final price.  Validation never mutates the coupon, so the
// call is idempotent and safe to retry; redemption happens only inside
// a successful reservation transaction.
type CouponResult struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message,omitempty"`
	Code           string  `json:"code,omitempty"`
	DiscountAmount int64   `json:"discount_amount,omitempty"`
	FinalPrice     int64   `json:"final_price,omitempty"`
	Type           string  `json:"type,omitempty"`
	Value          float64 `json:"value,omitempty"`
}

// ValidateCoupon checks a code against a pre-discount IRR total.  Checks
// run in order: the code exists and is active, it has not expired, and
// redemptions remain.  The first failed check produces an invalid result
// rather than an error; errors are reserved for storage failures.
func (e *Engine) ValidateCoupon(ctx context.Context, code string, totalAmount int64) (*CouponResult, error) {
	coupon, res, err := lookupCoupon(ctx, e.store, e.now(), code)
	if err != nil || res != nil {
		return res, err
	}
	discount := couponDiscount(coupon, totalAmount)
	return &CouponResult{
		Valid:          true,
		Code:           coupon.Code,
		DiscountAmount: discount,
		FinalPrice:     totalAmount - discount,
		Type:           coupon.DiscountType,
		Value:          coupon.DiscountValue,
	}, nil
}

// lookupCoupon fetches a coupon and runs the validity checks that do not
// depend on the amount.  It returns a non-nil result when the coupon is
// invalid, in which case the coupon pointer must be ignored.  Taking the
// store as a parameter lets the booking transaction re-validate against
// its own snapshot.
func lookupCoupon(ctx context.Context, s Store, now time.Time, code string) (*model.Coupon, *CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &CouponResult{Valid: false, Message: "coupon code is required"}, nil
	}
	coupon, err := s.CouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &CouponResult{Valid: false, Message: "coupon code not found"}, nil
		}
		return nil, nil, internalErr(err)
	}
	if !coupon.IsActive {
		return nil, &CouponResult{Valid: false, Message: "coupon is not active"}, nil
	}
	if coupon.Expired(now) {
		return nil, &CouponResult{Valid: false, Message: "coupon has expired"}, nil
	}
	if coupon.Exhausted() {
		return nil, &CouponResult{Valid: false, Message: "coupon usage limit reached"}, nil
	}
	return coupon, nil, nil
}

// couponDiscount computes the IRR discount for a total.  Percent
// discounts round half away from zero; fixed discounts are capped at
// the total so the final price can never go negative.
func couponDiscount(c *model.Coupon, totalAmount int64) int64 {
	switch c.DiscountType {
	case model.DiscountPercent:
		return int64(math.Round(float64(totalAmount) * c.DiscountValue / 100))
	case model.DiscountFixed:
		fixed := int64(math.Round(c.DiscountValue))
		if fixed > totalAmount {
			return totalAmount
		}
		return fixed
	}
	return 0
}
