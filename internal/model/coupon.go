package model

import "time"

// Coupon discount types.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Coupon is a discount code.  Codes are matched case-insensitively.
// UsedCount only ever grows, and only inside a successful reservation
// transaction; validation alone never touches it.  This struct
// corresponds to a row in the `coupons` table.
type Coupon struct {
	ID            string     `json:"id"`   // coupons.id (uuid)
	Code          string     `json:"code"` // unique
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MaxUses       *int       `json:"max_uses,omitempty"` // nil = unlimited
	UsedCount     int        `json:"used_count"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"` // nil = never
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Exhausted reports whether the coupon has no redemptions left.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

// Expired reports whether the coupon's expiry has passed at the given time.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
