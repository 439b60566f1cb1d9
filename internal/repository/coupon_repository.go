package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// CouponRepo manages the `coupons` table for the admin surface.
// Validation and redemption happen inside the booking engine; this repo
// only creates and edits the rows the engine reads.
type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

var ErrCodeExists = errors.New("coupon code already exists")

const couponColumns = `id, code, discount_type, discount_value, max_uses, used_count,
       expires_at, is_active, created_at`

// Create inserts a coupon and fills in the generated ID.  Codes are
// stored upper-cased so lookups stay case-insensitive.
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	c.ID = uuid.NewString()
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO coupons (id, code, discount_type, discount_value, max_uses, expires_at, is_active)
         VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.MaxUses, c.ExpiresAt, c.IsActive)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrCodeExists
	}
	return err
}

// List returns every coupon, newest first.
func (r *CouponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]model.Coupon, 0)
	for rows.Next() {
		var c model.Coupon
		var maxUses sql.NullInt64
		var expiresAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue,
			&maxUses, &c.UsedCount, &expiresAt, &c.IsActive, &c.CreatedAt); err != nil {
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
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Update rewrites a coupon's terms.  used_count is never reset here; it
// only moves through redemption.
func (r *CouponRepo) Update(ctx context.Context, c *model.Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE coupons
         SET code = ?, discount_type = ?, discount_value = ?, max_uses = ?,
             expires_at = ?, is_active = ?
         WHERE id = ?`,
		c.Code, c.DiscountType, c.DiscountValue, c.MaxUses, c.ExpiresAt, c.IsActive, c.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCodeExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a coupon.  Past reservations keep the code they used
// in their own coupon_code column.
func (r *CouponRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM coupons WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
