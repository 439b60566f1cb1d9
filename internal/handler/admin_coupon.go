package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/repository"
)

// AdminCouponHandler manages coupon codes.  Redemption counting happens
// inside the booking engine; this handler only edits the terms.
type AdminCouponHandler struct {
	Coupons *repository.CouponRepo
}

func NewAdminCouponHandler(coupons *repository.CouponRepo) *AdminCouponHandler {
	if coupons == nil {
		panic("nil repository passed to NewAdminCouponHandler")
	}
	return &AdminCouponHandler{Coupons: coupons}
}

type couponReq struct {
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MaxUses       *int       `json:"max_uses"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsActive      *bool      `json:"is_active"`
}

func (r *couponReq) validate() string {
	r.Code = strings.TrimSpace(r.Code)
	r.DiscountType = strings.TrimSpace(strings.ToLower(r.DiscountType))
	if r.Code == "" {
		return "code required"
	}
	switch r.DiscountType {
	case model.DiscountPercent:
		if r.DiscountValue <= 0 || r.DiscountValue > 100 {
			return "percent discount_value must be in (0, 100]"
		}
	case model.DiscountFixed:
		if r.DiscountValue <= 0 {
			return "fixed discount_value must be > 0"
		}
	default:
		return "discount_type must be percent or fixed"
	}
	if r.MaxUses != nil && *r.MaxUses < 1 {
		return "max_uses must be >= 1"
	}
	return ""
}

// List handles GET /v1/admin/coupons.
func (h *AdminCouponHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Coupons.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"coupons": list})
}

// Create handles POST /v1/admin/coupons.
func (h *AdminCouponHandler) Create(c echo.Context) error {
	var req couponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cp := model.Coupon{
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      active,
	}
	if err := h.Coupons.Create(ctx, &cp); err != nil {
		if err == repository.ErrCodeExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "coupon code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, cp)
}

// Update handles PUT /v1/admin/coupons/:couponID.
func (h *AdminCouponHandler) Update(c echo.Context) error {
	var req couponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cp := model.Coupon{
		ID:            c.Param("couponID"),
		Code:          req.Code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      active,
	}
	if err := h.Coupons.Update(ctx, &cp); err != nil {
		switch err {
		case repository.ErrCodeExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "coupon code already exists"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cp)
}

// Delete handles DELETE /v1/admin/coupons/:couponID.
func (h *AdminCouponHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Coupons.Delete(ctx, c.Param("couponID")); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coupon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
