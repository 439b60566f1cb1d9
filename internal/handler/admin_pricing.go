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

// AdminPricingHandler manages seasonal ranges, daily price pins and
// blocked dates.  Changes take effect on the next quote; existing
// reservations keep the price they were booked at.
type AdminPricingHandler struct {
	Prices  *repository.PriceRepo
	Blocked *repository.BlockedDateRepo
}

func NewAdminPricingHandler(prices *repository.PriceRepo, blocked *repository.BlockedDateRepo) *AdminPricingHandler {
	if prices == nil || blocked == nil {
		panic("nil repository passed to NewAdminPricingHandler")
	}
	return &AdminPricingHandler{Prices: prices, Blocked: blocked}
}

var seasonTypes = map[string]bool{
	"off_season": true, "regular": true, "high_season": true, "peak": true, "special": true,
}

type seasonalReq struct {
	SeasonName string  `json:"season_name"`
	SeasonType string  `json:"season_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	PriceIRR   int64   `json:"price_irr"`
	PriceUSD   float64 `json:"price_usd"`
	IsActive   *bool   `json:"is_active"`
}

func (r *seasonalReq) toModel(cabinID uint64) (model.SeasonalPrice, string) {
	r.SeasonName = strings.TrimSpace(r.SeasonName)
	r.SeasonType = strings.TrimSpace(strings.ToLower(r.SeasonType))
	if r.SeasonName == "" {
		return model.SeasonalPrice{}, "season_name required"
	}
	if !seasonTypes[r.SeasonType] {
		return model.SeasonalPrice{}, "invalid season_type"
	}
	start, err := model.ParseDate(r.StartDate)
	if err != nil {
		return model.SeasonalPrice{}, "start_date must be YYYY-MM-DD"
	}
	end, err := model.ParseDate(r.EndDate)
	if err != nil {
		return model.SeasonalPrice{}, "end_date must be YYYY-MM-DD"
	}
	if end.Before(start) {
		return model.SeasonalPrice{}, "end_date before start_date"
	}
	if r.PriceIRR < 0 || r.PriceUSD < 0 {
		return model.SeasonalPrice{}, "prices must be >= 0"
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.SeasonalPrice{
		CabinID:    cabinID,
		SeasonName: r.SeasonName,
		SeasonType: r.SeasonType,
		StartDate:  start,
		EndDate:    end,
		PriceIRR:   r.PriceIRR,
		PriceUSD:   r.PriceUSD,
		IsActive:   active,
	}, ""
}

// ListSeasonal handles GET /v1/admin/cabins/:id/seasonal-prices.
func (h *AdminPricingHandler) ListSeasonal(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Prices.ListSeasonal(ctx, cabinID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"seasonal_prices": list})
}

// CreateSeasonal handles POST /v1/admin/cabins/:id/seasonal-prices.
func (h *AdminPricingHandler) CreateSeasonal(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	var req seasonalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sp, msg := req.toModel(cabinID)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Prices.CreateSeasonal(ctx, &sp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, sp)
}

// UpdateSeasonal handles PUT /v1/admin/seasonal-prices/:priceID.
func (h *AdminPricingHandler) UpdateSeasonal(c echo.Context) error {
	priceID := c.Param("priceID")
	var req seasonalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sp, msg := req.toModel(0)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	sp.ID = priceID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Prices.UpdateSeasonal(ctx, &sp); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seasonal price not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, sp)
}

// DeleteSeasonal handles DELETE /v1/admin/seasonal-prices/:priceID.
func (h *AdminPricingHandler) DeleteSeasonal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Prices.DeleteSeasonal(ctx, c.Param("priceID")); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seasonal price not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type dailyReq struct {
	CabinID   *uint64 `json:"cabin_id"` // nil pins the date for every cabin
	Date      string  `json:"date"`
	PriceIRR  int64   `json:"price_irr"`
	PriceUSD  float64 `json:"price_usd"`
	Reason    *string `json:"reason"`
	IsBlocked bool    `json:"is_blocked"`
}

// UpsertDaily handles PUT /v1/admin/daily-prices.
func (h *AdminPricingHandler) UpsertDaily(c echo.Context) error {
	var req dailyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.PriceIRR < 0 || req.PriceUSD < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dp := model.DailyPrice{
		CabinID:   req.CabinID,
		Date:      date,
		PriceIRR:  req.PriceIRR,
		PriceUSD:  req.PriceUSD,
		Reason:    req.Reason,
		IsBlocked: req.IsBlocked,
	}
	if err := h.Prices.UpsertDaily(ctx, &dp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusOK, dp)
}

// ListDaily handles GET /v1/admin/cabins/:id/daily-prices?from=&to=.
func (h *AdminPricingHandler) ListDaily(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	from, ok := dateQuery(c, "from")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Prices.ListDaily(ctx, cabinID, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"daily_prices": list})
}

// DeleteDaily handles DELETE /v1/admin/daily-prices/:priceID.
func (h *AdminPricingHandler) DeleteDaily(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Prices.DeleteDaily(ctx, c.Param("priceID")); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "daily price not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type blockReq struct {
	Date    string  `json:"date"`
	CabinID *uint64 `json:"cabin_id"` // nil blocks every cabin
	Reason  *string `json:"reason"`
}

// CreateBlock handles POST /v1/admin/blocked-dates.
func (h *AdminPricingHandler) CreateBlock(c echo.Context) error {
	var req blockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	var createdBy *string
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		createdBy = &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b := model.BlockedDate{
		Date:      date,
		CabinID:   req.CabinID,
		Reason:    req.Reason,
		CreatedBy: createdBy,
	}
	if err := h.Blocked.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, b)
}

// ListBlocks handles GET /v1/admin/blocked-dates?from=&to=.
func (h *AdminPricingHandler) ListBlocks(c echo.Context) error {
	from, ok := dateQuery(c, "from")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Blocked.List(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"blocked_dates": list})
}

// DeleteBlock handles DELETE /v1/admin/blocked-dates/:blockID.
func (h *AdminPricingHandler) DeleteBlock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Blocked.Delete(ctx, c.Param("blockID")); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "blocked date not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
