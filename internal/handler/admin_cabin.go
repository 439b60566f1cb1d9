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

// AdminCabinHandler manages the cabin catalogue.
type AdminCabinHandler struct {
	Cabins *repository.CabinRepo
}

func NewAdminCabinHandler(cabins *repository.CabinRepo) *AdminCabinHandler {
	if cabins == nil {
		panic("nil repository passed to NewAdminCabinHandler")
	}
	return &AdminCabinHandler{Cabins: cabins}
}

type cabinReq struct {
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Capacity     int     `json:"capacity"`
	BasePriceIRR int64   `json:"base_price_irr"`
	BasePriceUSD float64 `json:"base_price_usd"`
	IsAvailable  *bool   `json:"is_available"`
	SortOrder    int     `json:"sort_order"`
}

func (r *cabinReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	if r.Name == "" {
		return "name required"
	}
	if r.Slug == "" {
		return "slug required"
	}
	if r.Capacity < 1 {
		return "capacity must be >= 1"
	}
	if r.BasePriceIRR < 0 || r.BasePriceUSD < 0 {
		return "base prices must be >= 0"
	}
	return ""
}

// List handles GET /v1/admin/cabins: every cabin including disabled ones.
func (h *AdminCabinHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabins, err := h.Cabins.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]cabinView, 0, len(cabins))
	for _, cab := range cabins {
		views = append(views, toCabinView(cab))
	}
	return c.JSON(http.StatusOK, echo.Map{"cabins": views})
}

// Create handles POST /v1/admin/cabins.
func (h *AdminCabinHandler) Create(c echo.Context) error {
	var req cabinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cab := model.Cabin{
		Name:         req.Name,
		Slug:         req.Slug,
		Capacity:     req.Capacity,
		BasePriceIRR: req.BasePriceIRR,
		BasePriceUSD: req.BasePriceUSD,
		IsAvailable:  available,
		SortOrder:    req.SortOrder,
	}
	id, err := h.Cabins.Create(ctx, &cab)
	if err != nil {
		if err == repository.ErrSlugExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	cab.ID = id
	return c.JSON(http.StatusCreated, toCabinView(cab))
}

// Update handles PUT /v1/admin/cabins/:id.
func (h *AdminCabinHandler) Update(c echo.Context) error {
	id, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	var req cabinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cab, err := h.Cabins.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	cab.Name = req.Name
	cab.Slug = req.Slug
	cab.Capacity = req.Capacity
	cab.BasePriceIRR = req.BasePriceIRR
	cab.BasePriceUSD = req.BasePriceUSD
	if req.IsAvailable != nil {
		cab.IsAvailable = *req.IsAvailable
	}
	cab.SortOrder = req.SortOrder

	if err := h.Cabins.Update(ctx, &cab); err != nil {
		switch err {
		case repository.ErrSlugExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toCabinView(cab))
}

type availabilityReq struct {
	IsAvailable bool `json:"is_available"`
}

// SetAvailability handles PATCH /v1/admin/cabins/:id/availability.
func (h *AdminCabinHandler) SetAvailability(c echo.Context) error {
	id, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cabins.SetAvailability(ctx, id, req.IsAvailable); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_available": req.IsAvailable})
}

// Delete handles DELETE /v1/admin/cabins/:id.  Cabins with reservations
// cannot be deleted; disable them instead.
func (h *AdminCabinHandler) Delete(c echo.Context) error {
	id, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cabins.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "cabin has reservations"})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
