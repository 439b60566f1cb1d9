package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/repository"
)

// BrowseHandler serves the public cabin catalogue.  These endpoints sit
// behind the response cache middleware since the catalogue changes
// rarely compared to how often it is read.
type BrowseHandler struct {
	Cabins *repository.CabinRepo
}

func NewBrowseHandler(cabins *repository.CabinRepo) *BrowseHandler {
	if cabins == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Cabins: cabins}
}

type cabinView struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Capacity     int     `json:"capacity"`
	BasePriceIRR int64   `json:"base_price_irr"`
	BasePriceUSD float64 `json:"base_price_usd"`
	IsAvailable  bool    `json:"is_available"`
	SortOrder    int     `json:"sort_order"`
}

func toCabinView(c model.Cabin) cabinView {
	return cabinView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Capacity:     c.Capacity,
		BasePriceIRR: c.BasePriceIRR,
		BasePriceUSD: c.BasePriceUSD,
		IsAvailable:  c.IsAvailable,
		SortOrder:    c.SortOrder,
	}
}

// ListCabins handles GET /v1/cabins.  Only bookable cabins are shown to
// guests; admins list everything through the admin surface.
func (h *BrowseHandler) ListCabins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cabins, err := h.Cabins.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]cabinView, 0, len(cabins))
	for _, cab := range cabins {
		views = append(views, toCabinView(cab))
	}
	return c.JSON(http.StatusOK, echo.Map{"cabins": views})
}

// GetCabin handles GET /v1/cabins/:id.  The id segment also accepts a
// slug so marketing URLs keep working.
func (h *BrowseHandler) GetCabin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		cab model.Cabin
		err error
	)
	if id, ok := cabinIDParam(c); ok {
		cab, err = h.Cabins.GetByID(ctx, id)
	} else {
		cab, err = h.Cabins.GetBySlug(ctx, c.Param("id"))
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !cab.IsAvailable {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cabin not found"})
	}
	return c.JSON(http.StatusOK, toCabinView(cab))
}
