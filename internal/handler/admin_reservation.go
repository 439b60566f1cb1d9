package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/engine"
	"github.com/iliyamo/cabin-reservation/internal/model"
	"github.com/iliyamo/cabin-reservation/internal/queue"
	"github.com/iliyamo/cabin-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/cabin-reservation/internal/service"
)

// AdminReservationHandler exposes reservation listing and lifecycle
// transitions to back-office users.  Transitions go through the engine
// so the same locking and terminality rules apply no matter who asks.
type AdminReservationHandler struct {
	Engine       *engine.Engine
	Reservations *repository.ReservationRepo
	Cabins       *repository.CabinRepo
}

func NewAdminReservationHandler(eng *engine.Engine, res *repository.ReservationRepo, cabins *repository.CabinRepo) *AdminReservationHandler {
	if eng == nil || res == nil || cabins == nil {
		panic("nil dependency passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{Engine: eng, Reservations: res, Cabins: cabins}
}

// reservationResp is the JSON shape shared by the admin surface and the
// guest status endpoint.
type reservationResp struct {
	ID                 string     `json:"id"`
	CabinID            uint64     `json:"cabin_id"`
	GuestName          string     `json:"guest_name"`
	GuestPhone         string     `json:"guest_phone"`
	GuestEmail         *string    `json:"guest_email,omitempty"`
	GuestsCount        int        `json:"guests_count"`
	CheckInDate        model.Date `json:"check_in_date"`
	CheckOutDate       model.Date `json:"check_out_date"`
	NightsCount        int        `json:"nights_count"`
	CalculatedPriceIRR int64      `json:"calculated_price_irr"`
	CalculatedPriceUSD float64    `json:"calculated_price_usd"`
	DiscountAmountIRR  int64      `json:"discount_amount_irr"`
	DiscountAmountUSD  float64    `json:"discount_amount_usd"`
	FinalPriceIRR      int64      `json:"final_price_irr"`
	FinalPriceUSD      float64    `json:"final_price_usd"`
	CouponCode         *string    `json:"coupon_code,omitempty"`
	PaymentMethod      string     `json:"payment_method"`
	PaymentStatus      string     `json:"payment_status"`
	PaymentReference   *string    `json:"payment_reference,omitempty"`
	Status             string     `json:"status"`
	AdminNotes         *string    `json:"admin_notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

func reservationView(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:                 r.ID,
		CabinID:            r.CabinID,
		GuestName:          r.GuestName,
		GuestPhone:         r.GuestPhone,
		GuestEmail:         r.GuestEmail,
		GuestsCount:        r.GuestsCount,
		CheckInDate:        r.CheckInDate,
		CheckOutDate:       r.CheckOutDate,
		NightsCount:        r.NightsCount,
		CalculatedPriceIRR: r.CalculatedPriceIRR,
		CalculatedPriceUSD: r.CalculatedPriceUSD,
		DiscountAmountIRR:  r.DiscountAmountIRR,
		DiscountAmountUSD:  r.DiscountAmountUSD,
		FinalPriceIRR:      r.FinalPriceIRR,
		FinalPriceUSD:      r.FinalPriceUSD,
		CouponCode:         r.CouponCode,
		PaymentMethod:      r.PaymentMethod,
		PaymentStatus:      r.PaymentStatus,
		PaymentReference:   r.PaymentReference,
		Status:             r.Status,
		AdminNotes:         r.AdminNotes,
		CreatedAt:          r.CreatedAt,
		ConfirmedAt:        r.ConfirmedAt,
		CancelledAt:        r.CancelledAt,
	}
}

// List handles GET /v1/admin/reservations with optional cabin_id,
// status, limit and offset query params.
func (h *AdminReservationHandler) List(c echo.Context) error {
	var f repository.ListFilter
	if v := c.QueryParam("cabin_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin_id"})
		}
		f.CabinID = id
	}
	f.Status = c.QueryParam("status")
	if v := c.QueryParam("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := c.QueryParam("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	views := make([]reservationResp, 0, len(list))
	for i := range list {
		views = append(views, reservationView(&list[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": views})
}

// Stats handles GET /v1/admin/reservations/stats.
func (h *AdminReservationHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Reservations.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"by_status": counts})
}

// Calendar handles GET /v1/admin/cabins/:id/calendar?from&to.  It
// returns every occupied night in [from, to) so the back-office calendar
// can grey out reservations, blocks and blocked daily rows in one pass.
func (h *AdminReservationHandler) Calendar(c echo.Context) error {
	cabinID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	from, err := model.ParseDate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	}
	to, err := model.ParseDate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	occupied, err := h.Engine.OccupiedNights(ctx, cabinID, from, to)
	if err != nil {
		return respondEngineErr(c, err)
	}
	days := make([]string, 0, len(occupied))
	for day := from; day.Before(to); day = day.AddDays(1) {
		if occupied[day] {
			days = append(days, day.String())
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"cabin_id": cabinID, "occupied": days})
}

// Get handles GET /v1/admin/reservations/:id.
func (h *AdminReservationHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Reservation(ctx, c.Param("id"))
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

// Confirm handles POST /v1/admin/reservations/:id/confirm.
func (h *AdminReservationHandler) Confirm(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.Confirm(ctx, c.Param("id"))
	if err != nil {
		return respondEngineErr(c, err)
	}
	h.publish(ctx, queue.EventReservationConfirmed, res)
	return c.JSON(http.StatusOK, reservationView(res))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /v1/admin/reservations/:id/cancel.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	var req cancelReq
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.Cancel(ctx, c.Param("id"), req.Reason)
	if err != nil {
		return respondEngineErr(c, err)
	}
	h.publish(ctx, queue.EventReservationCancelled, res)
	return c.JSON(http.StatusOK, reservationView(res))
}

type verifyPaymentReq struct {
	Reference string `json:"reference"`
}

// VerifyPayment handles POST /v1/admin/reservations/:id/verify-payment.
// Marking the payment paid confirms the reservation in the same
// transaction, so the confirmed event is published here too.
func (h *AdminReservationHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentReq
	_ = c.Bind(&req)

	verifiedBy := ""
	if v, ok := c.Get("user_id").(string); ok {
		verifiedBy = v
	} else if v, ok := c.Get("user_id").(float64); ok {
		verifiedBy = strconv.FormatUint(uint64(v), 10)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.VerifyPayment(ctx, c.Param("id"), req.Reference, verifiedBy)
	if err != nil {
		return respondEngineErr(c, err)
	}
	h.publish(ctx, queue.EventReservationConfirmed, res)
	return c.JSON(http.StatusOK, reservationView(res))
}

// FailPayment handles POST /v1/admin/reservations/:id/fail-payment.
func (h *AdminReservationHandler) FailPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.FailPayment(ctx, c.Param("id"))
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

// Complete handles POST /v1/admin/reservations/:id/complete.
func (h *AdminReservationHandler) Complete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Engine.Complete(ctx, c.Param("id"))
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

func (h *AdminReservationHandler) publish(ctx context.Context, eventType string, r *model.Reservation) {
	cabinName := ""
	if cab, err := h.Cabins.GetByID(ctx, r.CabinID); err == nil {
		cabinName = cab.Name
	}
	_ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		CabinID:       r.CabinID,
		CabinName:     cabinName,
		GuestName:     r.GuestName,
		GuestPhone:    r.GuestPhone,
		CheckInDate:   r.CheckInDate.String(),
		CheckOutDate:  r.CheckOutDate.String(),
		NightsCount:   r.NightsCount,
		FinalPriceIRR: r.FinalPriceIRR,
		FinalPriceUSD: r.FinalPriceUSD,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}
