package handler

import (
	"context"
	"errors"
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

// BookingHandler exposes the guest-facing booking flow: availability,
// quotes, booked dates, coupon validation and reservation creation.
// All booking rules live in the engine; this handler only translates
// HTTP to engine calls and engine errors to status codes.
type BookingHandler struct {
	Engine *engine.Engine
	Cabins *repository.CabinRepo
}

func NewBookingHandler(eng *engine.Engine, cabins *repository.CabinRepo) *BookingHandler {
	if eng == nil || cabins == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng, Cabins: cabins}
}

// statusForKind maps engine error kinds onto HTTP status codes.
func statusForKind(k engine.Kind) int {
	switch k {
	case engine.KindCabinNotAvailable:
		return http.StatusNotFound
	case engine.KindDatesNotAvailable:
		return http.StatusConflict
	case engine.KindCouponInvalid:
		return http.StatusUnprocessableEntity
	case engine.KindIllegalTransition:
		return http.StatusConflict
	case engine.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondEngineErr writes an engine error as {"error": KIND, "message": ...}.
// Unknown errors become a plain 500 without leaking internals.
func respondEngineErr(c echo.Context, err error) error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return c.JSON(statusForKind(ee.Kind), echo.Map{"error": string(ee.Kind), "message": ee.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": string(engine.KindInternal), "message": "internal error"})
}

func cabinIDParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func dateQuery(c echo.Context, name string) (model.Date, bool) {
	d, err := model.ParseDate(c.QueryParam(name))
	if err != nil {
		return model.Date{}, false
	}
	return d, true
}

// GetAvailability handles GET /v1/cabins/:id/availability?check_in=&check_out=.
func (h *BookingHandler) GetAvailability(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	checkIn, ok := dateQuery(c, "check_in")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, ok := dateQuery(c, "check_out")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// exclude_reservation_id lets an admin editing a stay re-check its
	// own dates without colliding with itself.
	available, err := h.Engine.CheckAvailability(ctx, cabinID, checkIn, checkOut, c.QueryParam("exclude_reservation_id"))
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cabin_id":       cabinID,
		"check_in_date":  checkIn,
		"check_out_date": checkOut,
		"available":      available,
	})
}

// GetQuote handles GET /v1/cabins/:id/price?check_in=&check_out=.
func (h *BookingHandler) GetQuote(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}
	checkIn, ok := dateQuery(c, "check_in")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be YYYY-MM-DD"})
	}
	checkOut, ok := dateQuery(c, "check_out")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quote, err := h.Engine.CalculatePrice(ctx, cabinID, checkIn, checkOut)
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// GetBookedDates handles GET /v1/cabins/:id/booked-dates.  It returns
// the stay ranges of active reservations so a calendar widget can grey
// them out; guest identities are never exposed here.
func (h *BookingHandler) GetBookedDates(c echo.Context) error {
	cabinID, ok := cabinIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cabin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ranges, err := h.Engine.BookedDates(ctx, cabinID)
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cabin_id": cabinID, "booked": ranges})
}

type validateCouponReq struct {
	Code        string `json:"code"`
	TotalAmount int64  `json:"total_amount"`
}

// ValidateCoupon handles POST /v1/coupons/validate.  Always 200: the
// verdict is in the body, mirroring how the booking form consumes it.
func (h *BookingHandler) ValidateCoupon(c echo.Context) error {
	var req validateCouponReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TotalAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_amount must be >= 0"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.ValidateCoupon(ctx, req.Code, req.TotalAmount)
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type createReservationReq struct {
	CabinID       uint64 `json:"cabin_id"`
	GuestName     string `json:"guest_name"`
	GuestPhone    string `json:"guest_phone"`
	GuestEmail    string `json:"guest_email"`
	GuestsCount   int    `json:"guests_count"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
	PaymentMethod string `json:"payment_method"`
	CouponCode    string `json:"coupon_code"`
}

// CreateReservation handles POST /v1/reservations.  On success a
// reservation.created event is published; publish failures are ignored
// because the booking is already durable.
func (h *BookingHandler) CreateReservation(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	checkIn, err := model.ParseDate(req.CheckInDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in_date must be YYYY-MM-DD"})
	}
	checkOut, err := model.ParseDate(req.CheckOutDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := h.Engine.CreateReservation(ctx, engine.CreateRequest{
		CabinID:       req.CabinID,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		GuestEmail:    req.GuestEmail,
		GuestsCount:   req.GuestsCount,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		return respondEngineErr(c, err)
	}

	cabinName := ""
	if cab, err := h.Cabins.GetByID(ctx, req.CabinID); err == nil {
		cabinName = cab.Name
	}
	_ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
		Type:          queue.EventReservationCreated,
		ReservationID: result.ReservationID,
		CabinID:       req.CabinID,
		CabinName:     cabinName,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		CheckInDate:   checkIn.String(),
		CheckOutDate:  checkOut.String(),
		NightsCount:   result.Nights,
		FinalPriceIRR: result.PriceIRR,
		FinalPriceUSD: result.PriceUSD,
		PaymentMethod: req.PaymentMethod,
		Status:        result.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"success":        true,
		"reservation_id": result.ReservationID,
		"price_irr":      result.PriceIRR,
		"price_usd":      result.PriceUSD,
		"nights":         result.Nights,
		"status":         result.Status,
	})
}

// GetReservation handles GET /v1/reservations/:id so a guest holding
// the reservation id can check its status.
func (h *BookingHandler) GetReservation(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.Reservation(ctx, id)
	if err != nil {
		return respondEngineErr(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}
