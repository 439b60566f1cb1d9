package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-reservation/internal/engine"
	"github.com/iliyamo/cabin-reservation/internal/model"
)

// stubStore is a fixed-data engine store for handler tests.
type stubStore struct {
	cabin *model.Cabin
	stays []engine.Stay
}

func (s *stubStore) CabinByID(_ context.Context, id uint64) (*model.Cabin, error) {
	if s.cabin == nil || s.cabin.ID != id {
		return nil, engine.ErrNotFound
	}
	c := *s.cabin
	return &c, nil
}

func (s *stubStore) ActiveStays(context.Context, uint64) ([]engine.Stay, error) {
	return s.stays, nil
}

func (s *stubStore) BlockedDates(context.Context, uint64, model.Date, model.Date) ([]model.BlockedDate, error) {
	return nil, nil
}

func (s *stubStore) DailyPrices(context.Context, uint64, model.Date, model.Date) ([]model.DailyPrice, error) {
	return nil, nil
}

func (s *stubStore) SeasonalPrices(context.Context, uint64) ([]model.SeasonalPrice, error) {
	return nil, nil
}

func (s *stubStore) CouponByCode(context.Context, string) (*model.Coupon, error) {
	return nil, engine.ErrNotFound
}

func (s *stubStore) ReservationByID(context.Context, string) (*model.Reservation, error) {
	return nil, engine.ErrNotFound
}

func (s *stubStore) InCabinTx(context.Context, uint64, func(engine.TxStore) error) error {
	panic("unexpected transaction in read-only handler test")
}

func (s *stubStore) InTx(context.Context, func(engine.TxStore) error) error {
	panic("unexpected transaction in read-only handler test")
}

func availabilityRequest(t *testing.T, h *BookingHandler, query string) map[string]interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/cabins/1/availability?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/cabins/:id/availability")
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.GetAvailability(c); err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestGetAvailabilityExcludeReservation(t *testing.T) {
	checkIn, _ := model.ParseDate("2030-06-10")
	checkOut, _ := model.ParseDate("2030-06-15")
	store := &stubStore{
		cabin: &model.Cabin{ID: 1, Capacity: 4, IsAvailable: true},
		stays: []engine.Stay{{
			ReservationID: "res-1",
			DateRange:     model.DateRange{CheckIn: checkIn, CheckOut: checkOut},
		}},
	}
	h := &BookingHandler{Engine: engine.New(store, store)}

	body := availabilityRequest(t, h, "check_in=2030-06-10&check_out=2030-06-15")
	if body["available"] != false {
		t.Errorf("without exclusion: available = %v, want false", body["available"])
	}

	// Excluding the stay's own reservation frees its nights, so an admin
	// editing it can re-check the same range.
	body = availabilityRequest(t, h, "check_in=2030-06-10&check_out=2030-06-15&exclude_reservation_id=res-1")
	if body["available"] != true {
		t.Errorf("excluding own reservation: available = %v, want true", body["available"])
	}

	body = availabilityRequest(t, h, "check_in=2030-06-10&check_out=2030-06-15&exclude_reservation_id=other")
	if body["available"] != false {
		t.Errorf("excluding unrelated reservation: available = %v, want false", body["available"])
	}
}
