package engine

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

func TestCalculatePriceBaseOnly(t *testing.T) {
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
	}
	e := newReadEngine(store)

	q, err := e.CalculatePrice(context.Background(), 1, d(t, "2026-03-10"), d(t, "2026-03-13"))
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if q.Nights != 3 {
		t.Errorf("nights = %d, want 3", q.Nights)
	}
	if q.TotalIRR != 3_000_000 {
		t.Errorf("total IRR = %d, want 3000000", q.TotalIRR)
	}
	if q.TotalUSD != 60 {
		t.Errorf("total USD = %v, want 60", q.TotalUSD)
	}
}

func TestCalculatePricePrecedence(t *testing.T) {
	// Base 1,000,000.  Seasonal range covers 03-11 and 03-12 at
	// 1,500,000.  A daily pin on 03-12 sets 2,000,000 and wins over the
	// seasonal price for that night.
	cabinID := uint64(1)
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
		seasonal: func(uint64) ([]model.SeasonalPrice, error) {
			return []model.SeasonalPrice{{
				ID: "s1", CabinID: 1, SeasonName: "spring", SeasonType: "high_season",
				StartDate: d(t, "2026-03-11"), EndDate: d(t, "2026-03-12"),
				PriceIRR: 1_500_000, PriceUSD: 30, IsActive: true,
			}}, nil
		},
		daily: func(_ uint64, from, to model.Date) ([]model.DailyPrice, error) {
			p := model.DailyPrice{ID: "dp1", CabinID: &cabinID, Date: d(t, "2026-03-12"), PriceIRR: 2_000_000, PriceUSD: 40}
			if !p.Date.Before(from) && p.Date.Before(to) {
				return []model.DailyPrice{p}, nil
			}
			return nil, nil
		},
	}
	e := newReadEngine(store)

	// Nights: 03-10 base, 03-11 seasonal, 03-12 daily, 03-13 base.
	q, err := e.CalculatePrice(context.Background(), 1, d(t, "2026-03-10"), d(t, "2026-03-14"))
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	want := int64(1_000_000 + 1_500_000 + 2_000_000 + 1_000_000)
	if q.TotalIRR != want {
		t.Errorf("total IRR = %d, want %d", q.TotalIRR, want)
	}
	if q.TotalUSD != 20+30+40+20 {
		t.Errorf("total USD = %v, want %v", q.TotalUSD, 20+30+40+20)
	}
}

func TestCalculatePriceSeasonalBoundsInclusive(t *testing.T) {
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
		seasonal: func(uint64) ([]model.SeasonalPrice, error) {
			return []model.SeasonalPrice{{
				ID: "s1", CabinID: 1, StartDate: d(t, "2026-03-11"), EndDate: d(t, "2026-03-11"),
				PriceIRR: 9_000_000, PriceUSD: 90, IsActive: true,
			}}, nil
		},
	}
	e := newReadEngine(store)

	// One-night range on the single covered day uses the seasonal price;
	// the nights on either side use the base.
	q, err := e.CalculatePrice(context.Background(), 1, d(t, "2026-03-10"), d(t, "2026-03-13"))
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if want := int64(1_000_000 + 9_000_000 + 1_000_000); q.TotalIRR != want {
		t.Errorf("total IRR = %d, want %d", q.TotalIRR, want)
	}
}

func TestCalculatePriceOverlappingSeasonalNewestWins(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
		seasonal: func(uint64) ([]model.SeasonalPrice, error) {
			return []model.SeasonalPrice{
				{ID: "s1", CabinID: 1, StartDate: d(t, "2026-03-01"), EndDate: d(t, "2026-03-31"),
					PriceIRR: 1_200_000, PriceUSD: 24, IsActive: true, CreatedAt: older},
				{ID: "s2", CabinID: 1, StartDate: d(t, "2026-03-05"), EndDate: d(t, "2026-03-20"),
					PriceIRR: 1_800_000, PriceUSD: 36, IsActive: true, CreatedAt: newer},
			}, nil
		},
	}
	e := newReadEngine(store)

	q, err := e.CalculatePrice(context.Background(), 1, d(t, "2026-03-10"), d(t, "2026-03-11"))
	if err != nil {
		t.Fatalf("CalculatePrice: %v", err)
	}
	if q.TotalIRR != 1_800_000 {
		t.Errorf("total IRR = %d, want the newer range's 1800000", q.TotalIRR)
	}
}

func TestCalculatePriceCabinDailyBeatsGlobal(t *testing.T) {
	cabinID := uint64(1)
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
		daily: func(uint64, model.Date, model.Date) ([]model.DailyPrice, error) {
			return []model.DailyPrice{
				{ID: "global", CabinID: nil, Date: d(t, "2026-03-10"), PriceIRR: 5_000_000, PriceUSD: 100},
				{ID: "scoped", CabinID: &cabinID, Date: d(t, "2026-03-10"), PriceIRR: 2_500_000, PriceUSD: 50},
			}, nil
		},
	}
	e := newReadEngine(store)

	p, err := e.PriceForNight(context.Background(), 1, d(t, "2026-03-10"))
	if err != nil {
		t.Fatalf("PriceForNight: %v", err)
	}
	if p.PriceIRR != 2_500_000 {
		t.Errorf("price IRR = %d, want the cabin-scoped 2500000", p.PriceIRR)
	}
}

func TestCalculatePriceBlockedDailyRowDoesNotPrice(t *testing.T) {
	store := &mockStore{
		cabin: func(uint64) (*model.Cabin, error) { return testCabin(), nil },
		daily: func(uint64, model.Date, model.Date) ([]model.DailyPrice, error) {
			return []model.DailyPrice{
				{ID: "dp1", Date: d(t, "2026-03-10"), PriceIRR: 7_000_000, PriceUSD: 140, IsBlocked: true},
			}, nil
		},
	}
	e := newReadEngine(store)

	// The quote itself ignores the blocked marker and falls through to
	// the base price; availability is what rejects the night.
	p, err := e.PriceForNight(context.Background(), 1, d(t, "2026-03-10"))
	if err != nil {
		t.Fatalf("PriceForNight: %v", err)
	}
	if p.PriceIRR != 1_000_000 {
		t.Errorf("price IRR = %d, want base 1000000", p.PriceIRR)
	}
}

func TestCalculatePriceErrors(t *testing.T) {
	e := newReadEngine(&mockStore{})

	_, err := e.CalculatePrice(context.Background(), 1, d(t, "2026-03-13"), d(t, "2026-03-10"))
	if !IsKind(err, KindInvalidDateRange) {
		t.Errorf("inverted range: err = %v, want %s", err, KindInvalidDateRange)
	}

	_, err = e.CalculatePrice(context.Background(), 42, d(t, "2026-03-10"), d(t, "2026-03-13"))
	if !IsKind(err, KindCabinNotAvailable) {
		t.Errorf("unknown cabin: err = %v, want %s", err, KindCabinNotAvailable)
	}
}
