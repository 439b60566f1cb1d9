package engine

import (
	"context"
	"errors"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// Quote is the priced result for a date range in both currencies.
type Quote struct {
	TotalIRR int64   `json:"total_irr"`
	TotalUSD float64 `json:"total_usd"`
	Nights   int     `json:"nights"`
}

// NightPrice is the resolved price of a single night.
type NightPrice struct {
	PriceIRR int64   `json:"price_irr"`
	PriceUSD float64 `json:"price_usd"`
}

// CalculatePrice resolves and sums the nightly price of every night in
// [checkIn, checkOut).  It is a pure read: the same rows always produce
// the same total, and the booking transaction recomputes it rather than
// trusting a client-provided amount.
func (e *Engine) CalculatePrice(ctx context.Context, cabinID uint64, checkIn, checkOut model.Date) (*Quote, error) {
	return calculatePrice(ctx, e.store, cabinID, checkIn, checkOut)
}

// PriceForNight resolves the price of one night on the cabin.
func (e *Engine) PriceForNight(ctx context.Context, cabinID uint64, date model.Date) (*NightPrice, error) {
	q, err := calculatePrice(ctx, e.store, cabinID, date, date.AddDays(1))
	if err != nil {
		return nil, err
	}
	return &NightPrice{PriceIRR: q.TotalIRR, PriceUSD: q.TotalUSD}, nil
}

func calculatePrice(ctx context.Context, s Store, cabinID uint64, checkIn, checkOut model.Date) (*Quote, error) {
	nights := model.DaysBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, E(KindInvalidDateRange, "check-out must be after check-in")
	}
	cabin, err := s.CabinByID(ctx, cabinID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, E(KindCabinNotAvailable, "cabin not found")
		}
		return nil, internalErr(err)
	}
	daily, err := s.DailyPrices(ctx, cabinID, checkIn, checkOut)
	if err != nil {
		return nil, internalErr(err)
	}
	seasonal, err := s.SeasonalPrices(ctx, cabinID)
	if err != nil {
		return nil, internalErr(err)
	}
	q := &Quote{Nights: nights}
	for night := checkIn; night.Before(checkOut); night = night.AddDays(1) {
		p := resolveNight(cabin, daily, seasonal, night)
		q.TotalIRR += p.PriceIRR
		q.TotalUSD += p.PriceUSD
	}
	return q, nil
}

// resolveNight applies the price-source precedence for one night:
// daily override (cabin row beats global row), then active seasonal
// range, then the cabin base price.  Blocked daily rows are availability
// markers, not price sources, and fall through.
func resolveNight(cabin *model.Cabin, daily []model.DailyPrice, seasonal []model.SeasonalPrice, night model.Date) NightPrice {
	if dp := pickDaily(daily, cabin.ID, night); dp != nil {
		return NightPrice{PriceIRR: dp.PriceIRR, PriceUSD: dp.PriceUSD}
	}
	if sp := pickSeasonal(seasonal, night); sp != nil {
		return NightPrice{PriceIRR: sp.PriceIRR, PriceUSD: sp.PriceUSD}
	}
	return NightPrice{PriceIRR: cabin.BasePriceIRR, PriceUSD: cabin.BasePriceUSD}
}

// pickDaily selects the daily override for a date.  A row scoped to the
// cabin wins over a global (nil cabin) row; among rows of equal scope the
// most recently created wins.  Blocked rows never price a night.
func pickDaily(daily []model.DailyPrice, cabinID uint64, night model.Date) *model.DailyPrice {
	var best *model.DailyPrice
	for i := range daily {
		dp := &daily[i]
		if dp.Date != night || dp.IsBlocked {
			continue
		}
		if dp.CabinID != nil && *dp.CabinID != cabinID {
			continue
		}
		if best == nil || dailyBeats(dp, best) {
			best = dp
		}
	}
	return best
}

func dailyBeats(a, b *model.DailyPrice) bool {
	aScoped, bScoped := a.CabinID != nil, b.CabinID != nil
	if aScoped != bScoped {
		return aScoped
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// pickSeasonal selects the active seasonal range covering a date.  When
// ranges overlap, the most recently created wins, with the row id as a
// final tie-break so the choice never depends on fetch order.
func pickSeasonal(seasonal []model.SeasonalPrice, night model.Date) *model.SeasonalPrice {
	var best *model.SeasonalPrice
	for i := range seasonal {
		sp := &seasonal[i]
		if !sp.IsActive || !sp.Covers(night) {
			continue
		}
		if best == nil || seasonalBeats(sp, best) {
			best = sp
		}
	}
	return best
}

func seasonalBeats(a, b *model.SeasonalPrice) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
