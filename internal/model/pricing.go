package model

import "time"

// SeasonalPrice overrides a cabin's nightly price over an inclusive
// [StartDate, EndDate] range.  Multiple ranges may overlap; the pricing
// resolver breaks ties deterministically (most recently created wins).
// This struct corresponds to a row in the `seasonal_prices` table.
type SeasonalPrice struct {
	ID         string    `json:"id"`          // seasonal_prices.id (uuid)
	CabinID    uint64    `json:"cabin_id"`    // seasonal_prices.cabin_id
	SeasonName string    `json:"season_name"` // seasonal_prices.season_name
	SeasonType string    `json:"season_type"` // off_season|regular|high_season|peak|special
	StartDate  Date      `json:"start_date"`  // inclusive
	EndDate    Date      `json:"end_date"`    // inclusive
	PriceIRR   int64     `json:"price_irr"`
	PriceUSD   float64   `json:"price_usd"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Covers reports whether the range contains the given date.  Both
// boundaries are inclusive, unlike reservation ranges.
func (s *SeasonalPrice) Covers(d Date) bool {
	return !d.Before(s.StartDate) && !s.EndDate.Before(d)
}

// DailyPrice pins the price of a single date, optionally for every cabin
// (nil CabinID).  It is the highest-priority price source; when IsBlocked
// is set the night cannot be booked regardless of price.  This struct
// corresponds to a row in the `daily_prices` table.
type DailyPrice struct {
	ID        string    `json:"id"`       // daily_prices.id (uuid)
	CabinID   *uint64   `json:"cabin_id"` // nil = all cabins
	Date      Date      `json:"date"`
	PriceIRR  int64     `json:"price_irr"`
	PriceUSD  float64   `json:"price_usd"`
	Reason    *string   `json:"reason,omitempty"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockedDate marks one calendar date as unbookable, either for one cabin
// or for all cabins (nil CabinID).  Admin-owned, read-only to the engine.
// This struct corresponds to a row in the `blocked_dates` table.
type BlockedDate struct {
	ID        string    `json:"id"`       // blocked_dates.id (uuid)
	Date      Date      `json:"date"`
	CabinID   *uint64   `json:"cabin_id"` // nil = all cabins
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `json:"created_by,omitempty"`
}
