package model

import "time"

// Cabin represents one rentable cabin.  It is owned by the admin back
// office; the booking engine reads it as the capacity ceiling and the
// pricing floor for every reservation.  This struct corresponds to a row
// in the `cabins` table.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – display name of the cabin.
//  Slug         – URL-friendly unique identifier.
//  Capacity     – maximum number of guests.
//  BasePriceIRR – default nightly price in Iranian rial.
//  BasePriceUSD – default nightly price in US dollars.
//  IsAvailable  – whether the cabin can be booked at all.
//  SortOrder    – display ordering for listings.
//  CreatedAt    – timestamp when the cabin was created.
//  UpdatedAt    – timestamp of last update.
type Cabin struct {
	ID           uint64    // cabins.id
	Name         string    // cabins.name
	Slug         string    // cabins.slug
	Capacity     int       // cabins.capacity
	BasePriceIRR int64     // cabins.base_price_irr
	BasePriceUSD float64   // cabins.base_price_usd
	IsAvailable  bool      // cabins.is_available
	SortOrder    int       // cabins.sort_order
	CreatedAt    time.Time // cabins.created_at
	UpdatedAt    time.Time // cabins.updated_at
}
