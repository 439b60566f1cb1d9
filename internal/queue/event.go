// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published whenever a reservation is created,
// confirmed or cancelled. It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type ReservationEvent struct {
	Type          string  `json:"type"`
	ReservationID string  `json:"reservation_id"`
	CabinID       uint64  `json:"cabin_id"`
	CabinName     string  `json:"cabin_name,omitempty"`
	GuestName     string  `json:"guest_name"`
	GuestPhone    string  `json:"guest_phone"`
	CheckInDate   string  `json:"check_in_date"`
	CheckOutDate  string  `json:"check_out_date"`
	NightsCount   int     `json:"nights_count"`
	FinalPriceIRR int64   `json:"final_price_irr"`
	FinalPriceUSD float64 `json:"final_price_usd"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	OccurredAt    string  `json:"occurred_at"`
}
