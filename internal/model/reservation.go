package model

import "time"

// Reservation statuses.  A reservation blocks its cabin's nights while in
// StatusPending, StatusPendingPayment or StatusConfirmed.  StatusCancelled
// and StatusCompleted are terminal.
const (
	StatusPending        = "pending"         // awaiting manual confirmation
	StatusPendingPayment = "pending_payment" // awaiting online payment
	StatusConfirmed      = "confirmed"       // confirmed stay
	StatusCancelled      = "cancelled"       // terminal
	StatusCompleted      = "completed"       // terminal, stay finished
)

// Payment statuses, tracked independently of the reservation status.  A
// confirmed reservation may still be unpaid (cash on arrival).
const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
	PaymentFailed   = "failed"
)

// Payment methods accepted at booking time.
const (
	PayZarinpal      = "online_zarinpal"
	PayPayPal        = "online_paypal"
	PayCryptoUSDT    = "crypto_usdt"
	PayCashOnArrival = "cash_on_arrival"
)

// OnlinePayment reports whether the method requires an online payment
// flow.  Online bookings start in pending_payment, others in pending.
func OnlinePayment(method string) bool {
	switch method {
	case PayZarinpal, PayPayPal, PayCryptoUSDT:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether the method is one the engine accepts.
func ValidPaymentMethod(method string) bool {
	return method == PayCashOnArrival || OnlinePayment(method)
}

// BlocksAvailability reports whether a reservation in the given status
// occupies its nights in the availability index.
func BlocksAvailability(status string) bool {
	switch status {
	case StatusPending, StatusPendingPayment, StatusConfirmed:
		return true
	}
	return false
}

// TerminalStatus reports whether a reservation status admits no further
// transitions.
func TerminalStatus(status string) bool {
	return status == StatusCancelled || status == StatusCompleted
}

// Reservation records one guest's claim on one cabin for the half-open
// interval [CheckInDate, CheckOutDate).  It is created by the booking
// transaction and mutated only through lifecycle transitions; the engine
// never deletes rows.  This struct corresponds to a row in the
// `reservations` table.
type Reservation struct {
	ID                 string     // reservations.id (uuid)
	CabinID            uint64     // reservations.cabin_id
	GuestName          string     // reservations.guest_name
	GuestPhone         string     // reservations.guest_phone
	GuestEmail         *string    // reservations.guest_email (nullable)
	GuestsCount        int        // reservations.guests_count
	CheckInDate        Date       // reservations.check_in_date
	CheckOutDate       Date       // reservations.check_out_date
	NightsCount        int        // reservations.nights_count (derived)
	CalculatedPriceIRR int64      // reservations.calculated_price_irr (pre-discount)
	CalculatedPriceUSD float64    // reservations.calculated_price_usd
	DiscountAmountIRR  int64      // reservations.discount_amount_irr
	DiscountAmountUSD  float64    // reservations.discount_amount_usd
	FinalPriceIRR      int64      // reservations.final_price_irr
	FinalPriceUSD      float64    // reservations.final_price_usd
	CouponCode         *string    // reservations.coupon_code (nullable)
	PaymentMethod      string     // reservations.payment_method
	PaymentStatus      string     // reservations.payment_status
	PaymentReference   *string    // reservations.payment_reference (nullable)
	PaymentVerifiedAt  *time.Time // reservations.payment_verified_at (nullable)
	PaymentVerifiedBy  *string    // reservations.payment_verified_by (nullable)
	Status             string     // reservations.status
	AdminNotes         *string    // reservations.admin_notes (nullable)
	CreatedAt          time.Time  // reservations.created_at
	UpdatedAt          time.Time  // reservations.updated_at
	ConfirmedAt        *time.Time // reservations.confirmed_at (nullable)
	CancelledAt        *time.Time // reservations.cancelled_at (nullable)
}

// Range returns the stay as a half-open date range.
func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckInDate, CheckOut: r.CheckOutDate}
}
