// Package engine implements the reservation availability and pricing
// engine: deciding whether a date range can be booked, resolving nightly
// prices, validating coupons, and creating reservations atomically so
// that concurrent requests can never double-book a cabin.
package engine

import "errors"

// Kind identifies a booking failure.  Kinds cross the API boundary as
// structured codes, never as raw error strings.
type Kind string

const (
	KindCabinNotAvailable Kind = "CABIN_NOT_AVAILABLE" // cabin disabled or nonexistent
	KindExceedsCapacity   Kind = "EXCEEDS_CAPACITY"    // guests_count over cabin capacity
	KindInvalidCheckIn    Kind = "INVALID_CHECK_IN_DATE"
	KindInvalidDateRange  Kind = "INVALID_DATE_RANGE" // check-out not after check-in
	KindDatesNotAvailable Kind = "DATES_NOT_AVAILABLE"
	KindCouponInvalid     Kind = "COUPON_INVALID"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindInvalidInput      Kind = "INVALID_INPUT"  // malformed guest or payment data
	KindInternal          Kind = "INTERNAL_ERROR" // unexpected data-layer failure
)

// Error is a booking failure with a machine-readable kind and a
// human-readable message.  Validation failures are returned before any
// mutation; the caller never sees a partial reservation.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// E builds an engine error.
func E(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// KindOf extracts the failure kind from an error, mapping anything that
// is not an engine error to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// internal wraps an unexpected storage failure.  The original error is
// kept in the message for operator logs; callers surface only the kind.
func internalErr(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error()}
}
