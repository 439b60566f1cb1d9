package engine

import (
	"context"
	"testing"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// seedReservation books a cash stay and returns its id.
func seedReservation(t *testing.T, e *Engine) string {
	t.Helper()
	res, err := e.CreateReservation(context.Background(), bookingRequest(t))
	if err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return res.ReservationID
}

func TestConfirm(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)
	id := seedReservation(t, e)

	r, err := e.Confirm(context.Background(), id)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if r.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", r.Status)
	}
	if r.ConfirmedAt == nil || !r.ConfirmedAt.Equal(testNow) {
		t.Errorf("confirmed_at = %v, want %v", r.ConfirmedAt, testNow)
	}
}

func TestConfirmFromPendingPayment(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)

	req := bookingRequest(t)
	req.PaymentMethod = model.PayZarinpal
	res, err := e.CreateReservation(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	r, err := e.Confirm(context.Background(), res.ReservationID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if r.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", r.Status)
	}
}

func TestCancelKeepsReason(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)
	id := seedReservation(t, e)

	r, err := e.Cancel(context.Background(), id, "guest asked by phone")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if r.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", r.Status)
	}
	if r.CancelledAt == nil {
		t.Error("cancelled_at not set")
	}
	if r.AdminNotes == nil || *r.AdminNotes != "guest asked by phone" {
		t.Errorf("admin notes = %v", r.AdminNotes)
	}
}

func TestCancelFreesDates(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)
	id := seedReservation(t, e)

	if _, err := e.CreateReservation(context.Background(), bookingRequest(t)); !IsKind(err, KindDatesNotAvailable) {
		t.Fatalf("overlap before cancel: err = %v", err)
	}
	if _, err := e.Cancel(context.Background(), id, ""); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := e.CreateReservation(context.Background(), bookingRequest(t)); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestVerifyPayment(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)

	req := bookingRequest(t)
	req.PaymentMethod = model.PayZarinpal
	res, err := e.CreateReservation(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	r, err := e.VerifyPayment(context.Background(), res.ReservationID, "zp-12345", "7")
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if r.PaymentStatus != model.PaymentPaid {
		t.Errorf("payment status = %s, want paid", r.PaymentStatus)
	}
	if r.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", r.Status)
	}
	if r.PaymentReference == nil || *r.PaymentReference != "zp-12345" {
		t.Errorf("payment reference = %v", r.PaymentReference)
	}
	if r.PaymentVerifiedAt == nil || r.PaymentVerifiedBy == nil || *r.PaymentVerifiedBy != "7" {
		t.Errorf("verified at/by = %v/%v", r.PaymentVerifiedAt, r.PaymentVerifiedBy)
	}

	// A second verification is rejected.
	if _, err := e.VerifyPayment(context.Background(), res.ReservationID, "zp-12345", "7"); !IsKind(err, KindIllegalTransition) {
		t.Errorf("double verify: err = %v, want %s", err, KindIllegalTransition)
	}
}

func TestFailPayment(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)

	req := bookingRequest(t)
	req.PaymentMethod = model.PayZarinpal
	res, err := e.CreateReservation(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	r, err := e.FailPayment(context.Background(), res.ReservationID)
	if err != nil {
		t.Fatalf("FailPayment: %v", err)
	}
	if r.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", r.Status)
	}
	if r.PaymentStatus != model.PaymentFailed {
		t.Errorf("payment status = %s, want failed", r.PaymentStatus)
	}

	// The nights stay blocked while the booking is pending.
	if _, err := e.CreateReservation(context.Background(), bookingRequest(t)); !IsKind(err, KindDatesNotAvailable) {
		t.Errorf("overlap after failed payment: err = %v", err)
	}

	// FailPayment only applies to pending_payment.
	if _, err := e.FailPayment(context.Background(), res.ReservationID); !IsKind(err, KindIllegalTransition) {
		t.Errorf("second fail: err = %v, want %s", err, KindIllegalTransition)
	}
}

func TestFailPaymentRejectsCash(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)
	id := seedReservation(t, e)

	if _, err := e.FailPayment(context.Background(), id); !IsKind(err, KindIllegalTransition) {
		t.Errorf("err = %v, want %s", err, KindIllegalTransition)
	}
}

func TestComplete(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)
	id := seedReservation(t, e)

	if _, err := e.Complete(context.Background(), id); !IsKind(err, KindIllegalTransition) {
		t.Fatalf("complete pending: err = %v, want %s", err, KindIllegalTransition)
	}
	if _, err := e.Confirm(context.Background(), id); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	r, err := e.Complete(context.Background(), id)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if r.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", r.Status)
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	ms := bookingStore()
	e := newMemEngine(ms)

	cancelled := seedReservation(t, e)
	if _, err := e.Cancel(context.Background(), cancelled, ""); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	completed := seedReservation(t, e)
	if _, err := e.Confirm(context.Background(), completed); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := e.Complete(context.Background(), completed); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	for _, id := range []string{cancelled, completed} {
		ops := map[string]func() error{
			"confirm": func() error { _, err := e.Confirm(context.Background(), id); return err },
			"cancel":  func() error { _, err := e.Cancel(context.Background(), id, "x"); return err },
			"verify":  func() error { _, err := e.VerifyPayment(context.Background(), id, "ref", ""); return err },
			"fail":    func() error { _, err := e.FailPayment(context.Background(), id); return err },
		}
		for name, op := range ops {
			if err := op(); !IsKind(err, KindIllegalTransition) {
				t.Errorf("%s on %s: err = %v, want %s", name, ms.reservations[id].Status, err, KindIllegalTransition)
			}
		}
	}
	// Completing the cancelled one is also illegal.
	if _, err := e.Complete(context.Background(), cancelled); !IsKind(err, KindIllegalTransition) {
		t.Errorf("complete cancelled: err = %v, want %s", err, KindIllegalTransition)
	}
}

func TestLifecycleUnknownReservation(t *testing.T) {
	e := newMemEngine(bookingStore())

	if _, err := e.Confirm(context.Background(), "missing"); !IsKind(err, KindInvalidInput) {
		t.Errorf("err = %v, want %s", err, KindInvalidInput)
	}
	if _, err := e.Reservation(context.Background(), "missing"); !IsKind(err, KindInvalidInput) {
		t.Errorf("Reservation: err = %v, want %s", err, KindInvalidInput)
	}
}
