package engine

import (
	"context"
	"errors"

	"github.com/iliyamo/cabin-reservation/internal/model"
)

// Lifecycle transitions.  Each operation loads the reservation with a
// row lock, verifies the transition is legal, and writes the new state
// in the same transaction.  cancelled and completed are terminal: no
// operation moves a reservation out of them.

// Confirm moves a pending or pending_payment reservation to confirmed.
func (e *Engine) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return e.transition(ctx, id, func(r *model.Reservation) error {
		switch r.Status {
		case model.StatusPending, model.StatusPendingPayment:
			now := e.now()
			r.Status = model.StatusConfirmed
			r.ConfirmedAt = &now
			return nil
		}
		return E(KindIllegalTransition, "cannot confirm a "+r.Status+" reservation")
	})
}

// Cancel cancels a reservation that has not finished its lifecycle.
// The optional reason is kept in the admin notes.
func (e *Engine) Cancel(ctx context.Context, id, reason string) (*model.Reservation, error) {
	return e.transition(ctx, id, func(r *model.Reservation) error {
		if model.TerminalStatus(r.Status) {
			return E(KindIllegalTransition, "cannot cancel a "+r.Status+" reservation")
		}
		now := e.now()
		r.Status = model.StatusCancelled
		r.CancelledAt = &now
		if reason != "" {
			r.AdminNotes = &reason
		}
		return nil
	})
}

// VerifyPayment records a verified payment: payment_status becomes paid
// and the reservation is confirmed, atomically.  verifiedBy identifies
// the admin or gateway callback that verified the reference.
func (e *Engine) VerifyPayment(ctx context.Context, id, reference, verifiedBy string) (*model.Reservation, error) {
	return e.transition(ctx, id, func(r *model.Reservation) error {
		if model.TerminalStatus(r.Status) {
			return E(KindIllegalTransition, "cannot verify payment on a "+r.Status+" reservation")
		}
		if r.PaymentStatus == model.PaymentPaid {
			return E(KindIllegalTransition, "payment already verified")
		}
		now := e.now()
		r.PaymentStatus = model.PaymentPaid
		r.PaymentReference = &reference
		r.PaymentVerifiedAt = &now
		if verifiedBy != "" {
			r.PaymentVerifiedBy = &verifiedBy
		}
		if r.Status != model.StatusConfirmed {
			r.Status = model.StatusConfirmed
			r.ConfirmedAt = &now
		}
		return nil
	})
}

// FailPayment records a failed online payment attempt.  The reservation
// returns to pending for manual follow-up; its nights stay blocked until
// an admin confirms or cancels.
func (e *Engine) FailPayment(ctx context.Context, id string) (*model.Reservation, error) {
	return e.transition(ctx, id, func(r *model.Reservation) error {
		if r.Status != model.StatusPendingPayment {
			return E(KindIllegalTransition, "cannot fail payment on a "+r.Status+" reservation")
		}
		r.PaymentStatus = model.PaymentFailed
		r.Status = model.StatusPending
		return nil
	})
}

// Complete marks a confirmed stay as finished.  Administrative only;
// nothing transitions reservations by the passage of time.
func (e *Engine) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return e.transition(ctx, id, func(r *model.Reservation) error {
		if r.Status != model.StatusConfirmed {
			return E(KindIllegalTransition, "cannot complete a "+r.Status+" reservation")
		}
		r.Status = model.StatusCompleted
		return nil
	})
}

// transition runs one lifecycle mutation inside a transaction with the
// reservation row locked, so concurrent transitions serialize and each
// one sees the latest status.
func (e *Engine) transition(ctx context.Context, id string, mutate func(*model.Reservation) error) (*model.Reservation, error) {
	var out *model.Reservation
	err := e.run.InTx(ctx, func(tx TxStore) error {
		r, err := tx.ReservationForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return E(KindInvalidInput, "reservation not found")
			}
			return internalErr(err)
		}
		if err := mutate(r); err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return internalErr(err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reservation loads one reservation by id for read-only callers.
func (e *Engine) Reservation(ctx context.Context, id string) (*model.Reservation, error) {
	r, err := e.store.ReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, E(KindInvalidInput, "reservation not found")
		}
		return nil, internalErr(err)
	}
	return r, nil
}
