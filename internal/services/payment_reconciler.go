package services

import (
	"fmt"

	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// PaymentReconciler consumes verified payment-provider events and drives
// booking lifecycle transitions exactly once. Webhook delivery is
// at-least-once and unordered, so every path here has to be safe to replay.
type PaymentReconciler struct {
	bookings  BookingStore
	lifecycle *BookingLifecycle
	tickets   *TicketIssuer
	anomalies AnomalyReporter
	clock     Clock
	logger    *logrus.Logger
}

// NewPaymentReconciler creates a reconciler.
func NewPaymentReconciler(
	bookings BookingStore,
	lifecycle *BookingLifecycle,
	tickets *TicketIssuer,
	anomalies AnomalyReporter,
	clock Clock,
	logger *logrus.Logger,
) *PaymentReconciler {
	return &PaymentReconciler{
		bookings:  bookings,
		lifecycle: lifecycle,
		tickets:   tickets,
		anomalies: anomalies,
		clock:     clock,
		logger:    logger,
	}
}

// Reconcile maps the event to its booking by payment reference and applies
// the corresponding transition. Duplicate deliveries of the same outcome
// are no-ops returning the recorded booking. A success landing on a booking
// whose seats were already released is never confirmed; it is recorded as a
// late-confirmation anomaly for manual handling, because the seats may have
// been resold in the interim.
func (r *PaymentReconciler) Reconcile(event models.PaymentEvent) (*models.Booking, error) {
	booking, err := r.bookings.GetBookingByPaymentReference(event.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment reference: %w", err)
	}
	if booking == nil {
		r.logger.WithFields(logrus.Fields{
			"payment_reference": event.Reference,
			"outcome":           event.Outcome,
		}).Warn("Payment event matches no booking")
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, event.Reference)
	}

	switch event.Outcome {
	case models.PaymentOutcomeSucceeded:
		return r.reconcileSuccess(booking, event)
	case models.PaymentOutcomeFailed:
		return r.reconcileFailure(booking, event)
	default:
		return nil, fmt.Errorf("unknown payment outcome %q for reference %s", event.Outcome, event.Reference)
	}
}

func (r *PaymentReconciler) reconcileSuccess(booking *models.Booking, event models.PaymentEvent) (*models.Booking, error) {
	result, applied, err := r.lifecycle.Transition(booking.ID, models.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking %s: %w", booking.ID, err)
	}

	if applied {
		// Ticket issue and dispatch happen strictly after the lifecycle
		// lock is released. A delivery failure leaves the booking sold.
		if _, err := r.tickets.IssueAndDispatch(result); err != nil {
			r.logger.WithError(err).WithField("booking_id", result.ID).Warn("Confirmed booking but ticket dispatch failed")
		}
		return result, nil
	}

	switch result.Status {
	case models.BookingStatusConfirmed:
		// Duplicate or delayed replay of an already-processed success.
		r.logger.WithFields(logrus.Fields{
			"booking_id":        result.ID,
			"payment_reference": event.Reference,
		}).Info("Duplicate success event for confirmed booking; no-op")
		return result, nil
	default:
		// Seats were already released (expired, cancelled or failed) and a
		// success arrived late. Do not re-sell; surface for manual refund.
		anomaly := &models.Anomaly{
			Kind:             AnomalyLateConfirmation,
			BookingID:        result.ID.String(),
			PaymentReference: event.Reference,
			Detail:           fmt.Sprintf("payment succeeded but booking is already %s", result.Status),
			Payload:          event.RawPayload,
			OccurredAt:       r.clock.Now(),
		}
		if err := r.anomalies.RecordAnomaly(anomaly); err != nil {
			r.logger.WithError(err).Error("Failed to record late-confirmation anomaly")
		}
		r.logger.WithFields(logrus.Fields{
			"booking_id":        result.ID,
			"payment_reference": event.Reference,
			"status":            result.Status,
		}).Warn("Late payment success after seats released; recorded anomaly")
		return result, nil
	}
}

func (r *PaymentReconciler) reconcileFailure(booking *models.Booking, event models.PaymentEvent) (*models.Booking, error) {
	result, applied, err := r.lifecycle.Transition(booking.ID, models.BookingStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to fail booking %s: %w", booking.ID, err)
	}

	if !applied && result.Status == models.BookingStatusConfirmed {
		// A failure event after a success was already applied. Keep the
		// confirmation; record the conflicting outcome for review.
		anomaly := &models.Anomaly{
			Kind:             AnomalyConflictingOutcome,
			BookingID:        result.ID.String(),
			PaymentReference: event.Reference,
			Detail:           "payment failure event arrived for a confirmed booking",
			Payload:          event.RawPayload,
			OccurredAt:       r.clock.Now(),
		}
		if err := r.anomalies.RecordAnomaly(anomaly); err != nil {
			r.logger.WithError(err).Error("Failed to record conflicting-outcome anomaly")
		}
		r.logger.WithFields(logrus.Fields{
			"booking_id":        result.ID,
			"payment_reference": event.Reference,
		}).Warn("Failure event for confirmed booking; recorded anomaly")
	}

	return result, nil
}
