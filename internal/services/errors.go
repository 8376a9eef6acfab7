package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
)

// ErrUnknownReference is returned when a payment event matches no booking.
// The event is presumed spurious or meant for another system; it is logged
// and acknowledged, never retried.
var ErrUnknownReference = errors.New("no booking matches payment reference")

// ErrTripNotFound is returned when a reservation names a trip the provider
// does not know.
var ErrTripNotFound = errors.New("trip not found")

// ErrBookingNotFound is returned when a booking lookup misses.
var ErrBookingNotFound = errors.New("booking not found")

// ConflictError reports seats that could not be held at reservation time.
// Recoverable: the caller picks different seats.
type ConflictError struct {
	TripID string
	Seats  []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats unavailable on trip %s: %v", e.TripID, e.Seats)
}

// InvalidTransitionError reports a seat or booking state change that the
// state machine does not permit.
type InvalidTransitionError struct {
	BookingID uuid.UUID
	Detail    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for booking %s: %s", e.BookingID, e.Detail)
}

// NotificationDeliveryError reports that a confirmed booking's ticket could
// not be sent. The booking stays confirmed; delivery is retried outside
// this service.
type NotificationDeliveryError struct {
	BookingID uuid.UUID
	Err       error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("ticket delivery failed for booking %s: %v", e.BookingID, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }

// Anomaly kinds surfaced for manual reconciliation.
const (
	AnomalyLateConfirmation   = "late_confirmation"
	AnomalyConflictingOutcome = "conflicting_outcome"
)

// AnomalyReporter records business-level inconsistencies (for example a
// payment succeeding after its seats were released and possibly resold).
// Anomalies are never auto-resolved.
type AnomalyReporter interface {
	RecordAnomaly(anomaly *models.Anomaly) error
}
