package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
)

// TripStore is the read-only trip and seat-layout provider. Trips are owned
// by scheduling data outside this service.
type TripStore interface {
	GetTripByID(tripID string) (*models.Trip, error)
}

// BookingStore persists bookings. Implementations must make
// FinalizeBookingStatus conditional on the booking still being pending so
// the store enforces the single-terminal-status invariant alongside the
// lifecycle's per-booking lock.
type BookingStore interface {
	CreateBooking(booking *models.Booking) error
	GetBookingByID(id uuid.UUID) (*models.Booking, error)
	GetBookingByLookupCode(code string) (*models.Booking, error)
	GetBookingByPaymentReference(ref string) (*models.Booking, error)

	// FinalizeBookingStatus moves a pending booking to the given terminal
	// status. Returns false without error when the booking was no longer
	// pending, so a lost race surfaces as a no-op instead of a failure.
	FinalizeBookingStatus(id uuid.UUID, to models.BookingStatus, at time.Time) (bool, error)

	// GetExpiredPendingBookings returns pending bookings whose hold lapsed
	// before now, up to limit.
	GetExpiredPendingBookings(now time.Time, limit int) ([]*models.Booking, error)
}
