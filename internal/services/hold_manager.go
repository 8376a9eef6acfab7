package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Hold is a time-bounded exclusive claim on a booking's seats. Holds are
// derived from the booking record rather than stored separately, so there
// is a single source of truth for what a booking has claimed.
type Hold struct {
	BookingID uuid.UUID
	TripID    string
	SeatCodes []string
	ExpiresAt time.Time
}

// HoldManager grants and releases time-bounded seat holds. Atomicity of the
// grant is enforced by the seat inventory, not here; this layer only adds
// the expiry bound.
type HoldManager struct {
	inventory *SeatInventory
	clock     Clock
	logger    *logrus.Logger
}

// NewHoldManager creates a hold manager over the given inventory.
func NewHoldManager(inventory *SeatInventory, clock Clock, logger *logrus.Logger) *HoldManager {
	return &HoldManager{inventory: inventory, clock: clock, logger: logger}
}

// CreateHold reserves the seats for the booking and stamps an expiry of
// now + ttl. Two concurrent holds intersecting in seats never both succeed.
func (m *HoldManager) CreateHold(bookingID uuid.UUID, tripID string, seatCodes []string, ttl time.Duration) (*Hold, error) {
	if err := m.inventory.TryReserve(tripID, seatCodes, bookingID); err != nil {
		return nil, err
	}

	hold := &Hold{
		BookingID: bookingID,
		TripID:    tripID,
		SeatCodes: seatCodes,
		ExpiresAt: m.clock.Now().Add(ttl),
	}

	m.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"trip_id":    tripID,
		"seats":      seatCodes,
		"expires_at": hold.ExpiresAt,
	}).Info("Seat hold created")

	return hold, nil
}

// IsExpired reports whether the hold has lapsed at the given instant.
func (m *HoldManager) IsExpired(hold *Hold, now time.Time) bool {
	return now.After(hold.ExpiresAt)
}

// ReleaseHold returns the hold's seats to free. Safe to call any number of
// times; releasing already-free seats is a no-op.
func (m *HoldManager) ReleaseHold(hold *Hold) error {
	return m.inventory.Release(hold.TripID, hold.SeatCodes)
}

// ConvertToSale discards the hold while keeping the seats off the market:
// the booking's held seats become sold instead of returning to free.
func (m *HoldManager) ConvertToSale(hold *Hold) error {
	return m.inventory.MarkSold(hold.TripID, hold.SeatCodes, hold.BookingID)
}

// HoldFromBooking reconstructs the hold a pending booking owns.
func HoldFromBooking(booking *models.Booking) *Hold {
	return &Hold{
		BookingID: booking.ID,
		TripID:    booking.TripID,
		SeatCodes: booking.SeatCodes,
		ExpiresAt: booking.HoldExpiresAt,
	}
}
