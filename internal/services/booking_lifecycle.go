package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingLifecycle is the only component that moves a booking out of
// pending. Every terminal transition runs under a per-booking mutex and a
// conditional store update, so exactly one of confirmed, failed, expired or
// cancelled is ever recorded no matter how webhook deliveries and the
// expiry sweeper race each other.
type BookingLifecycle struct {
	bookings BookingStore
	holds    *HoldManager
	clock    Clock
	logger   *logrus.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewBookingLifecycle creates the lifecycle state machine.
func NewBookingLifecycle(bookings BookingStore, holds *HoldManager, clock Clock, logger *logrus.Logger) *BookingLifecycle {
	return &BookingLifecycle{
		bookings: bookings,
		holds:    holds,
		clock:    clock,
		logger:   logger,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Transition drives the booking to the given terminal status. Returns the
// booking as recorded after the call and whether this call applied the
// transition. A booking already in a terminal state is left untouched and
// reported with applied=false; callers decide whether that no-op is an
// idempotent replay or an anomaly.
//
// The store is finalized before any seat state changes. A transient store
// failure therefore leaves the booking pending with its seats still held,
// and the next webhook replay or sweep retries the whole transition.
func (l *BookingLifecycle) Transition(bookingID uuid.UUID, target models.BookingStatus) (*models.Booking, bool, error) {
	if !target.IsTerminal() {
		return nil, false, &InvalidTransitionError{BookingID: bookingID, Detail: fmt.Sprintf("target status %q is not terminal", target)}
	}

	lock := l.lockFor(bookingID)
	lock.Lock()
	defer lock.Unlock()

	booking, err := l.bookings.GetBookingByID(bookingID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil {
		return nil, false, ErrBookingNotFound
	}

	if booking.Status.IsTerminal() {
		l.forgetLock(bookingID)
		return booking, false, nil
	}

	now := l.clock.Now()
	applied, err := l.bookings.FinalizeBookingStatus(bookingID, target, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record status: %w", err)
	}
	if !applied {
		// The store refused the conditional update: someone finalized the
		// booking without going through this state machine. Surface loudly.
		l.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"target":     target,
		}).Error("Terminal transition lost despite lifecycle lock")
		refreshed, err := l.bookings.GetBookingByID(bookingID)
		if err != nil {
			return nil, false, err
		}
		l.forgetLock(bookingID)
		return refreshed, false, nil
	}

	// The store committed; the seat state now follows it. A failure here is
	// logged rather than returned: the recorded status is authoritative and
	// the inventory rebuild on restart reconverges seat state to it.
	hold := HoldFromBooking(booking)
	if target == models.BookingStatusConfirmed {
		if err := l.holds.ConvertToSale(hold); err != nil {
			l.logger.WithError(err).WithField("booking_id", bookingID).Error("Booking confirmed but seats could not be marked sold")
		}
	} else {
		if err := l.holds.ReleaseHold(hold); err != nil {
			l.logger.WithError(err).WithField("booking_id", bookingID).Error("Booking finalized but seats could not be released")
		}
	}

	booking.Status = target
	booking.UpdatedAt = now
	if target == models.BookingStatusConfirmed {
		booking.ConfirmedAt = &now
	}

	l.logger.WithFields(logrus.Fields{
		"booking_id":  bookingID,
		"lookup_code": booking.LookupCode,
		"status":      target,
	}).Info("Booking reached terminal status")

	l.forgetLock(bookingID)
	return booking, true, nil
}

// lockFor returns the mutex serialising transitions for one booking.
func (l *BookingLifecycle) lockFor(bookingID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[bookingID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[bookingID] = lock
	}
	return lock
}

// forgetLock drops the mutex entry for a booking known to be terminal.
// Terminal bookings never transition again, so a goroutine that raced in on
// the old mutex (or a fresh one) only ever observes the terminal status and
// no-ops.
func (l *BookingLifecycle) forgetLock(bookingID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, bookingID)
}
