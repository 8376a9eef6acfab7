package services

import (
	"time"

	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const sweepBatchSize = 100

// ExpirySweeper is the background task that reclaims seats from pending
// bookings whose hold lapsed without a payment event. It drives the expired
// transition through the same lifecycle lock as the reconciler, so racing a
// concurrent confirmation is safe: whichever acquires exclusivity first
// wins and the loser's transition is a no-op.
type ExpirySweeper struct {
	bookings  BookingStore
	lifecycle *BookingLifecycle
	clock     Clock
	logger    *logrus.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

// NewExpirySweeper creates a sweeper that checks every interval.
func NewExpirySweeper(
	bookings BookingStore,
	lifecycle *BookingLifecycle,
	clock Clock,
	logger *logrus.Logger,
	interval time.Duration,
) *ExpirySweeper {
	return &ExpirySweeper{
		bookings:  bookings,
		lifecycle: lifecycle,
		clock:     clock,
		logger:    logger,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (s *ExpirySweeper) Start() {
	s.logger.WithField("interval", s.interval).Info("Starting expiry sweeper")
	go s.run()
}

// Stop stops the background sweep loop.
func (s *ExpirySweeper) Stop() {
	s.logger.Info("Stopping expiry sweeper")
	close(s.stopCh)
}

func (s *ExpirySweeper) run() {
	// Run immediately on start, then on the ticker.
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.stopCh:
			s.logger.Info("Expiry sweeper stopped")
			return
		}
	}
}

// RunOnce performs a single sweep cycle. Exposed so tests can advance a
// fake clock and sweep without sleeping.
func (s *ExpirySweeper) RunOnce() {
	expired, err := s.bookings.GetExpiredPendingBookings(s.clock.Now(), sweepBatchSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list expired pending bookings")
		return
	}
	if len(expired) == 0 {
		return
	}

	s.logger.WithField("count", len(expired)).Info("Sweeping expired pending bookings")

	for _, booking := range expired {
		_, applied, err := s.lifecycle.Transition(booking.ID, models.BookingStatusExpired)
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to expire booking")
			continue
		}
		if !applied {
			// Lost the race to a payment event between listing and locking.
			s.logger.WithField("booking_id", booking.ID).Debug("Booking reached a terminal status before sweep")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"booking_id":  booking.ID,
			"lookup_code": booking.LookupCode,
		}).Info("Booking expired and seats released")
	}
}
