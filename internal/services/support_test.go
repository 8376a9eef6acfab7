package services

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/pkg/ticket"
	"github.com/sirupsen/logrus"
)

var testBase = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeStore is an in-memory TripStore, BookingStore and AnomalyReporter for
// exercising the services without a database.
type fakeStore struct {
	mu        sync.Mutex
	trips     map[string]*models.Trip
	bookings  map[uuid.UUID]*models.Booking
	anomalies []*models.Anomaly

	failFinalize bool
}

func newFakeStore(trips ...*models.Trip) *fakeStore {
	s := &fakeStore{
		trips:    make(map[string]*models.Trip),
		bookings: make(map[uuid.UUID]*models.Booking),
	}
	for _, trip := range trips {
		s.trips[trip.ID] = trip
	}
	return s
}

func (s *fakeStore) GetTripByID(tripID string) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, nil
	}
	copied := *trip
	return &copied, nil
}

func (s *fakeStore) CreateBooking(booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

func (s *fakeStore) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeStore) GetBookingByLookupCode(code string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, booking := range s.bookings {
		if booking.LookupCode == code {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetBookingByPaymentReference(ref string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, booking := range s.bookings {
		if booking.PaymentReference == ref {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FinalizeBookingStatus(id uuid.UUID, to models.BookingStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFinalize {
		return false, fmt.Errorf("store unavailable")
	}
	booking, ok := s.bookings[id]
	if !ok || booking.Status != models.BookingStatusPending {
		return false, nil
	}
	booking.Status = to
	booking.UpdatedAt = at
	if to == models.BookingStatusConfirmed {
		confirmedAt := at
		booking.ConfirmedAt = &confirmedAt
	}
	return true, nil
}

func (s *fakeStore) GetExpiredPendingBookings(now time.Time, limit int) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*models.Booking
	for _, booking := range s.bookings {
		if booking.Status == models.BookingStatusPending && booking.HoldExpired(now) {
			copied := *booking
			expired = append(expired, &copied)
			if len(expired) >= limit {
				break
			}
		}
	}
	return expired, nil
}

func (s *fakeStore) RecordAnomaly(anomaly *models.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *anomaly
	s.anomalies = append(s.anomalies, &copied)
	return nil
}

func (s *fakeStore) recordedAnomalies() []*models.Anomaly {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Anomaly, len(s.anomalies))
	copy(out, s.anomalies)
	return out
}

// fakeNotifier records dispatched tickets and can be told to fail.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []*models.Ticket
	failure error
}

func (n *fakeNotifier) SendTicket(contact models.CustomerContact, tk *models.Ticket) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failure != nil {
		return n.failure
	}
	n.sent = append(n.sent, tk)
	return nil
}

func (n *fakeNotifier) sentTickets() []*models.Ticket {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*models.Ticket, len(n.sent))
	copy(out, n.sent)
	return out
}

func newTestCodec() *ticket.Codec {
	return ticket.NewCodec("test-signing-secret", "booking-test")
}

func testTrip() *models.Trip {
	return &models.Trip{
		ID:                "trip-123",
		RouteName:         "Route 1 Express",
		OriginStop:        "Colombo Fort",
		DestinationStop:   "Kandy",
		DepartureDatetime: testBase.Add(24 * time.Hour),
		Floors:            1,
		Rows:              3,
		Cols:              2,
		SeatPrice:         1500,
		Currency:          "LKR",
	}
}

// fixture wires the full service graph over the fake store.
type fixture struct {
	store      *fakeStore
	clock      *fakeClock
	inventory  *SeatInventory
	holds      *HoldManager
	lifecycle  *BookingLifecycle
	notifier   *fakeNotifier
	issuer     *TicketIssuer
	reconciler *PaymentReconciler
	service    *BookingService
	sweeper    *ExpirySweeper
	config     BookingConfig
}

func newFixture(trips ...*models.Trip) *fixture {
	logger := newTestLogger()
	store := newFakeStore(trips...)
	clock := newFakeClock(testBase)
	config := DefaultBookingConfig()

	inventory := NewSeatInventory(store, logger)
	holds := NewHoldManager(inventory, clock, logger)
	lifecycle := NewBookingLifecycle(store, holds, clock, logger)
	notifier := &fakeNotifier{}
	issuer := NewTicketIssuer(store, newTestCodec(), notifier, logger)
	reconciler := NewPaymentReconciler(store, lifecycle, issuer, store, clock, logger)
	service := NewBookingService(store, store, holds, lifecycle, inventory, nil, clock, config, logger)
	sweeper := NewExpirySweeper(store, lifecycle, clock, logger, config.SweepInterval)

	return &fixture{
		store:      store,
		clock:      clock,
		inventory:  inventory,
		holds:      holds,
		lifecycle:  lifecycle,
		notifier:   notifier,
		issuer:     issuer,
		reconciler: reconciler,
		service:    service,
		sweeper:    sweeper,
		config:     config,
	}
}

func (f *fixture) reserve(seats ...string) *models.BookingResponse {
	response, err := f.service.Reserve(&models.CreateBookingRequest{
		TripID:        "trip-123",
		SeatCodes:     seats,
		CustomerName:  "Nimal Perera",
		CustomerEmail: "nimal@example.com",
	})
	if err != nil {
		panic(err)
	}
	return response
}

func (f *fixture) seatStatus(code string) models.SeatStatus {
	ts, err := f.inventory.tripState("trip-123")
	if err != nil {
		panic(err)
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.seats[code].Status
}
