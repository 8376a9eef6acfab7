package database

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
)

// MemoryStore is an in-memory trip and booking store. It backs development
// runs without a DATABASE_URL and the service-level tests. Semantics mirror
// the Postgres repositories, including the conditional finalize.
type MemoryStore struct {
	mu        sync.RWMutex
	trips     map[string]*models.Trip
	bookings  map[uuid.UUID]*models.Booking
	anomalies []*models.Anomaly
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trips:    make(map[string]*models.Trip),
		bookings: make(map[uuid.UUID]*models.Booking),
	}
}

// AddTrip registers a trip
func (s *MemoryStore) AddTrip(trip *models.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[trip.ID] = trip
}

// GetTripByID retrieves a trip, nil when absent
func (s *MemoryStore) GetTripByID(tripID string) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, nil
	}
	copied := *trip
	return &copied, nil
}

// CreateBooking stores a new booking
func (s *MemoryStore) CreateBooking(booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil
}

// GetBookingByID retrieves a booking by ID, nil when absent
func (s *MemoryStore) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

// GetBookingByLookupCode retrieves a booking by lookup code, nil when absent
func (s *MemoryStore) GetBookingByLookupCode(code string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, booking := range s.bookings {
		if booking.LookupCode == code {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

// GetBookingByPaymentReference retrieves a booking by payment reference, nil
// when absent
func (s *MemoryStore) GetBookingByPaymentReference(ref string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, booking := range s.bookings {
		if booking.PaymentReference == ref {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

// FinalizeBookingStatus moves a pending booking into a terminal status.
// Returns false when the booking is missing or no longer pending.
func (s *MemoryStore) FinalizeBookingStatus(id uuid.UUID, to models.BookingStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

// GetExpiredPendingBookings returns pending bookings whose hold lapsed before
// now, up to limit
func (s *MemoryStore) GetExpiredPendingBookings(now time.Time, limit int) ([]*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
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

// RecordAnomaly appends a reconciliation anomaly
func (s *MemoryStore) RecordAnomaly(anomaly *models.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *anomaly
	s.anomalies = append(s.anomalies, &copied)
	return nil
}

// ListRecentAnomalies returns recorded anomalies, newest first
func (s *MemoryStore) ListRecentAnomalies(limit int) ([]*models.Anomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Anomaly
	for i := len(s.anomalies) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *s.anomalies[i]
		out = append(out, &copied)
	}
	return out, nil
}
