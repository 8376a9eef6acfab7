package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// SeatInventory holds the authoritative occupancy state for every trip's
// seats. All mutation goes through TryReserve, Release and MarkSold; each
// trip's seat set is guarded by its own mutex so operations on different
// trips do not contend.
type SeatInventory struct {
	trips  TripStore
	logger *logrus.Logger

	mu    sync.Mutex
	state map[string]*tripSeats
}

type tripSeats struct {
	mu    sync.Mutex
	seats map[string]*models.Seat
}

// NewSeatInventory creates a seat inventory backed by the given trip
// provider. Seat sets are materialised lazily from the trip layout on first
// touch.
func NewSeatInventory(trips TripStore, logger *logrus.Logger) *SeatInventory {
	return &SeatInventory{
		trips:  trips,
		logger: logger,
		state:  make(map[string]*tripSeats),
	}
}

// TryReserve marks all requested seats held for the booking, or none of
// them. Returns a ConflictError listing every unavailable seat when the
// reservation cannot be satisfied.
func (inv *SeatInventory) TryReserve(tripID string, seatCodes []string, bookingID uuid.UUID) error {
	ts, err := inv.tripState(tripID)
	if err != nil {
		return err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Check everything before touching anything: no partial holds.
	var unavailable []string
	for _, code := range seatCodes {
		seat, ok := ts.seats[code]
		if !ok {
			return fmt.Errorf("seat %s does not exist on trip %s", code, tripID)
		}
		if seat.Status != models.SeatStatusFree {
			unavailable = append(unavailable, code)
		}
	}
	if len(unavailable) > 0 {
		return &ConflictError{TripID: tripID, Seats: unavailable}
	}

	for _, code := range seatCodes {
		seat := ts.seats[code]
		seat.Status = models.SeatStatusHeld
		id := bookingID
		seat.BookingID = &id
	}
	return nil
}

// Release returns held seats to free. Releasing an already-free seat is a
// no-op, never an error; sold seats are left untouched.
func (inv *SeatInventory) Release(tripID string, seatCodes []string) error {
	ts, err := inv.tripState(tripID)
	if err != nil {
		return err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, code := range seatCodes {
		seat, ok := ts.seats[code]
		if !ok {
			continue
		}
		if seat.Status == models.SeatStatusHeld {
			seat.Status = models.SeatStatusFree
			seat.BookingID = nil
		}
	}
	return nil
}

// MarkSold converts a booking's held seats to sold. Fails with
// InvalidTransitionError when any seat is not currently held by that
// booking; on failure no seat is modified.
func (inv *SeatInventory) MarkSold(tripID string, seatCodes []string, bookingID uuid.UUID) error {
	ts, err := inv.tripState(tripID)
	if err != nil {
		return err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, code := range seatCodes {
		seat, ok := ts.seats[code]
		if !ok {
			return &InvalidTransitionError{BookingID: bookingID, Detail: fmt.Sprintf("seat %s does not exist on trip %s", code, tripID)}
		}
		if seat.Status != models.SeatStatusHeld || seat.BookingID == nil || *seat.BookingID != bookingID {
			return &InvalidTransitionError{BookingID: bookingID, Detail: fmt.Sprintf("seat %s is not held by this booking", code)}
		}
	}

	for _, code := range seatCodes {
		ts.seats[code].Status = models.SeatStatusSold
	}
	return nil
}

// SeatMap returns a snapshot of the trip's seats for display.
func (inv *SeatInventory) SeatMap(tripID string) (*models.SeatMapView, error) {
	trip, err := inv.trips.GetTripByID(tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	ts, err := inv.tripState(tripID)
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	view := &models.SeatMapView{TripID: tripID, Seats: make([]models.SeatMapEntry, 0, len(ts.seats))}
	for f := 0; f < trip.Floors; f++ {
		for r := 0; r < trip.Rows; r++ {
			for c := 0; c < trip.Cols; c++ {
				code := models.SeatCode(f, r, c)
				seat := ts.seats[code]
				view.Seats = append(view.Seats, models.SeatMapEntry{
					Code:      code,
					Floor:     f,
					Row:       r,
					Col:       c,
					Available: seat.Status == models.SeatStatusFree,
				})
			}
		}
	}
	return view, nil
}

// tripState returns the seat set for a trip, materialising it from the trip
// layout on first use. The trip is loaded outside the registry lock so a slow
// store query never serialises operations on other trips; concurrent first
// touches race to materialise and the loser adopts the winner's seat set.
func (inv *SeatInventory) tripState(tripID string) (*tripSeats, error) {
	inv.mu.Lock()
	ts, ok := inv.state[tripID]
	inv.mu.Unlock()
	if ok {
		return ts, nil
	}

	trip, err := inv.trips.GetTripByID(tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip %s: %w", tripID, err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	seats := make(map[string]*models.Seat, trip.Floors*trip.Rows*trip.Cols)
	for f := 0; f < trip.Floors; f++ {
		for r := 0; r < trip.Rows; r++ {
			for c := 0; c < trip.Cols; c++ {
				code := models.SeatCode(f, r, c)
				seats[code] = &models.Seat{Code: code, Floor: f, Row: r, Col: c, Status: models.SeatStatusFree}
			}
		}
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if existing, ok := inv.state[tripID]; ok {
		return existing, nil
	}

	ts = &tripSeats{seats: seats}
	inv.state[tripID] = ts

	inv.logger.WithFields(logrus.Fields{
		"trip_id": tripID,
		"seats":   len(seats),
	}).Debug("Seat inventory materialised for trip")

	return ts, nil
}
