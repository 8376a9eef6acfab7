package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ridelanka/booking-backend/internal/models"
)

// TripRepository handles trip database operations. Trips are read-only in
// this service; scheduling writes them.
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetTripByID retrieves a trip with its seat layout
func (r *TripRepository) GetTripByID(tripID string) (*models.Trip, error) {
	var trip models.Trip
	query := `
		SELECT id, route_name, origin_stop, destination_stop, departure_datetime,
		       floors, rows, cols, seat_price, currency
		FROM trips
		WHERE id = $1`

	err := r.db.Get(&trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// ListUpcomingTrips returns trips departing after the given cutoff
func (r *TripRepository) ListUpcomingTrips() ([]*models.Trip, error) {
	var trips []*models.Trip
	query := `
		SELECT id, route_name, origin_stop, destination_stop, departure_datetime,
		       floors, rows, cols, seat_price, currency
		FROM trips
		WHERE departure_datetime > NOW()
		ORDER BY departure_datetime ASC`

	if err := r.db.Select(&trips, query); err != nil {
		return nil, fmt.Errorf("failed to list upcoming trips: %w", err)
	}
	return trips, nil
}
