package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ridelanka/booking-backend/internal/models"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, trip_id, lookup_code, verification_token, payment_reference,
	payment_url, seat_codes, customer_name, customer_email, customer_phone,
	total_amount, currency, status, hold_expires_at, confirmed_at,
	created_at, updated_at`

// ============================================================================
// BOOKING CRUD OPERATIONS
// ============================================================================

// CreateBooking inserts a new booking in pending status
func (r *BookingRepository) CreateBooking(booking *models.Booking) error {
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	query := `
		INSERT INTO bookings (
			id, trip_id, lookup_code, verification_token, payment_reference,
			payment_url, seat_codes, customer_name, customer_email, customer_phone,
			total_amount, currency, status, hold_expires_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)`

	_, err := r.db.Exec(query,
		booking.ID, booking.TripID, booking.LookupCode, booking.VerificationToken,
		booking.PaymentReference, booking.PaymentURL, booking.SeatCodes,
		booking.CustomerName, booking.CustomerEmail, booking.CustomerPhone,
		booking.TotalAmount, booking.Currency, booking.Status, booking.HoldExpiresAt,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetBookingByID retrieves a booking by its ID
func (r *BookingRepository) GetBookingByID(id uuid.UUID) (*models.Booking, error) {
	return r.getBookingWhere("id = $1", id)
}

// GetBookingByLookupCode retrieves a booking by its public lookup code
func (r *BookingRepository) GetBookingByLookupCode(code string) (*models.Booking, error) {
	return r.getBookingWhere("lookup_code = $1", code)
}

// GetBookingByPaymentReference retrieves a booking by its payment reference
func (r *BookingRepository) GetBookingByPaymentReference(ref string) (*models.Booking, error) {
	return r.getBookingWhere("payment_reference = $1", ref)
}

func (r *BookingRepository) getBookingWhere(where string, arg interface{}) (*models.Booking, error) {
	var booking models.Booking
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE %s", bookingColumns, where)

	err := r.db.Get(&booking, query, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// FinalizeBookingStatus moves a pending booking into a terminal status. The
// WHERE clause on status makes the transition conditional: a booking already
// finalized by a concurrent path reports false, never an error. Confirmed
// bookings additionally record their confirmation instant.
func (r *BookingRepository) FinalizeBookingStatus(id uuid.UUID, to models.BookingStatus, at time.Time) (bool, error) {
	var result sql.Result
	var err error

	if to == models.BookingStatusConfirmed {
		query := `
			UPDATE bookings
			SET status = $1, confirmed_at = $2, updated_at = $3
			WHERE id = $4 AND status = 'pending'`
		result, err = r.db.Exec(query, to, at, at, id)
	} else {
		query := `
			UPDATE bookings
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = 'pending'`
		result, err = r.db.Exec(query, to, at, id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to finalize booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows == 1, nil
}

// GetExpiredPendingBookings returns pending bookings whose hold lapsed before
// the given instant, oldest first, up to limit
func (r *BookingRepository) GetExpiredPendingBookings(now time.Time, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE status = 'pending' AND hold_expires_at < $1
		ORDER BY hold_expires_at ASC
		LIMIT $2`, bookingColumns)

	if err := r.db.Select(&bookings, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get expired pending bookings: %w", err)
	}
	return bookings, nil
}

// GetActiveBookingsByTrip returns pending and confirmed bookings for a trip,
// used to rebuild the seat inventory on startup
func (r *BookingRepository) GetActiveBookingsByTrip(tripID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE trip_id = $1 AND status IN ('pending', 'confirmed')
		ORDER BY created_at ASC`, bookingColumns)

	if err := r.db.Select(&bookings, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to get active bookings for trip: %w", err)
	}
	return bookings, nil
}

// ============================================================================
// ANOMALY LOG OPERATIONS
// ============================================================================

// RecordAnomaly appends a reconciliation anomaly to the audit log
func (r *BookingRepository) RecordAnomaly(anomaly *models.Anomaly) error {
	query := `
		INSERT INTO booking_anomalies (
			kind, booking_id, payment_reference, detail, payload, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		anomaly.Kind, anomaly.BookingID, anomaly.PaymentReference,
		anomaly.Detail, anomaly.Payload, anomaly.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record anomaly: %w", err)
	}
	return nil
}

// ListRecentAnomalies returns the most recent anomalies for operator review
func (r *BookingRepository) ListRecentAnomalies(limit int) ([]*models.Anomaly, error) {
	var anomalies []*models.Anomaly
	query := `
		SELECT kind, booking_id, payment_reference, detail, payload, occurred_at
		FROM booking_anomalies
		ORDER BY occurred_at DESC
		LIMIT $1`

	if err := r.db.Select(&anomalies, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list anomalies: %w", err)
	}
	return anomalies, nil
}
