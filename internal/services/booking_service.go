package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// BookingConfig holds tunables for the reservation flow.
type BookingConfig struct {
	HoldTTL         time.Duration // how long seats stay held awaiting payment
	SweepInterval   time.Duration // how often the expiry sweeper runs
	DefaultCurrency string
}

// DefaultBookingConfig returns defaults suitable for development.
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		HoldTTL:         15 * time.Minute,
		SweepInterval:   time.Minute,
		DefaultCurrency: "LKR",
	}
}

// BookingService is the entry point collaborators call: it reserves seats,
// looks bookings up and cancels them. Payment events go through the
// PaymentReconciler instead.
type BookingService struct {
	trips     TripStore
	bookings  BookingStore
	holds     *HoldManager
	lifecycle *BookingLifecycle
	inventory *SeatInventory
	gateway   PaymentGateway // nil in development: local references, placeholder URLs
	clock     Clock
	config    BookingConfig
	logger    *logrus.Logger
}

// NewBookingService creates the reservation facade.
func NewBookingService(
	trips TripStore,
	bookings BookingStore,
	holds *HoldManager,
	lifecycle *BookingLifecycle,
	inventory *SeatInventory,
	gateway PaymentGateway,
	clock Clock,
	config BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		trips:     trips,
		bookings:  bookings,
		holds:     holds,
		lifecycle: lifecycle,
		inventory: inventory,
		gateway:   gateway,
		clock:     clock,
		config:    config,
		logger:    logger,
	}
}

// Reserve holds the requested seats and creates a pending booking carrying
// the payment reference used to correlate the provider's webhook later. On
// any failure after the hold is granted, the hold is released before
// returning: an abandoned request never strands seats past its TTL.
func (s *BookingService) Reserve(req *models.CreateBookingRequest) (*models.BookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	trip, err := s.trips.GetTripByID(req.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip: %w", err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if trip.DepartureDatetime.Before(s.clock.Now()) {
		return nil, fmt.Errorf("trip %s has already departed", trip.ID)
	}

	bookingID := uuid.New()

	hold, err := s.holds.CreateHold(bookingID, req.TripID, req.SeatCodes, s.config.HoldTTL)
	if err != nil {
		return nil, err
	}

	booking, err := s.buildBooking(bookingID, trip, req, hold)
	if err != nil {
		s.releaseAfterFailure(hold)
		return nil, err
	}

	if err := s.bookings.CreateBooking(booking); err != nil {
		s.releaseAfterFailure(hold)
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"lookup_code":       booking.LookupCode,
		"trip_id":           booking.TripID,
		"seats":             req.SeatCodes,
		"total_amount":      booking.TotalAmount,
		"payment_reference": booking.PaymentReference,
		"hold_expires_at":   booking.HoldExpiresAt,
	}).Info("Booking created with seat hold")

	return s.buildResponse(booking), nil
}

// buildBooking assembles the pending booking, including the payment
// checkout with the provider when a gateway is configured. The provider's
// reference is assigned here, at creation, and persisted on the booking as
// the sole correlation key for webhooks.
func (s *BookingService) buildBooking(bookingID uuid.UUID, trip *models.Trip, req *models.CreateBookingRequest, hold *Hold) (*models.Booking, error) {
	lookupCode, err := utils.GenerateLookupCode()
	if err != nil {
		return nil, err
	}
	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return nil, err
	}

	currency := trip.Currency
	if currency == "" {
		currency = s.config.DefaultCurrency
	}
	total := trip.SeatPrice * float64(len(req.SeatCodes))

	booking := &models.Booking{
		ID:                bookingID,
		TripID:            trip.ID,
		LookupCode:        lookupCode,
		VerificationToken: token,
		SeatCodes:         models.StringArray(req.SeatCodes),
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		TotalAmount:       total,
		Currency:          currency,
		Status:            models.BookingStatusPending,
		HoldExpiresAt:     hold.ExpiresAt,
	}

	if s.gateway != nil {
		checkout, err := s.gateway.CreateCheckout(&CheckoutParams{
			InvoiceID:     lookupCode,
			Amount:        fmt.Sprintf("%.2f", total),
			Currency:      currency,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			Description:   fmt.Sprintf("Seat reservation %s", lookupCode),
		})
		if err != nil {
			return nil, fmt.Errorf("payment gateway error: %w", err)
		}
		booking.PaymentReference = checkout.Reference
		booking.PaymentURL = checkout.PaymentURL
	} else {
		// Development mode: local reference, placeholder checkout URL.
		booking.PaymentReference = "PAY-" + strings.ToUpper(uuid.NewString()[:13])
		booking.PaymentURL = fmt.Sprintf("https://checkout.example.test/pay/%s", booking.PaymentReference)
	}

	return booking, nil
}

func (s *BookingService) releaseAfterFailure(hold *Hold) {
	if err := s.holds.ReleaseHold(hold); err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).Error("Failed to release hold after reservation failure")
	}
}

// GetBookingByLookupCode returns the booking for a public lookup code, in
// whatever status it is in. A pending booking read past its hold expiry is
// expired on demand instead of waiting for the next sweep.
func (s *BookingService) GetBookingByLookupCode(code string) (*models.Booking, error) {
	booking, err := s.bookings.GetBookingByLookupCode(code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.Status == models.BookingStatusPending && booking.HoldExpired(s.clock.Now()) {
		expired, _, err := s.lifecycle.Transition(booking.ID, models.BookingStatusExpired)
		if err != nil {
			return nil, fmt.Errorf("failed to expire stale booking: %w", err)
		}
		return expired, nil
	}

	return booking, nil
}

// Cancel drives the explicit cancelled transition. Cancelling a booking
// already in a terminal state is a no-op returning the recorded status.
func (s *BookingService) Cancel(bookingID uuid.UUID) (*models.Booking, error) {
	booking, applied, err := s.lifecycle.Transition(bookingID, models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"status":     booking.Status,
		}).Info("Cancel requested on terminal booking; no-op")
	}
	return booking, nil
}

// SeatMap returns the trip's current seat availability.
func (s *BookingService) SeatMap(tripID string) (*models.SeatMapView, error) {
	return s.inventory.SeatMap(tripID)
}

func (s *BookingService) buildResponse(booking *models.Booking) *models.BookingResponse {
	ttl := int(booking.HoldExpiresAt.Sub(s.clock.Now()).Seconds())
	if ttl < 0 {
		ttl = 0
	}
	return &models.BookingResponse{
		BookingID:        booking.ID,
		LookupCode:       booking.LookupCode,
		Status:           booking.Status,
		SeatCodes:        booking.SeatCodes,
		TotalAmount:      booking.TotalAmount,
		Currency:         booking.Currency,
		PaymentReference: booking.PaymentReference,
		PaymentURL:       booking.PaymentURL,
		HoldExpiresAt:    booking.HoldExpiresAt,
		TTLSeconds:       ttl,
	}
}
