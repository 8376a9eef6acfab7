package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/internal/services"
	"github.com/ridelanka/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles seat reservation and booking lookup endpoints
type BookingHandler struct {
	bookingService   *services.BookingService
	contactValidator *validator.ContactValidator
	logger           *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService:   bookingService,
		contactValidator: validator.NewContactValidator(),
		logger:           logger,
	}
}

// ============================================================================
// CREATE BOOKING - POST /api/v1/bookings
// ============================================================================

// CreateBooking reserves seats and creates a pending booking with a TTL hold
// @Summary Reserve seats
// @Description Atomically holds the requested seats and opens a payment checkout
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Reservation request"
// @Success 201 {object} models.BookingResponse
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Trip not found"
// @Failure 409 {object} map[string]interface{} "Seats unavailable"
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	email, err := h.contactValidator.ValidateEmail(req.CustomerEmail)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.CustomerEmail = email

	if req.CustomerPhone != nil && *req.CustomerPhone != "" {
		phone, err := h.contactValidator.ValidatePhone(*req.CustomerPhone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.CustomerPhone = &phone
	}

	response, err := h.bookingService.Reserve(&req)
	if err != nil {
		var conflict *services.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":       "seats_unavailable",
				"trip_id":     conflict.TripID,
				"unavailable": conflict.Seats,
				"message":     "One or more requested seats are not available",
			})
			return
		}
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}

		h.logger.WithError(err).Error("Failed to create booking")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ============================================================================
// GET BOOKING - GET /api/v1/bookings/:lookupCode
// ============================================================================

// GetBooking returns the booking for a public lookup code
// @Summary Look up a booking
// @Description Returns the booking in whatever status it currently holds
// @Tags Bookings
// @Produce json
// @Param lookupCode path string true "Public lookup code"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{lookupCode} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	code := c.Param("lookupCode")

	booking, err := h.bookingService.GetBookingByLookupCode(code)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).WithField("lookup_code", code).Error("Failed to look up booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ============================================================================
// CANCEL BOOKING - POST /api/v1/bookings/:id/cancel
// ============================================================================

// CancelBooking cancels a pending booking and releases its held seats
// @Summary Cancel a booking
// @Description Accepts the booking ID or the public lookup code.
// @Description Cancelling a booking already in a terminal state is a no-op
// @Tags Bookings
// @Produce json
// @Param lookupCode path string true "Booking ID or lookup code"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{lookupCode}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ref := c.Param("lookupCode")

	bookingID, err := uuid.Parse(ref)
	if err != nil {
		// Not a UUID: treat it as a lookup code.
		existing, lookupErr := h.bookingService.GetBookingByLookupCode(ref)
		if lookupErr != nil {
			if errors.Is(lookupErr, services.ErrBookingNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			h.logger.WithError(lookupErr).WithField("lookup_code", ref).Error("Failed to resolve booking for cancel")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
			return
		}
		bookingID = existing.ID
	}

	booking, err := h.bookingService.Cancel(bookingID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to cancel booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ============================================================================
// TRIP SEAT MAP - GET /api/v1/trips/:tripId/seats
// ============================================================================

// GetTripSeatMap returns the current seat availability for a trip
// @Summary Trip seat map
// @Description Per-seat availability: free, held or sold
// @Tags Trips
// @Produce json
// @Param tripId path string true "Trip ID"
// @Success 200 {object} models.SeatMapView
// @Failure 404 {object} map[string]interface{} "Trip not found"
// @Router /trips/{tripId}/seats [get]
func (h *BookingHandler) GetTripSeatMap(c *gin.Context) {
	tripID := c.Param("tripId")

	seatMap, err := h.bookingService.SeatMap(tripID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		h.logger.WithError(err).WithField("trip_id", tripID).Error("Failed to load seat map")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load seat map"})
		return
	}

	c.JSON(http.StatusOK, seatMap)
}
