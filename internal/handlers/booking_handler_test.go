package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridelanka/booking-backend/internal/database"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/internal/services"
	"github.com/ridelanka/booking-backend/pkg/ticket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router     *gin.Engine
	store      *database.MemoryStore
	reconciler *services.PaymentReconciler
}

type noopNotifier struct{}

func (noopNotifier) SendTicket(contact models.CustomerContact, tk *models.Ticket) error { return nil }

func logrusDiscard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrusDiscard()

	store := database.NewMemoryStore()
	store.AddTrip(&models.Trip{
		ID:                "trip-123",
		RouteName:         "Route 1 Express",
		OriginStop:        "Colombo Fort",
		DestinationStop:   "Kandy",
		DepartureDatetime: time.Now().Add(24 * time.Hour),
		Floors:            1,
		Rows:              3,
		Cols:              2,
		SeatPrice:         1500,
		Currency:          "LKR",
	})

	clock := services.SystemClock()
	inventory := services.NewSeatInventory(store, logger)
	holds := services.NewHoldManager(inventory, clock, logger)
	lifecycle := services.NewBookingLifecycle(store, holds, clock, logger)
	codec := ticket.NewCodec("test-secret", "booking-test")
	issuer := services.NewTicketIssuer(store, codec, noopNotifier{}, logger)
	reconciler := services.NewPaymentReconciler(store, lifecycle, issuer, store, clock, logger)
	service := services.NewBookingService(
		store, store, holds, lifecycle, inventory,
		nil, clock, services.DefaultBookingConfig(), logger,
	)

	handler := NewBookingHandler(service, logger)

	router := gin.New()
	router.POST("/api/v1/bookings", handler.CreateBooking)
	router.GET("/api/v1/bookings/:lookupCode", handler.GetBooking)
	router.POST("/api/v1/bookings/:lookupCode/cancel", handler.CancelBooking)
	router.GET("/api/v1/trips/:tripId/seats", handler.GetTripSeatMap)

	return &testEnv{router: router, store: store, reconciler: reconciler}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) createBooking(t *testing.T, seats ...string) models.BookingResponse {
	t.Helper()
	recorder := e.request(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"trip_id":        "trip-123",
		"seat_codes":     seats,
		"customer_name":  "Nimal Perera",
		"customer_email": "nimal@example.com",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response models.BookingResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestCreateBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	response := env.createBooking(t, "A11", "A12")
	assert.Equal(t, models.BookingStatusPending, response.Status)
	assert.Equal(t, []string{"A11", "A12"}, response.SeatCodes)
	assert.Equal(t, float64(3000), response.TotalAmount)
	assert.NotEmpty(t, response.LookupCode)
	assert.NotEmpty(t, response.PaymentReference)
	assert.Greater(t, response.TTLSeconds, 0)
}

func TestCreateBookingConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createBooking(t, "A11")

	recorder := env.request(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"trip_id":        "trip-123",
		"seat_codes":     []string{"A11", "A12"},
		"customer_name":  "Kamala Silva",
		"customer_email": "kamala@example.com",
	})
	require.Equal(t, http.StatusConflict, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "seats_unavailable", body["error"])
	assert.Equal(t, []interface{}{"A11"}, body["unavailable"])
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing seats", gin.H{"trip_id": "trip-123", "customer_name": "X", "customer_email": "x@example.com"}},
		{"bad email", gin.H{"trip_id": "trip-123", "seat_codes": []string{"A11"}, "customer_name": "X", "customer_email": "nope"}},
		{"bad phone", gin.H{"trip_id": "trip-123", "seat_codes": []string{"A11"}, "customer_name": "X", "customer_email": "x@example.com", "customer_phone": "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := env.request(t, http.MethodPost, "/api/v1/bookings", tt.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

func TestCreateBookingUnknownTrip(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, http.MethodPost, "/api/v1/bookings", gin.H{
		"trip_id":        "trip-999",
		"seat_codes":     []string{"A11"},
		"customer_name":  "Nimal Perera",
		"customer_email": "nimal@example.com",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking(t, "A11")

	recorder := env.request(t, http.MethodGet, "/api/v1/bookings/"+created.LookupCode, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &booking))
	assert.Equal(t, created.BookingID, booking.ID)
	assert.Equal(t, models.BookingStatusPending, booking.Status)

	// The verification token never appears in the response.
	assert.NotContains(t, recorder.Body.String(), "verification_token")
}

func TestGetBookingNotFound(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, http.MethodGet, "/api/v1/bookings/BK-MISSING1", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking(t, "A11")

	recorder := env.request(t, http.MethodPost, "/api/v1/bookings/"+created.BookingID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &booking))
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)

	// The seat is free again for the next customer.
	next := env.createBooking(t, "A11")
	assert.NotEqual(t, created.BookingID, next.BookingID)
}

func TestCancelBookingByLookupCode(t *testing.T) {
	env := newTestEnv(t)
	created := env.createBooking(t, "A11")

	recorder := env.request(t, http.MethodPost, "/api/v1/bookings/"+created.LookupCode+"/cancel", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var booking models.Booking
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &booking))
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)
}

func TestSeatMapEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createBooking(t, "A11")

	recorder := env.request(t, http.MethodGet, "/api/v1/trips/trip-123/seats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var view models.SeatMapView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &view))
	assert.Len(t, view.Seats, 6)

	for _, seat := range view.Seats {
		if seat.Code == "A11" {
			assert.False(t, seat.Available)
		} else {
			assert.True(t, seat.Available)
		}
	}
}

func TestSeatMapUnknownTrip(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, http.MethodGet, "/api/v1/trips/trip-999/seats", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
