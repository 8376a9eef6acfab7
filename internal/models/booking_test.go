package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.True(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusFailed.IsTerminal())
	assert.True(t, BookingStatusExpired.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
}

func TestHoldExpiredBoundary(t *testing.T) {
	expiry := time.Date(2026, 3, 14, 9, 15, 0, 0, time.UTC)
	booking := &Booking{HoldExpiresAt: expiry}

	assert.False(t, booking.HoldExpired(expiry.Add(-time.Second)))
	// Exactly at the expiry instant the hold is still honoured.
	assert.False(t, booking.HoldExpired(expiry))
	assert.True(t, booking.HoldExpired(expiry.Add(time.Nanosecond)))
}

func TestCreateBookingRequestValidate(t *testing.T) {
	valid := &CreateBookingRequest{
		TripID:        "trip-123",
		SeatCodes:     []string{"A11", "A12"},
		CustomerName:  "Nimal Perera",
		CustomerEmail: "nimal@example.com",
	}
	assert.NoError(t, valid.Validate())

	duplicates := &CreateBookingRequest{
		TripID:    "trip-123",
		SeatCodes: []string{"A11", "A11"},
	}
	assert.Error(t, duplicates.Validate())

	blank := &CreateBookingRequest{
		TripID:    "trip-123",
		SeatCodes: []string{"A11", "  "},
	}
	assert.Error(t, blank.Validate())
}
