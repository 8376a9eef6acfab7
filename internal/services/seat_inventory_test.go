package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserveHoldsAllSeats(t *testing.T) {
	f := newFixture(testTrip())
	bookingID := uuid.New()

	err := f.inventory.TryReserve("trip-123", []string{"A11", "A12"}, bookingID)
	require.NoError(t, err)

	assert.Equal(t, models.SeatStatusHeld, f.seatStatus("A11"))
	assert.Equal(t, models.SeatStatusHeld, f.seatStatus("A12"))
	assert.Equal(t, models.SeatStatusFree, f.seatStatus("A21"))
}

func TestTryReserveAllOrNothing(t *testing.T) {
	f := newFixture(testTrip())

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A12"}, uuid.New()))

	// A11 is free and A12 is held: the request must fail without touching A11.
	err := f.inventory.TryReserve("trip-123", []string{"A11", "A12"}, uuid.New())
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "trip-123", conflict.TripID)
	assert.Equal(t, []string{"A12"}, conflict.Seats)

	assert.Equal(t, models.SeatStatusFree, f.seatStatus("A11"))
}

func TestTryReserveListsEveryUnavailableSeat(t *testing.T) {
	f := newFixture(testTrip())

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A11", "A12"}, uuid.New()))

	err := f.inventory.TryReserve("trip-123", []string{"A11", "A12", "A21"}, uuid.New())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ElementsMatch(t, []string{"A11", "A12"}, conflict.Seats)
}

func TestTryReserveUnknownSeat(t *testing.T) {
	f := newFixture(testTrip())

	err := f.inventory.TryReserve("trip-123", []string{"Z99"}, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestTryReserveUnknownTrip(t *testing.T) {
	f := newFixture(testTrip())

	err := f.inventory.TryReserve("trip-999", []string{"A11"}, uuid.New())
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestReleaseIsIdempotent(t *testing.T) {
	f := newFixture(testTrip())
	bookingID := uuid.New()

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A11"}, bookingID))
	require.NoError(t, f.inventory.Release("trip-123", []string{"A11"}))
	assert.Equal(t, models.SeatStatusFree, f.seatStatus("A11"))

	// Releasing again is a no-op.
	require.NoError(t, f.inventory.Release("trip-123", []string{"A11"}))
	assert.Equal(t, models.SeatStatusFree, f.seatStatus("A11"))
}

func TestReleaseLeavesSoldSeatsAlone(t *testing.T) {
	f := newFixture(testTrip())
	bookingID := uuid.New()

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A11"}, bookingID))
	require.NoError(t, f.inventory.MarkSold("trip-123", []string{"A11"}, bookingID))

	require.NoError(t, f.inventory.Release("trip-123", []string{"A11"}))
	assert.Equal(t, models.SeatStatusSold, f.seatStatus("A11"))
}

func TestMarkSoldRequiresOwnHold(t *testing.T) {
	f := newFixture(testTrip())
	owner := uuid.New()
	other := uuid.New()

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A11"}, owner))

	err := f.inventory.MarkSold("trip-123", []string{"A11"}, other)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.SeatStatusHeld, f.seatStatus("A11"))

	require.NoError(t, f.inventory.MarkSold("trip-123", []string{"A11"}, owner))
	assert.Equal(t, models.SeatStatusSold, f.seatStatus("A11"))
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	f := newFixture(testTrip())

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.inventory.TryReserve("trip-123", []string{"A11", "A12"}, uuid.New())
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var conflict *ConflictError
			assert.ErrorAs(t, err, &conflict)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestConcurrentFirstTouchSharesOneSeatSet(t *testing.T) {
	f := newFixture(testTrip())

	// All six seats are reserved concurrently against a trip nobody has
	// touched yet, so the goroutines race to materialise the seat set.
	seatCodes := []string{"A11", "A12", "A21", "A22", "A31", "A32"}
	var wg sync.WaitGroup
	errs := make(chan error, len(seatCodes))
	for _, code := range seatCodes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			errs <- f.inventory.TryReserve("trip-123", []string{code}, uuid.New())
		}(code)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	// Every hold landed in the same seat set, whichever goroutine won.
	for _, code := range seatCodes {
		assert.Equal(t, models.SeatStatusHeld, f.seatStatus(code))
	}

	f.inventory.mu.Lock()
	defer f.inventory.mu.Unlock()
	assert.Len(t, f.inventory.state, 1)
}

func TestSeatMapReflectsOccupancy(t *testing.T) {
	f := newFixture(testTrip())
	bookingID := uuid.New()

	require.NoError(t, f.inventory.TryReserve("trip-123", []string{"A11"}, bookingID))

	view, err := f.inventory.SeatMap("trip-123")
	require.NoError(t, err)
	assert.Equal(t, "trip-123", view.TripID)
	assert.Len(t, view.Seats, 6)

	byCode := make(map[string]models.SeatMapEntry)
	for _, entry := range view.Seats {
		byCode[entry.Code] = entry
	}
	assert.False(t, byCode["A11"].Available)
	assert.True(t, byCode["A12"].Available)
}
