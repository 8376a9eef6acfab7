package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SeatStatus represents the occupancy state of a trip seat
type SeatStatus string

const (
	SeatStatusFree SeatStatus = "free"
	SeatStatusHeld SeatStatus = "held"
	SeatStatusSold SeatStatus = "sold"
)

// Seat represents a single seat on a trip, identified by its coordinate code.
// A seat is held or sold for at most one booking at a time.
type Seat struct {
	Code      string     `json:"code" db:"code"`
	Floor     int        `json:"floor" db:"floor"`
	Row       int        `json:"row" db:"row"`
	Col       int        `json:"col" db:"col"`
	Status    SeatStatus `json:"status" db:"status"`
	BookingID *uuid.UUID `json:"booking_id,omitempty" db:"booking_id"`
}

// SeatCode derives the deterministic seat code from (floor, row, col)
// coordinates. The floor letter is base36(floor+10) uppercased, so floor 0
// becomes "A" and floor 1 becomes "B". Rows and columns are 1-based:
// (0,0,0) -> "A11", (1,2,3) -> "B34".
func SeatCode(floor, row, col int) string {
	letter := strings.ToUpper(strconv.FormatInt(int64(floor+10), 36))
	return fmt.Sprintf("%s%d%d", letter, row+1, col+1)
}

// SeatMapView is the read-only seat map returned to clients picking seats.
type SeatMapView struct {
	TripID string         `json:"trip_id"`
	Seats  []SeatMapEntry `json:"seats"`
}

// SeatMapEntry is a single seat in the seat map, without booking identity.
type SeatMapEntry struct {
	Code      string `json:"code"`
	Floor     int    `json:"floor"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Available bool   `json:"available"`
}
