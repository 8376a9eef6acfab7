package models

import (
	"fmt"
	"time"
)

// Trip represents a scheduled trip with a fixed seat layout. Trips are owned
// by scheduling data outside this service and are read-only here; the layout
// is immutable once seats are sold against it.
type Trip struct {
	ID                string    `json:"id" db:"id"`
	RouteName         string    `json:"route_name" db:"route_name"`
	OriginStop        string    `json:"origin_stop" db:"origin_stop"`
	DestinationStop   string    `json:"destination_stop" db:"destination_stop"`
	DepartureDatetime time.Time `json:"departure_datetime" db:"departure_datetime"`
	Floors            int       `json:"floors" db:"floors"`
	Rows              int       `json:"rows" db:"rows"`
	Cols              int       `json:"cols" db:"cols"`
	SeatPrice         float64   `json:"seat_price" db:"seat_price"`
	Currency          string    `json:"currency" db:"currency"`
}

// SeatCodes enumerates every seat code in the trip's layout, floor by floor,
// row by row.
func (t *Trip) SeatCodes() []string {
	codes := make([]string, 0, t.Floors*t.Rows*t.Cols)
	for f := 0; f < t.Floors; f++ {
		for r := 0; r < t.Rows; r++ {
			for c := 0; c < t.Cols; c++ {
				codes = append(codes, SeatCode(f, r, c))
			}
		}
	}
	return codes
}

// ScheduleSummary renders a short human-readable description of the trip for
// ticket presentation.
func (t *Trip) ScheduleSummary() string {
	return fmt.Sprintf("%s | %s to %s | %s",
		t.RouteName, t.OriginStop, t.DestinationStop,
		t.DepartureDatetime.Format("Mon 02 Jan 2006 15:04"))
}
