package models

// Ticket is the presentation data issued for a confirmed booking. The
// artifact is the signed scannable payload; everything else is display
// material for the notification.
type Ticket struct {
	LookupCode      string   `json:"lookup_code"`
	SeatCodes       []string `json:"seat_codes"`
	ScheduleSummary string   `json:"schedule_summary"`
	FormattedPrice  string   `json:"formatted_price"`
	Artifact        string   `json:"artifact"`
}
