package models

import (
	"encoding/json"
	"time"
)

// PaymentOutcome is the closed set of outcomes a payment event can carry.
type PaymentOutcome string

const (
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
)

// PaymentEvent is one provider notification after signature verification.
// Delivery is at-least-once and may arrive out of order; the reference is
// the sole key correlating the event back to its booking.
type PaymentEvent struct {
	Reference  string          `json:"reference"`
	Outcome    PaymentOutcome  `json:"outcome"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
}

// Anomaly is a business-level inconsistency that must be surfaced for
// manual reconciliation rather than auto-resolved.
type Anomaly struct {
	Kind             string    `json:"kind" db:"kind"`
	BookingID        string    `json:"booking_id" db:"booking_id"`
	PaymentReference string    `json:"payment_reference" db:"payment_reference"`
	Detail           string    `json:"detail" db:"detail"`
	Payload          []byte    `json:"-" db:"payload"`
	OccurredAt       time.Time `json:"occurred_at" db:"occurred_at"`
}
