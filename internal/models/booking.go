package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether the status is one of the four terminal states.
// A booking in a terminal state never changes status again.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusFailed, BookingStatusExpired, BookingStatusCancelled:
		return true
	}
	return false
}

// CustomerContact is the contact a ticket is issued to.
type CustomerContact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Booking aggregates the held seats, payment correlation key and customer
// contact for one checkout. The verification token is the private secret the
// scannable ticket artifact encodes; the lookup code is the public,
// shareable identifier. Status is mutated only by the lifecycle state
// machine.
type Booking struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	TripID            string        `json:"trip_id" db:"trip_id"`
	LookupCode        string        `json:"lookup_code" db:"lookup_code"`
	VerificationToken string        `json:"-" db:"verification_token"`
	PaymentReference  string        `json:"payment_reference" db:"payment_reference"`
	PaymentURL        string        `json:"payment_url,omitempty" db:"payment_url"`
	SeatCodes         StringArray   `json:"seat_codes" db:"seat_codes"`
	CustomerName      string        `json:"customer_name" db:"customer_name"`
	CustomerEmail     string        `json:"customer_email" db:"customer_email"`
	CustomerPhone     *string       `json:"customer_phone,omitempty" db:"customer_phone"`
	TotalAmount       float64       `json:"total_amount" db:"total_amount"`
	Currency          string        `json:"currency" db:"currency"`
	Status            BookingStatus `json:"status" db:"status"`
	HoldExpiresAt     time.Time     `json:"hold_expires_at" db:"hold_expires_at"`
	ConfirmedAt       *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// Contact returns the booking's customer contact.
func (b *Booking) Contact() CustomerContact {
	contact := CustomerContact{FullName: b.CustomerName, Email: b.CustomerEmail}
	if b.CustomerPhone != nil {
		contact.Phone = *b.CustomerPhone
	}
	return contact
}

// HoldExpired reports whether the booking's seat hold has lapsed at the
// given instant. Only meaningful while the booking is pending.
func (b *Booking) HoldExpired(now time.Time) bool {
	return now.After(b.HoldExpiresAt)
}

// CreateBookingRequest is the reservation request body.
type CreateBookingRequest struct {
	TripID        string   `json:"trip_id" binding:"required"`
	SeatCodes     []string `json:"seat_codes" binding:"required,min=1"`
	CustomerName  string   `json:"customer_name" binding:"required"`
	CustomerEmail string   `json:"customer_email" binding:"required"`
	CustomerPhone *string  `json:"customer_phone,omitempty"`
}

// Validate validates the reservation request beyond binding tags.
func (r *CreateBookingRequest) Validate() error {
	seen := make(map[string]bool, len(r.SeatCodes))
	for _, code := range r.SeatCodes {
		if strings.TrimSpace(code) == "" {
			return errors.New("seat_codes must not contain empty codes")
		}
		if seen[code] {
			return errors.New("seat_codes must not contain duplicates")
		}
		seen[code] = true
	}
	return nil
}

// BookingResponse is the reservation response returned to the client. The
// verification token is never included; the payment URL points the customer
// at the gateway checkout.
type BookingResponse struct {
	BookingID        uuid.UUID     `json:"booking_id"`
	LookupCode       string        `json:"lookup_code"`
	Status           BookingStatus `json:"status"`
	SeatCodes        []string      `json:"seat_codes"`
	TotalAmount      float64       `json:"total_amount"`
	Currency         string        `json:"currency"`
	PaymentReference string        `json:"payment_reference"`
	PaymentURL       string        `json:"payment_url,omitempty"`
	HoldExpiresAt    time.Time     `json:"hold_expires_at"`
	TTLSeconds       int           `json:"ttl_seconds"`
}
