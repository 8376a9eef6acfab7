package services

import (
	"fmt"

	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/pkg/ticket"
	"github.com/sirupsen/logrus"
)

// Notifier is the external dispatcher a ticket is handed to. Delivery and
// retry are its problem, not this service's.
type Notifier interface {
	SendTicket(contact models.CustomerContact, tk *models.Ticket) error
}

// TicketIssuer derives ticket presentation data for a confirmed booking and
// hands it to the notification dispatcher. A delivery failure never rolls
// back the confirmation: the seats are sold either way.
type TicketIssuer struct {
	trips    TripStore
	codec    *ticket.Codec
	notifier Notifier
	logger   *logrus.Logger
}

// NewTicketIssuer creates a ticket issuer.
func NewTicketIssuer(trips TripStore, codec *ticket.Codec, notifier Notifier, logger *logrus.Logger) *TicketIssuer {
	return &TicketIssuer{trips: trips, codec: codec, notifier: notifier, logger: logger}
}

// Issue builds the ticket for a confirmed booking: seat codes, schedule
// summary, formatted price and the signed scannable artifact encoding the
// booking's verification token.
func (i *TicketIssuer) Issue(booking *models.Booking) (*models.Ticket, error) {
	trip, err := i.trips.GetTripByID(booking.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip for ticket: %w", err)
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	artifact, err := i.codec.Encode(booking.VerificationToken, booking.LookupCode)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket artifact: %w", err)
	}

	return &models.Ticket{
		LookupCode:      booking.LookupCode,
		SeatCodes:       booking.SeatCodes,
		ScheduleSummary: trip.ScheduleSummary(),
		FormattedPrice:  fmt.Sprintf("%s %.2f", booking.Currency, booking.TotalAmount),
		Artifact:        artifact,
	}, nil
}

// IssueAndDispatch issues the ticket and sends it to the customer. Returns
// the ticket even when dispatch fails; the delivery error is reported via a
// NotificationDeliveryError so the surrounding system can retry.
func (i *TicketIssuer) IssueAndDispatch(booking *models.Booking) (*models.Ticket, error) {
	tk, err := i.Issue(booking)
	if err != nil {
		return nil, err
	}

	if err := i.notifier.SendTicket(booking.Contact(), tk); err != nil {
		deliveryErr := &NotificationDeliveryError{BookingID: booking.ID, Err: err}
		i.logger.WithError(deliveryErr).WithFields(logrus.Fields{
			"booking_id":  booking.ID,
			"lookup_code": booking.LookupCode,
		}).Error("Ticket issued but delivery failed")
		return tk, deliveryErr
	}

	i.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"lookup_code": booking.LookupCode,
		"recipient":   booking.CustomerEmail,
	}).Info("Ticket issued and dispatched")

	return tk, nil
}
