package services

import (
	"fmt"
	"strings"

	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/pkg/notify"
)

// NotificationService renders ticket notifications and hands them to the
// dispatcher. It implements Notifier for the ticket issuer.
type NotificationService struct {
	sender        notify.Sender
	ticketBaseURL string // page that renders the scannable code from the artifact
}

// NewNotificationService creates the notification service.
func NewNotificationService(sender notify.Sender, ticketBaseURL string) *NotificationService {
	return &NotificationService{sender: sender, ticketBaseURL: ticketBaseURL}
}

// SendTicket delivers the confirmed booking's ticket to the customer.
func (n *NotificationService) SendTicket(contact models.CustomerContact, tk *models.Ticket) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", contact.FullName)
	fmt.Fprintf(&body, "Your booking %s is confirmed.\n", tk.LookupCode)
	fmt.Fprintf(&body, "%s\n", tk.ScheduleSummary)
	fmt.Fprintf(&body, "Seats: %s\n", strings.Join(tk.SeatCodes, ", "))
	fmt.Fprintf(&body, "Paid: %s\n\n", tk.FormattedPrice)
	fmt.Fprintf(&body, "Your ticket: %s/%s\n", strings.TrimRight(n.ticketBaseURL, "/"), tk.Artifact)
	fmt.Fprintf(&body, "Show the code on that page when boarding.\n")

	msg := notify.Message{
		Recipient: contact.Email,
		Subject:   fmt.Sprintf("Ticket %s confirmed", tk.LookupCode),
		Body:      body.String(),
	}

	return n.sender.Send(msg)
}
