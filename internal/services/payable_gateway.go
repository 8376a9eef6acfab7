package services

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ridelanka/booking-backend/internal/config"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// payableEnvironmentURLs maps environment names to IPG endpoint URLs.
var payableEnvironmentURLs = map[string]string{
	"sandbox":    "https://sandboxipgpayment.payable.lk/ipg/sandbox",
	"production": "https://ipgpayment.payable.lk/ipg/pro",
}

// PayableGateway integrates with the PAYable IPG. It implements
// PaymentGateway for checkout creation and verifies incoming webhook
// payloads into PaymentEvents before they reach the reconciler.
type PayableGateway struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// NewPayableGateway creates a PAYable gateway client.
func NewPayableGateway(cfg *config.PaymentConfig, logger *logrus.Logger) *PayableGateway {
	return &PayableGateway{
		config: cfg,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether merchant credentials are present.
func (g *PayableGateway) IsConfigured() bool {
	return g.config.MerchantKey != "" && g.config.MerchantToken != ""
}

// payableCheckoutRequest is the wire request for opening a checkout. The
// merchant token is never sent; it only feeds the check value.
type payableCheckoutRequest struct {
	MerchantKey      string `json:"merchantKey"`
	ReturnURL        string `json:"returnUrl"`
	WebhookURL       string `json:"webhookUrl,omitempty"`
	PaymentType      int    `json:"paymentType"` // 1 = one-time
	InvoiceID        string `json:"invoiceId"`
	Amount           string `json:"amount"`
	CurrencyCode     string `json:"currencyCode"`
	OrderDescription string `json:"orderDescription,omitempty"`
	CustomerName     string `json:"customerName"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerPhone    string `json:"customerMobilePhone,omitempty"`
	CheckValue       string `json:"checkValue"`
}

type payableCheckoutResponse struct {
	Status      string `json:"status"`
	UID         string `json:"uid"`
	PaymentPage string `json:"paymentPage"`
	Message     string `json:"message,omitempty"`
}

// payableWebhookPayload is the provider's webhook body. The UID matches the
// one returned at checkout creation and is the correlation key.
type payableWebhookPayload struct {
	UID           string `json:"uid"`
	InvoiceID     string `json:"invoiceId"`
	Amount        string `json:"amount"`
	CurrencyCode  string `json:"currencyCode"`
	PaymentStatus string `json:"paymentStatus"` // SUCCESS, FAILED, CANCELLED
	TransactionID string `json:"transactionId,omitempty"`
}

// checkValue derives the SHA-512 request signature PAYable expects:
// hash1 = SHA512(merchantToken), then
// SHA512("merchantKey|invoiceId|amount|currency|hash1"), both uppercase hex.
func (g *PayableGateway) checkValue(invoiceID, amount, currency string) string {
	hash1 := sha512.Sum512([]byte(g.config.MerchantToken))
	inner := strings.ToUpper(hex.EncodeToString(hash1[:]))
	data := fmt.Sprintf("%s|%s|%s|%s|%s", g.config.MerchantKey, invoiceID, amount, currency, inner)
	hash2 := sha512.Sum512([]byte(data))
	return strings.ToUpper(hex.EncodeToString(hash2[:]))
}

// CreateCheckout opens a checkout with PAYable and returns the provider's
// UID as the booking's payment reference.
func (g *PayableGateway) CreateCheckout(params *CheckoutParams) (*Checkout, error) {
	if !g.IsConfigured() {
		return nil, fmt.Errorf("payment gateway not configured: missing merchant credentials")
	}

	endpoint, ok := payableEnvironmentURLs[g.config.Environment]
	if !ok {
		endpoint = payableEnvironmentURLs["sandbox"]
	}

	request := &payableCheckoutRequest{
		MerchantKey:      g.config.MerchantKey,
		ReturnURL:        g.config.ReturnURL,
		WebhookURL:       g.config.WebhookURL,
		PaymentType:      1,
		InvoiceID:        params.InvoiceID,
		Amount:           params.Amount,
		CurrencyCode:     params.Currency,
		OrderDescription: params.Description,
		CustomerName:     params.CustomerName,
		CustomerEmail:    params.CustomerEmail,
		CustomerPhone:    params.CustomerPhone,
		CheckValue:       g.checkValue(params.InvoiceID, params.Amount, params.Currency),
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"invoice_id": params.InvoiceID,
		"amount":     params.Amount,
		"currency":   params.Currency,
		"endpoint":   endpoint,
	}).Info("Opening PAYable checkout")

	resp, err := g.client.Post(endpoint, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var checkout payableCheckoutResponse
	if err := json.Unmarshal(respBody, &checkout); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	// PAYable answers "PENDING" once the checkout is ready for the customer.
	if checkout.Status != "success" && checkout.Status != "PENDING" {
		msg := checkout.Message
		if msg == "" {
			msg = fmt.Sprintf("status=%s", checkout.Status)
		}
		return nil, fmt.Errorf("checkout creation failed: %s", msg)
	}
	if checkout.UID == "" || checkout.PaymentPage == "" {
		return nil, fmt.Errorf("checkout creation failed: incomplete gateway response")
	}

	return &Checkout{Reference: checkout.UID, PaymentURL: checkout.PaymentPage}, nil
}

// VerifyWebhook validates a webhook body and maps it to a PaymentEvent.
// CANCELLED collapses into a failed outcome: either way the customer is not
// paying for this hold.
func (g *PayableGateway) VerifyWebhook(body []byte) (*models.PaymentEvent, error) {
	var payload payableWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if payload.UID == "" || payload.PaymentStatus == "" {
		return nil, fmt.Errorf("webhook missing required fields")
	}

	var outcome models.PaymentOutcome
	switch strings.ToUpper(payload.PaymentStatus) {
	case "SUCCESS":
		outcome = models.PaymentOutcomeSucceeded
	case "FAILED", "CANCELLED":
		outcome = models.PaymentOutcomeFailed
	default:
		return nil, fmt.Errorf("unknown payment status %q", payload.PaymentStatus)
	}

	g.logger.WithFields(logrus.Fields{
		"uid":            payload.UID,
		"invoice_id":     payload.InvoiceID,
		"payment_status": payload.PaymentStatus,
		"transaction_id": payload.TransactionID,
	}).Info("Payment webhook verified")

	return &models.PaymentEvent{
		Reference:  payload.UID,
		Outcome:    outcome,
		RawPayload: json.RawMessage(body),
	}, nil
}
