package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// WebhookVerifier validates a raw webhook body into a payment event.
type WebhookVerifier interface {
	VerifyWebhook(body []byte) (*models.PaymentEvent, error)
}

// PaymentWebhookHandler handles payment gateway webhook callbacks
type PaymentWebhookHandler struct {
	verifier   WebhookVerifier
	reconciler *services.PaymentReconciler
	logger     *logrus.Logger
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(verifier WebhookVerifier, reconciler *services.PaymentReconciler, logger *logrus.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		verifier:   verifier,
		reconciler: reconciler,
		logger:     logger,
	}
}

// ============================================================================
// PAYMENT WEBHOOK - POST /api/v1/payments/webhook
// ============================================================================

// PaymentWebhook ingests payment gateway notifications
// @Summary Payment webhook callback
// @Description Called by the payment gateway to report a payment outcome.
// @Description Always answers 200 once the body is readable, so the gateway
// @Description stops retrying; replays and unknown references are safe.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Webhook payload from gateway"
// @Success 200 {object} map[string]interface{} "Webhook acknowledged"
// @Failure 400 {object} map[string]interface{} "Unreadable request"
// @Router /payments/webhook [post]
func (h *PaymentWebhookHandler) PaymentWebhook(c *gin.Context) {
	bodyBytes, err := c.GetRawData()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read webhook body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := h.verifier.VerifyWebhook(bodyBytes)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to verify webhook payload")
		// Still return 200 to acknowledge receipt (prevents retries)
		c.JSON(http.StatusOK, gin.H{"error": "invalid webhook payload", "acknowledged": true})
		return
	}

	booking, err := h.reconciler.Reconcile(*event)
	if err != nil {
		if errors.Is(err, services.ErrUnknownReference) {
			h.logger.WithField("payment_reference", event.Reference).Warn("Webhook for unknown payment reference")
			c.JSON(http.StatusOK, gin.H{
				"message": "webhook acknowledged",
				"note":    "no matching booking",
			})
			return
		}

		h.logger.WithError(err).WithField("payment_reference", event.Reference).Error("Failed to reconcile payment event")
		// Acknowledge anyway; the anomaly log and operator tooling take over.
		c.JSON(http.StatusOK, gin.H{
			"message": "webhook acknowledged",
			"error":   "reconciliation failed",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"payment_reference": event.Reference,
		"outcome":           event.Outcome,
		"status":            booking.Status,
	}).Info("Payment event reconciled")

	c.JSON(http.StatusOK, gin.H{
		"message": "webhook acknowledged",
		"status":  booking.Status,
	})
}
