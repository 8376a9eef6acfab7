package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// AnomalyLister exposes recorded reconciliation anomalies.
type AnomalyLister interface {
	ListRecentAnomalies(limit int) ([]*models.Anomaly, error)
}

// AnomalyHandler exposes the anomaly log to operators
type AnomalyHandler struct {
	anomalies AnomalyLister
	logger    *logrus.Logger
}

// NewAnomalyHandler creates a new AnomalyHandler
func NewAnomalyHandler(anomalies AnomalyLister, logger *logrus.Logger) *AnomalyHandler {
	return &AnomalyHandler{anomalies: anomalies, logger: logger}
}

// ListAnomalies returns recent reconciliation anomalies, newest first
// @Summary List reconciliation anomalies
// @Description Operator view of payment events needing manual resolution
// @Tags Admin
// @Produce json
// @Param limit query int false "Maximum entries to return (default 50)"
// @Success 200 {object} map[string]interface{}
// @Router /admin/anomalies [get]
func (h *AnomalyHandler) ListAnomalies(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	anomalies, err := h.anomalies.ListRecentAnomalies(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list anomalies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list anomalies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}
