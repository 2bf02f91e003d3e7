// internal/handlers/webhook.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rufinostore/bubastore/internal/services"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Stripe receives Stripe webhook deliveries. The body must stay raw for
// signature verification; only verified payment_intent.succeeded events
// are processed, everything else is acknowledged untouched.
// POST /api/webhooks/stripe
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing signature"})
		return
	}

	result, err := h.webhookService.ProcessStripeWebhook(payload, signature)
	if err != nil {
		h.respondWebhookError(c, "stripe", err)
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

type mercadoPagoNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// MercadoPago receives MercadoPago payment notifications. The body is
// untrusted; processing fetches the payment back from the API by id.
// POST /api/webhooks/mercadopago
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	var notification mercadoPagoNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	result, err := h.webhookService.ProcessMercadoPagoNotification(
		c.Request.Context(), notification.Type, notification.Data.ID)
	if err != nil {
		h.respondWebhookError(c, "mercadopago", err)
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// respondWebhookError maps processing failures to the status the
// gateway should see. 4xx means "do not retry this delivery"; 5xx asks
// the gateway to redeliver later.
func (h *WebhookHandler) respondWebhookError(c *gin.Context, provider string, err error) {
	entry := logrus.WithFields(logrus.Fields{
		"provider": provider,
		"error":    err.Error(),
	})

	switch {
	case errors.Is(err, services.ErrSignatureInvalid):
		entry.Warn("Webhook signature rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
	case errors.Is(err, services.ErrMissingReferenceData):
		entry.Warn("Webhook payment missing reference data")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reference data"})
	case errors.Is(err, services.ErrGatewayFetchFailed):
		entry.Error("Webhook gateway fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment lookup failed"})
	default:
		entry.Error("Webhook processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	}
}
