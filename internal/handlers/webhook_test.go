// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/services"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Payment: config.PaymentConfig{
			StripeWebhookSecret: testWebhookSecret,
			CommissionRate:      0.05,
		},
	}

	// No database or MercadoPago client: these tests only exercise the
	// paths that must terminate before any of that is touched.
	stripeClient := gateway.NewStripeClient("sk_test_key", testWebhookSecret)
	webhookService := services.NewWebhookService(nil, cfg, stripeClient, nil, nil)
	handler := NewWebhookHandler(webhookService)

	r := gin.New()
	r.POST("/api/webhooks/stripe", handler.Stripe)
	r.POST("/api/webhooks/mercadopago", handler.MercadoPago)
	return r
}

// stripeSignature builds a Stripe-Signature header the same way Stripe
// does: HMAC-SHA256 over "<timestamp>.<payload>".
func stripeSignature(payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	r := newWebhookTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhookInvalidSignature(t *testing.T) {
	r := newWebhookTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBufferString(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid signature", body["error"])
}

func TestStripeWebhookTamperedPayload(t *testing.T) {
	r := newWebhookTestRouter(t)

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`)
	signature := stripeSignature(payload, time.Now())

	// Signature computed over a different body.
	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"amount":1}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBuffer(tampered))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhookUnsupportedEventType(t *testing.T) {
	r := newWebhookTestRouter(t)

	payload := []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBuffer(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(payload, time.Now()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Verified but irrelevant events are acknowledged as a no-op.
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["received"])
}

func TestStripeWebhookStaleTimestamp(t *testing.T) {
	r := newWebhookTestRouter(t)

	payload := []byte(`{"id":"evt_3","type":"payment_intent.succeeded","data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewBuffer(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(payload, time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Outside the replay tolerance window.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMercadoPagoWebhookIgnoresNonPayment(t *testing.T) {
	r := newWebhookTestRouter(t)

	payload := []byte(`{"type":"merchant_order","data":{"id":"999"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["received"])
}

func TestMercadoPagoWebhookUnreadableBody(t *testing.T) {
	r := newWebhookTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
