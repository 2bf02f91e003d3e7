// internal/gateway/stripe.go
package gateway

import (
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// StripeClient wraps the Stripe SDK behind an explicitly constructed
// instance. The SDK supports a package-global key, but webhook handlers
// receive this client by injection so tests can build their own.
type StripeClient struct {
	api           *client.API
	webhookSecret string
}

type StripeIntentRequest struct {
	Amount   float64
	Currency string
	Metadata map[string]string
}

type StripeIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeClient{
		api:           api,
		webhookSecret: webhookSecret,
	}
}

// CreatePaymentIntent creates an intent carrying the product/buyer
// metadata that the webhook handler later resolves the sale from.
func (c *StripeClient) CreatePaymentIntent(req *StripeIntentRequest) (*StripeIntentResponse, error) {
	// Stripe amounts are integer cents
	amountInCents := int64(req.Amount*100 + 0.5)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(req.Currency),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &StripeIntentResponse{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// VerifyWebhook recomputes the signature over the raw body and fails
// closed on any mismatch. This is the only authentication the Stripe
// webhook endpoint has. API version drift on the event is tolerated;
// the payload fields we read are stable across versions.
func (c *StripeClient) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripe signature verification failed: %w", err)
	}
	return event, nil
}
