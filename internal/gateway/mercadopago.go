// internal/gateway/mercadopago.go
package gateway

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

// MercadoPagoClient is a thin REST client over the MercadoPago API.
// MercadoPago webhooks carry no signature; authenticity comes from
// fetching the payment back from the API by id and never trusting
// amounts in the notification body.
type MercadoPagoClient struct {
	http *resty.Client
}

type MPPayer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type MPPayment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
	ExternalReference string  `json:"external_reference"`
	Payer             MPPayer `json:"payer"`
}

type MPPreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type MPPreferenceRequest struct {
	Items             []MPPreferenceItem `json:"items"`
	ExternalReference string             `json:"external_reference"`
	NotificationURL   string             `json:"notification_url,omitempty"`
}

type MPPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

func NewMercadoPagoClient(baseURL, accessToken string) *MercadoPagoClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken)

	return &MercadoPagoClient{
		http: httpClient,
	}
}

// GetPayment fetches the authoritative payment record by id.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*MPPayment, error) {
	var payment MPPayment

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payment).
		Get(fmt.Sprintf("/v1/payments/%s", paymentID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mercadopago payment %s: %w", paymentID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mercadopago payment fetch returned status %d", resp.StatusCode())
	}

	return &payment, nil
}

// CreatePreference creates a hosted checkout preference carrying the
// versioned external reference that links the payment back to a product.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req *MPPreferenceRequest) (*MPPreferenceResponse, error) {
	var preference MPPreferenceResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&preference).
		Post("/checkout/preferences")
	if err != nil {
		return nil, fmt.Errorf("failed to create mercadopago preference: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mercadopago preference creation returned status %d", resp.StatusCode())
	}

	return &preference, nil
}
