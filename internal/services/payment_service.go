// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/models"
)

// ErrProductUnavailable means the product cannot be bought: it does not
// exist, is inactive, or its seller is not active.
var ErrProductUnavailable = errors.New("product unavailable for purchase")

// PaymentService initiates checkouts against the payment gateways. It
// never records sales; that only happens when the gateway confirms the
// payment through a webhook.
type PaymentService struct {
	db          *gorm.DB
	cfg         *config.Config
	stripe      *gateway.StripeClient
	mercadopago *gateway.MercadoPagoClient
}

type CheckoutInput struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"required"`
	Currency   models.Currency `json:"currency" validate:"required,currency"`
	BuyerEmail string          `json:"buyer_email" validate:"required,email"`
	BuyerName  string          `json:"buyer_name" validate:"max=255"`
}

type StripeCheckoutResponse struct {
	PaymentIntentID string  `json:"payment_intent_id"`
	ClientSecret    string  `json:"client_secret"`
	PublishableKey  string  `json:"publishable_key"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

type MercadoPagoCheckoutResponse struct {
	PreferenceID     string  `json:"preference_id"`
	InitPoint        string  `json:"init_point"`
	SandboxInitPoint string  `json:"sandbox_init_point,omitempty"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, stripe *gateway.StripeClient, mercadopago *gateway.MercadoPagoClient) *PaymentService {
	return &PaymentService{
		db:          db,
		cfg:         cfg,
		stripe:      stripe,
		mercadopago: mercadopago,
	}
}

// CreateStripeCheckout creates a payment intent for the product. The
// checkout reference travels in the intent metadata so the webhook can
// resolve the sale later without any server-side checkout state.
func (s *PaymentService) CreateStripeCheckout(input *CheckoutInput) (*StripeCheckoutResponse, error) {
	product, err := s.purchasableProduct(input.ProductID, input.Currency)
	if err != nil {
		return nil, err
	}

	reference, err := (&gateway.CheckoutReference{
		ProductID:  product.ID,
		BuyerEmail: input.BuyerEmail,
		BuyerName:  input.BuyerName,
	}).Encode()
	if err != nil {
		return nil, err
	}

	amount := product.Price(input.Currency)
	intent, err := s.stripe.CreatePaymentIntent(&gateway.StripeIntentRequest{
		Amount:   amount,
		Currency: stripeCurrencyCode(input.Currency),
		Metadata: map[string]string{
			"checkout_reference": reference,
		},
	})
	if err != nil {
		return nil, err
	}

	return &StripeCheckoutResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  s.cfg.Payment.StripePublishableKey,
		Amount:          amount,
		Currency:        string(input.Currency),
	}, nil
}

// CreateMercadoPagoCheckout creates a hosted checkout preference. The
// versioned reference rides in external_reference; MercadoPago echoes it
// back on the payment the webhook fetches.
func (s *PaymentService) CreateMercadoPagoCheckout(ctx context.Context, input *CheckoutInput) (*MercadoPagoCheckoutResponse, error) {
	product, err := s.purchasableProduct(input.ProductID, input.Currency)
	if err != nil {
		return nil, err
	}

	reference, err := (&gateway.CheckoutReference{
		ProductID:  product.ID,
		BuyerEmail: input.BuyerEmail,
		BuyerName:  input.BuyerName,
	}).Encode()
	if err != nil {
		return nil, err
	}

	amount := product.Price(input.Currency)
	preference, err := s.mercadopago.CreatePreference(ctx, &gateway.MPPreferenceRequest{
		Items: []gateway.MPPreferenceItem{
			{
				Title:      product.Title,
				Quantity:   1,
				UnitPrice:  amount,
				CurrencyID: string(input.Currency),
			},
		},
		ExternalReference: reference,
		NotificationURL:   s.cfg.Payment.MercadoPagoNotifyURL,
	})
	if err != nil {
		return nil, err
	}

	return &MercadoPagoCheckoutResponse{
		PreferenceID:     preference.ID,
		InitPoint:        preference.InitPoint,
		SandboxInitPoint: preference.SandboxInitPoint,
		Amount:           amount,
		Currency:         string(input.Currency),
	}, nil
}

// purchasableProduct loads the product and checks it can be sold in the
// requested currency. A product priced only in BRL is not purchasable in
// USD and vice versa; a zero price would otherwise reach the gateway as
// a zero-amount charge.
func (s *PaymentService) purchasableProduct(productID uuid.UUID, currency models.Currency) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("User").First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if !product.Active {
		return nil, ErrProductUnavailable
	}
	if product.User.Status != models.UserStatusActive {
		return nil, ErrProductUnavailable
	}
	if product.Price(currency) <= 0 {
		return nil, ErrProductUnavailable
	}

	return &product, nil
}

func stripeCurrencyCode(currency models.Currency) string {
	// Stripe wants lowercase ISO codes
	switch currency {
	case models.CurrencyUSD:
		return "usd"
	default:
		return "brl"
	}
}
