// internal/services/webhook_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/utils"
)

var (
	// ErrSignatureInvalid means the webhook body failed signature
	// verification and must be rejected without side effects.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrMissingReferenceData means a verified payment could not be tied
	// back to a product and buyer.
	ErrMissingReferenceData = errors.New("webhook payment missing reference data")

	// ErrGatewayFetchFailed means the server-to-server payment lookup
	// failed; the gateway should redeliver the notification later.
	ErrGatewayFetchFailed = errors.New("gateway payment fetch failed")
)

const stripeEventPaymentSucceeded = "payment_intent.succeeded"

// WebhookResult summarizes what a notification amounted to after
// processing, so handlers can shape the acknowledgement.
type WebhookResult struct {
	Handled   bool         `json:"handled"`
	Duplicate bool         `json:"duplicate"`
	Sale      *models.Sale `json:"sale,omitempty"`
}

// WebhookService verifies incoming gateway notifications and drives
// fulfillment for the ones that represent a confirmed payment.
type WebhookService struct {
	db          *gorm.DB
	cfg         *config.Config
	stripe      *gateway.StripeClient
	mercadopago *gateway.MercadoPagoClient
	fulfillment *FulfillmentService
}

func NewWebhookService(db *gorm.DB, cfg *config.Config, stripe *gateway.StripeClient, mercadopago *gateway.MercadoPagoClient, fulfillment *FulfillmentService) *WebhookService {
	return &WebhookService{
		db:          db,
		cfg:         cfg,
		stripe:      stripe,
		mercadopago: mercadopago,
		fulfillment: fulfillment,
	}
}

// ProcessStripeWebhook verifies the signature over the raw body, filters
// to successful payment intents, and fulfills the referenced sale.
// Order matters: verification happens before anything touches the
// database, and unsupported event types are acknowledged without being
// recorded.
func (s *WebhookService) ProcessStripeWebhook(payload []byte, signatureHeader string) (*WebhookResult, error) {
	event, err := s.stripe.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	if event.Type != stripeEventPaymentSucceeded {
		return &WebhookResult{Handled: false}, nil
	}

	record, seen, err := s.registerEvent(models.PaymentMethodStripe, event.ID, string(event.Type), payload)
	if err != nil {
		return nil, err
	}
	if seen {
		return &WebhookResult{Handled: true, Duplicate: true}, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.markEventFailed(record, err)
		return nil, fmt.Errorf("%w: unreadable payment intent payload", ErrMissingReferenceData)
	}

	input, err := s.saleInputFromStripeIntent(&intent)
	if err != nil {
		s.markEventFailed(record, err)
		return nil, err
	}

	sale, created, err := s.fulfillment.Fulfill(input)
	if err != nil {
		s.markEventFailed(record, err)
		return nil, err
	}

	s.markEventProcessed(record)

	return &WebhookResult{Handled: true, Duplicate: !created, Sale: sale}, nil
}

// ProcessMercadoPagoNotification handles a MercadoPago IPN. The
// notification body is untrusted: the payment is fetched back from the
// API by id and every amount comes from that fetch.
func (s *WebhookService) ProcessMercadoPagoNotification(ctx context.Context, notificationType, paymentID string) (*WebhookResult, error) {
	if notificationType != "payment" {
		return &WebhookResult{Handled: false}, nil
	}
	if paymentID == "" {
		return nil, fmt.Errorf("%w: notification has no payment id", ErrMissingReferenceData)
	}

	payment, err := s.mercadopago.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayFetchFailed, err)
	}

	if payment.Status != "approved" {
		return &WebhookResult{Handled: false}, nil
	}

	record, seen, err := s.registerEvent(models.PaymentMethodMercadoPago, paymentID, "payment.approved", []byte(payment.ExternalReference))
	if err != nil {
		return nil, err
	}
	if seen {
		return &WebhookResult{Handled: true, Duplicate: true}, nil
	}

	input, err := s.saleInputFromMercadoPagoPayment(payment)
	if err != nil {
		s.markEventFailed(record, err)
		return nil, err
	}

	sale, created, err := s.fulfillment.Fulfill(input)
	if err != nil {
		s.markEventFailed(record, err)
		return nil, err
	}

	s.markEventProcessed(record)

	return &WebhookResult{Handled: true, Duplicate: !created, Sale: sale}, nil
}

func (s *WebhookService) saleInputFromStripeIntent(intent *stripe.PaymentIntent) (*CreateSaleInput, error) {
	ref, err := gateway.ParseCheckoutReference(intent.Metadata["checkout_reference"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}

	product, err := s.loadProduct(ref.ProductID)
	if err != nil {
		return nil, err
	}

	currency := models.Currency(strings.ToUpper(string(intent.Currency)))
	if !currency.Valid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrMissingReferenceData, intent.Currency)
	}

	return &CreateSaleInput{
		ProductID:        product.ID,
		SellerID:         product.UserID,
		BuyerEmail:       ref.BuyerEmail,
		BuyerName:        ref.BuyerName,
		Amount:           float64(intent.Amount) / 100,
		Currency:         currency,
		PaymentMethod:    models.PaymentMethodStripe,
		GatewayPaymentID: intent.ID,
	}, nil
}

func (s *WebhookService) saleInputFromMercadoPagoPayment(payment *gateway.MPPayment) (*CreateSaleInput, error) {
	ref, err := gateway.ParseCheckoutReference(payment.ExternalReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingReferenceData, err)
	}

	product, err := s.loadProduct(ref.ProductID)
	if err != nil {
		return nil, err
	}

	currency := models.Currency(strings.ToUpper(payment.CurrencyID))
	if !currency.Valid() {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrMissingReferenceData, payment.CurrencyID)
	}

	buyerEmail := ref.BuyerEmail
	if buyerEmail == "" {
		buyerEmail = payment.Payer.Email
	}
	buyerName := ref.BuyerName
	if buyerName == "" {
		buyerName = strings.TrimSpace(payment.Payer.FirstName + " " + payment.Payer.LastName)
	}

	return &CreateSaleInput{
		ProductID:        product.ID,
		SellerID:         product.UserID,
		BuyerEmail:       buyerEmail,
		BuyerName:        buyerName,
		Amount:           payment.TransactionAmount,
		Currency:         currency,
		PaymentMethod:    models.PaymentMethodMercadoPago,
		GatewayPaymentID: fmt.Sprintf("%d", payment.ID),
	}, nil
}

func (s *WebhookService) loadProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s not found", ErrMissingReferenceData, productID)
		}
		return nil, err
	}
	return &product, nil
}

// registerEvent records the notification keyed by the provider's event
// id. seen is true when this exact event was already fully processed;
// an earlier failed attempt is returned for reprocessing instead.
func (s *WebhookService) registerEvent(provider models.PaymentMethod, providerEventID, eventType string, payload []byte) (*models.WebhookEvent, bool, error) {
	var existing models.WebhookEvent
	err := s.db.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&existing).Error
	if err == nil {
		return &existing, existing.ProcessedAt != nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up webhook event: %w", err)
	}

	record := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: providerEventID,
		EventType:       eventType,
		PayloadHash:     utils.HashString(string(payload)),
	}
	if err := s.db.Create(record).Error; err != nil {
		if isDuplicateKeyError(err) {
			// Concurrent delivery of the same event won the insert.
			if ferr := s.db.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
				First(&existing).Error; ferr == nil {
				return &existing, existing.ProcessedAt != nil, nil
			}
		}
		return nil, false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	return record, false, nil
}

func (s *WebhookService) markEventProcessed(record *models.WebhookEvent) {
	now := time.Now()
	s.db.Model(record).Updates(map[string]interface{}{
		"processed_at":     &now,
		"processing_error": "",
	})
}

func (s *WebhookService) markEventFailed(record *models.WebhookEvent, procErr error) {
	s.db.Model(record).Update("processing_error", procErr.Error())
}
