// internal/services/payment_service_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufinostore/bubastore/internal/gateway"
	"github.com/rufinostore/bubastore/internal/models"
)

func TestCheckoutRejectsZeroPricedCurrency(t *testing.T) {
	db := newTestDB(t)
	_, product := seedSellerAndProduct(t, db)

	// Priced in BRL only; a USD checkout would charge zero.
	require.NoError(t, db.Model(product).Update("price_usd", 0).Error)

	svc := NewPaymentService(db, servicesTestConfig(), nil, nil)
	input := &CheckoutInput{
		ProductID:  product.ID,
		Currency:   models.CurrencyUSD,
		BuyerEmail: "buyer@example.com",
	}

	_, err := svc.CreateStripeCheckout(input)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.CreateMercadoPagoCheckout(context.Background(), input)
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	db := newTestDB(t)
	_, product := seedSellerAndProduct(t, db)
	require.NoError(t, db.Model(product).Update("active", false).Error)

	svc := NewPaymentService(db, servicesTestConfig(), nil, nil)

	_, err := svc.CreateStripeCheckout(&CheckoutInput{
		ProductID:  product.ID,
		Currency:   models.CurrencyBRL,
		BuyerEmail: "buyer@example.com",
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckoutRejectsSuspendedSeller(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	require.NoError(t, db.Model(seller).Update("status", models.UserStatusSuspended).Error)

	svc := NewPaymentService(db, servicesTestConfig(), nil, nil)

	_, err := svc.CreateStripeCheckout(&CheckoutInput{
		ProductID:  product.ID,
		Currency:   models.CurrencyBRL,
		BuyerEmail: "buyer@example.com",
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestMercadoPagoCheckoutUsesRequestedCurrencyPrice(t *testing.T) {
	db := newTestDB(t)
	_, product := seedSellerAndProduct(t, db)

	var captured gateway.MPPreferenceRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(gateway.MPPreferenceResponse{
			ID:        "pref-1",
			InitPoint: "https://mercadopago.test/init/pref-1",
		})
	}))
	defer server.Close()

	svc := NewPaymentService(db, servicesTestConfig(), nil, gateway.NewMercadoPagoClient(server.URL, "test-token"))

	resp, err := svc.CreateMercadoPagoCheckout(context.Background(), &CheckoutInput{
		ProductID:  product.ID,
		Currency:   models.CurrencyBRL,
		BuyerEmail: "buyer@example.com",
		BuyerName:  "João Souza",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", resp.PreferenceID)
	assert.InDelta(t, 29.90, resp.Amount, 1e-9)

	require.Len(t, captured.Items, 1)
	assert.InDelta(t, 29.90, captured.Items[0].UnitPrice, 1e-9)
	assert.Equal(t, "BRL", captured.Items[0].CurrencyID)

	// The reference riding in external_reference must resolve back to
	// this product and buyer.
	ref, err := gateway.ParseCheckoutReference(captured.ExternalReference)
	require.NoError(t, err)
	assert.Equal(t, product.ID, ref.ProductID)
	assert.Equal(t, "buyer@example.com", ref.BuyerEmail)
}
