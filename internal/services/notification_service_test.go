// internal/services/notification_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

func notificationTestConfig() *config.Config {
	return &config.Config{
		Download: config.DownloadConfig{TokenTTL: 48},
		Email: config.EmailConfig{
			FromEmail: "noreply@bubastore.test",
			FromName:  "BubaStore",
			// SMTPHost left empty: sends are logged, not dispatched.
		},
	}
}

func TestPurchaseConfirmationTemplate(t *testing.T) {
	svc := NewNotificationService(notificationTestConfig())

	tmpl := svc.getEmailTemplate("purchase_confirmation")
	body, err := svc.renderTemplate(tmpl.Body, map[string]interface{}{
		"BuyerName":    "Maria Silva",
		"ProductTitle": "Ebook de receitas",
		"Amount":       "29.90",
		"Currency":     "BRL",
		"DownloadURL":  "https://bubastore.test/api/download/tok123",
		"ExpiresIn":    "48 hours",
		"PlatformName": "BubaStore",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Maria Silva")
	assert.Contains(t, body, "Ebook de receitas")
	assert.Contains(t, body, "https://bubastore.test/api/download/tok123")
	assert.Contains(t, body, "48 hours")
	assert.Contains(t, body, "BRL 29.90")
}

func TestSaleNotificationTemplate(t *testing.T) {
	svc := NewNotificationService(notificationTestConfig())

	tmpl := svc.getEmailTemplate("sale_notification")
	body, err := svc.renderTemplate(tmpl.Body, map[string]interface{}{
		"SellerName":   "joao",
		"ProductTitle": "Curso de violão",
		"BuyerEmail":   "buyer@example.com",
		"Amount":       "100.00",
		"Commission":   "5.00",
		"Net":          "95.00",
		"Currency":     "BRL",
		"PlatformName": "BubaStore",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "joao")
	assert.Contains(t, body, "buyer@example.com")
	assert.Contains(t, body, "BRL 100.00")
	assert.Contains(t, body, "BRL 5.00")
	assert.Contains(t, body, "BRL 95.00")
}

func TestSendSaleEmailsWithoutSMTP(t *testing.T) {
	svc := NewNotificationService(notificationTestConfig())

	product := &models.Product{Title: "Ebook"}
	product.ID = uuid.New()

	seller := &models.User{Username: "joao", Email: "joao@example.com"}
	seller.ID = uuid.New()

	sale := &models.Sale{
		ProductID:        product.ID,
		SellerID:         seller.ID,
		BuyerEmail:       "buyer@example.com",
		BuyerName:        "Maria",
		Amount:           29.90,
		CommissionAmount: 1.50,
		Currency:         models.CurrencyBRL,
	}
	sale.ID = uuid.New()

	// SMTP unconfigured: both sends succeed as logged no-ops.
	err := svc.SendSaleEmails(sale, product, seller, "https://bubastore.test/api/download/tok")
	assert.NoError(t, err)
}

func TestBuyerDisplayName(t *testing.T) {
	named := &models.Sale{BuyerName: "Maria", BuyerEmail: "maria@example.com"}
	assert.Equal(t, "Maria", buyerDisplayName(named))

	anonymous := &models.Sale{BuyerEmail: "maria@example.com"}
	assert.Equal(t, "maria@example.com", buyerDisplayName(anonymous))
}
