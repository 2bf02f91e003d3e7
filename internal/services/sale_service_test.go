// internal/services/sale_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

// newTestDB opens a throwaway in-memory database migrated with the
// application models. cache=shared keeps every pooled connection on the
// same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Sale{},
		&models.WebhookEvent{},
	))

	return db
}

func servicesTestConfig() *config.Config {
	return &config.Config{
		Payment: config.PaymentConfig{
			StripeWebhookSecret: "whsec_test_secret",
			CommissionRate:      0.05,
		},
		Download: config.DownloadConfig{
			SecretKey: "test-download-secret",
			TokenTTL:  48,
		},
		Frontend: config.FrontendConfig{
			BaseURL: "https://bubastore.test",
		},
	}
}

func seedSellerAndProduct(t *testing.T, db *gorm.DB) (*models.User, *models.Product) {
	t.Helper()

	seller := &models.User{
		Username:     "mariasilva",
		Email:        "maria@example.com",
		PasswordHash: "not-checked-here",
		UserType:     models.UserTypeCreator,
		Status:       models.UserStatusActive,
		StoreName:    "Loja da Maria",
	}
	require.NoError(t, db.Create(seller).Error)

	product := &models.Product{
		UserID:   seller.ID,
		Title:    "Ebook de receitas",
		PriceBRL: 29.90,
		PriceUSD: 9.90,
		FileURL:  "https://cdn.bubastore.test/products/files/ebook.pdf",
		FileKey:  "products/files/ebook.pdf",
		Active:   true,
	}
	require.NoError(t, db.Create(product).Error)

	return seller, product
}

func saleInputFor(seller *models.User, product *models.Product, gatewayPaymentID string) *CreateSaleInput {
	return &CreateSaleInput{
		ProductID:        product.ID,
		SellerID:         seller.ID,
		BuyerEmail:       "buyer@example.com",
		BuyerName:        "João Souza",
		Amount:           29.90,
		Currency:         models.CurrencyBRL,
		PaymentMethod:    models.PaymentMethodStripe,
		GatewayPaymentID: gatewayPaymentID,
	}
}

func TestSaleCreateRecordsPaidSale(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	svc := NewSaleService(db, servicesTestConfig())

	sale, created, err := svc.Create(saleInputFor(seller, product, "pi_1"))
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, models.PaymentStatusPaid, sale.Status)
	assert.Equal(t, models.NotifyStatusPending, sale.NotifyStatus)
	assert.InDelta(t, 1.50, sale.CommissionAmount, 1e-9)
	assert.InDelta(t, 28.40, sale.NetAmount(), 1e-9)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, int64(1), reloaded.SalesCount)
}

func TestSaleCreateCollapsesDuplicatePayment(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	svc := NewSaleService(db, servicesTestConfig())

	first, created, err := svc.Create(saleInputFor(seller, product, "pi_dup"))
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Create(saleInputFor(seller, product, "pi_dup"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The sales counter only moved once.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, int64(1), reloaded.SalesCount)
}

func TestSaleCreateDistinctPayments(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	svc := NewSaleService(db, servicesTestConfig())

	_, created, err := svc.Create(saleInputFor(seller, product, "pi_a"))
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = svc.Create(saleInputFor(seller, product, "pi_b"))
	require.NoError(t, err)
	assert.True(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
