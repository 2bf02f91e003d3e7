// internal/services/download_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

func downloadTestConfig() *config.Config {
	return &config.Config{
		Download: config.DownloadConfig{
			SecretKey: "test-download-secret",
			TokenTTL:  48,
		},
		Frontend: config.FrontendConfig{
			BaseURL: "https://bubastore.test",
		},
	}
}

func testSaleAndProduct() (*models.Sale, *models.Product) {
	product := &models.Product{
		Title:   "Ebook de receitas",
		FileURL: "https://cdn.bubastore.test/products/files/ebook.pdf",
		FileKey: "products/files/ebook.pdf",
	}
	product.ID = uuid.New()

	sale := &models.Sale{
		ProductID:  product.ID,
		BuyerEmail: "buyer@example.com",
		Amount:     29.90,
		Currency:   models.CurrencyBRL,
	}
	sale.ID = uuid.New()

	return sale, product
}

func TestDownloadTokenRoundTrip(t *testing.T) {
	svc := NewDownloadService(downloadTestConfig())
	sale, product := testSaleAndProduct()

	token, err := svc.Issue(sale, product)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, sale.ID.String(), claims.SaleID)
	assert.Equal(t, product.ID.String(), claims.ProductID)
	assert.Equal(t, sale.BuyerEmail, claims.BuyerEmail)
	assert.Equal(t, product.FileURL, claims.FileURL)

	productID, err := svc.ProductIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, product.ID, productID)

	// Expiry sits ~48h out.
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestDownloadTokenWrongSecret(t *testing.T) {
	svc := NewDownloadService(downloadTestConfig())
	sale, product := testSaleAndProduct()

	token, err := svc.Issue(sale, product)
	require.NoError(t, err)

	otherCfg := downloadTestConfig()
	otherCfg.Download.SecretKey = "a-different-secret"
	other := NewDownloadService(otherCfg)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestDownloadTokenExpired(t *testing.T) {
	cfg := downloadTestConfig()
	svc := NewDownloadService(cfg)
	sale, product := testSaleAndProduct()

	// Hand-build a token that expired an hour ago with the same secret.
	claims := DownloadClaims{
		SaleID:     sale.ID.String(),
		ProductID:  product.ID.String(),
		BuyerEmail: sale.BuyerEmail,
		FileURL:    product.FileURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-49 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Download.SecretKey))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestDownloadTokenGarbage(t *testing.T) {
	svc := NewDownloadService(downloadTestConfig())

	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestDownloadLinkStaleAfterFileReplace(t *testing.T) {
	svc := NewDownloadService(downloadTestConfig())
	sale, product := testSaleAndProduct()

	token, err := svc.Issue(sale, product)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	// Same file: still valid.
	assert.NoError(t, svc.ValidateAgainstProduct(claims, product))

	// Seller replaced the file after the token was issued.
	product.FileURL = "https://cdn.bubastore.test/products/files/ebook-v2.pdf"
	assert.ErrorIs(t, svc.ValidateAgainstProduct(claims, product), ErrLinkStale)
}

func TestDownloadURL(t *testing.T) {
	svc := NewDownloadService(downloadTestConfig())

	url := svc.DownloadURL("some-token")
	assert.Equal(t, "https://bubastore.test/api/download/some-token", url)
}
