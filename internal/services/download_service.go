// internal/services/download_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

var (
	// ErrTokenInvalidOrExpired covers both a bad signature and a token
	// past its expiry; callers must not distinguish the two.
	ErrTokenInvalidOrExpired = errors.New("download token invalid or expired")

	// ErrLinkStale means the token verified but the product file was
	// replaced after issuance, so the link no longer grants access.
	ErrLinkStale = errors.New("download link stale")
)

type DownloadService struct {
	cfg *config.Config
}

// DownloadClaims is the entire download credential; nothing is persisted.
// FileURL pins the token to the file version it was issued for.
type DownloadClaims struct {
	SaleID     string `json:"sale_id"`
	ProductID  string `json:"product_id"`
	BuyerEmail string `json:"buyer_email"`
	FileURL    string `json:"file_url"`
	jwt.RegisteredClaims
}

func NewDownloadService(cfg *config.Config) *DownloadService {
	return &DownloadService{
		cfg: cfg,
	}
}

// Issue mints a signed download token for a completed sale.
func (s *DownloadService) Issue(sale *models.Sale, product *models.Product) (string, error) {
	now := time.Now()
	claims := DownloadClaims{
		SaleID:     sale.ID.String(),
		ProductID:  product.ID.String(),
		BuyerEmail: sale.BuyerEmail,
		FileURL:    product.FileURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.cfg.Download.TokenTTL) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "bubastore",
			Subject:   sale.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Download.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign download token: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry. Any failure maps to
// ErrTokenInvalidOrExpired so the response does not leak why.
func (s *DownloadService) Verify(tokenString string) (*DownloadClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DownloadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Download.SecretKey), nil
	})
	if err != nil {
		return nil, ErrTokenInvalidOrExpired
	}

	claims, ok := token.Claims.(*DownloadClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalidOrExpired
	}

	return claims, nil
}

// ValidateAgainstProduct re-checks the token claims against the live
// product. A replaced file invalidates previously issued links.
func (s *DownloadService) ValidateAgainstProduct(claims *DownloadClaims, product *models.Product) error {
	if claims.FileURL != product.FileURL {
		return ErrLinkStale
	}
	return nil
}

// DownloadURL builds the redemption link embedded in the buyer email.
func (s *DownloadService) DownloadURL(token string) string {
	return fmt.Sprintf("%s/api/download/%s", s.cfg.Frontend.BaseURL, token)
}

// ProductIDFromClaims parses the product id out of verified claims.
func (s *DownloadService) ProductIDFromClaims(claims *DownloadClaims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.ProductID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalidOrExpired
	}
	return id, nil
}
