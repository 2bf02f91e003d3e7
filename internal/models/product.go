// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	PriceBRL    float64        `json:"price_brl" gorm:"type:decimal(10,2);not null"`
	PriceUSD    float64        `json:"price_usd" gorm:"type:decimal(10,2);not null"`
	FileURL     string         `json:"file_url" gorm:"size:500;not null"`
	FileKey     string         `json:"-" gorm:"size:500"`
	CoverURL    string         `json:"cover_url" gorm:"size:500"`
	CoverKey    string         `json:"-" gorm:"size:500"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Active      bool           `json:"active" gorm:"default:true;index"`
	SalesCount  int64          `json:"sales_count" gorm:"default:0"`

	// Relationships
	User  User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Sales []Sale `json:"sales,omitempty" gorm:"foreignKey:ProductID"`
}

// Price returns the product price for the given currency.
func (p *Product) Price(currency Currency) float64 {
	if currency == CurrencyUSD {
		return p.PriceUSD
	}
	return p.PriceBRL
}
