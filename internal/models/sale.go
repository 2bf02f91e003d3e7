// internal/models/sale.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Sale is the immutable record of one completed payment. The composite
// unique index on (payment_method, gateway_payment_id) is what makes
// webhook processing idempotent: a redelivered gateway event maps to the
// same row instead of a second sale.
type Sale struct {
	BaseModel
	ProductID        uuid.UUID     `json:"product_id" gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID     `json:"seller_id" gorm:"type:uuid;not null;index"`
	BuyerEmail       string        `json:"buyer_email" gorm:"size:255;not null"`
	BuyerName        string        `json:"buyer_name" gorm:"size:255"`
	Amount           float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency         Currency      `json:"currency" gorm:"type:varchar(3);not null"`
	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null;uniqueIndex:idx_sales_gateway_payment,priority:1"`
	GatewayPaymentID string        `json:"gateway_payment_id" gorm:"size:255;not null;uniqueIndex:idx_sales_gateway_payment,priority:2"`
	CommissionAmount float64       `json:"commission_amount" gorm:"type:decimal(10,2);not null"`
	Status           PaymentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	NotifyStatus     NotifyStatus  `json:"notify_status" gorm:"type:varchar(20);default:'pending_notify';index"`
	NotifiedAt       *time.Time    `json:"notified_at"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

// NetAmount is what the seller receives after the platform commission.
func (s *Sale) NetAmount() float64 {
	return s.Amount - s.CommissionAmount
}
