// internal/services/sale_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
	"github.com/rufinostore/bubastore/internal/utils"
)

type SaleService struct {
	db  *gorm.DB
	cfg *config.Config
}

type CreateSaleInput struct {
	ProductID        uuid.UUID
	SellerID         uuid.UUID
	BuyerEmail       string
	BuyerName        string
	Amount           float64
	Currency         models.Currency
	PaymentMethod    models.PaymentMethod
	GatewayPaymentID string
}

type SaleFilter struct {
	utils.PaginationParams
	SellerID      *uuid.UUID
	ProductID     *uuid.UUID
	Status        *models.PaymentStatus
	PaymentMethod *models.PaymentMethod
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func NewSaleService(db *gorm.DB, cfg *config.Config) *SaleService {
	return &SaleService{
		db:  db,
		cfg: cfg,
	}
}

// Create records a sale for a successful payment. The second return
// value is false when the gateway payment was already recorded, which is
// how redelivered webhooks collapse onto the existing row.
func (s *SaleService) Create(input *CreateSaleInput) (*models.Sale, bool, error) {
	if existing, err := s.FindByGatewayPayment(input.PaymentMethod, input.GatewayPaymentID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	sale := &models.Sale{
		ProductID:        input.ProductID,
		SellerID:         input.SellerID,
		BuyerEmail:       input.BuyerEmail,
		BuyerName:        input.BuyerName,
		Amount:           input.Amount,
		Currency:         input.Currency,
		PaymentMethod:    input.PaymentMethod,
		GatewayPaymentID: input.GatewayPaymentID,
		CommissionAmount: CalculateCommission(input.Amount, s.cfg.Payment.CommissionRate),
		Status:           models.PaymentStatusPaid,
		NotifyStatus:     models.NotifyStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", input.ProductID).
			UpdateColumn("sales_count", gorm.Expr("sales_count + 1")).Error
	})
	if err != nil {
		// Lost the race with a concurrent delivery of the same payment;
		// the unique index guarantees a single row exists.
		if isDuplicateKeyError(err) {
			existing, findErr := s.FindByGatewayPayment(input.PaymentMethod, input.GatewayPaymentID)
			if findErr != nil {
				return nil, false, fmt.Errorf("failed to load already-recorded sale: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create sale: %w", err)
	}

	return sale, true, nil
}

func (s *SaleService) FindByGatewayPayment(method models.PaymentMethod, gatewayPaymentID string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Where("payment_method = ? AND gateway_payment_id = ?", method, gatewayPaymentID).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *SaleService) GetByID(id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.Preload("Product").Preload("Seller").First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *SaleService) List(filter *SaleFilter) ([]models.Sale, int64, error) {
	query := s.db.Model(&models.Sale{}).Preload("Product")

	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}

	return sales, total, nil
}

// PendingNotification returns sales whose fulfillment emails have not
// been confirmed sent, oldest first, for the retry sweeper.
func (s *SaleService) PendingNotification(limit int) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.Preload("Product").Preload("Seller").
		Where("status = ? AND notify_status = ?", models.PaymentStatusPaid, models.NotifyStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending-notify sales: %w", err)
	}
	return sales, nil
}

func (s *SaleService) MarkNotified(saleID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]interface{}{
			"notify_status": models.NotifyStatusNotified,
			"notified_at":   &now,
		}).Error
}

// SellerSummary aggregates a seller's gross, commission, and net totals.
func (s *SaleService) SellerSummary(sellerID uuid.UUID) (map[string]interface{}, error) {
	var gross, commission float64
	var count int64

	if err := s.db.Model(&models.Sale{}).
		Where("seller_id = ? AND status = ?", sellerID, models.PaymentStatusPaid).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count seller sales: %w", err)
	}
	s.db.Model(&models.Sale{}).
		Where("seller_id = ? AND status = ?", sellerID, models.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&gross)
	s.db.Model(&models.Sale{}).
		Where("seller_id = ? AND status = ?", sellerID, models.PaymentStatusPaid).
		Select("COALESCE(SUM(commission_amount), 0)").Scan(&commission)

	return map[string]interface{}{
		"total_sales":      count,
		"gross_revenue":    gross,
		"commission_total": commission,
		"net_revenue":      gross - commission,
	}, nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Fallback for drivers that bypass gorm's error translation.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}
