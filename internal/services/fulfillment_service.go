// internal/services/fulfillment_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

// SaleNotifier sends the buyer and seller emails for a recorded sale.
// NotificationService is the production implementation.
type SaleNotifier interface {
	SendSaleEmails(sale *models.Sale, product *models.Product, seller *models.User, downloadURL string) error
}

// FulfillmentService turns a confirmed payment into a recorded sale, a
// signed download link, and buyer/seller emails. Recording the sale and
// delivering the emails are separate steps: the sale row is the source
// of truth, and NotifyStatus tracks whether delivery still needs to
// happen. A background sweeper retries anything left pending.
type FulfillmentService struct {
	db            *gorm.DB
	cfg           *config.Config
	sales         *SaleService
	downloads     *DownloadService
	notifications SaleNotifier
}

func NewFulfillmentService(db *gorm.DB, cfg *config.Config, sales *SaleService, downloads *DownloadService, notifications SaleNotifier) *FulfillmentService {
	return &FulfillmentService{
		db:            db,
		cfg:           cfg,
		sales:         sales,
		downloads:     downloads,
		notifications: notifications,
	}
}

// Fulfill records the sale for a confirmed payment and attempts email
// delivery. The bool mirrors SaleService.Create: false means this
// payment was already recorded and the call collapsed onto the existing
// row. Email failure is not an error here; the sale stays pending_notify
// and the sweeper picks it up.
func (s *FulfillmentService) Fulfill(input *CreateSaleInput) (*models.Sale, bool, error) {
	sale, created, err := s.sales.Create(input)
	if err != nil {
		return nil, false, err
	}

	if sale.NotifyStatus == models.NotifyStatusNotified {
		return sale, created, nil
	}

	if err := s.deliver(sale); err != nil {
		logrus.WithFields(logrus.Fields{
			"sale_id": sale.ID,
			"error":   err.Error(),
		}).Warn("Fulfillment email delivery failed, left for retry")
	}

	return sale, created, nil
}

// deliver issues a fresh download token, sends both emails, and marks
// the sale notified once the send succeeded.
func (s *FulfillmentService) deliver(sale *models.Sale) error {
	product := sale.Product
	if product.ID == uuid.Nil {
		if err := s.db.First(&product, "id = ?", sale.ProductID).Error; err != nil {
			return fmt.Errorf("failed to load product for fulfillment: %w", err)
		}
	}

	seller := sale.Seller
	if seller.ID == uuid.Nil {
		if err := s.db.First(&seller, "id = ?", sale.SellerID).Error; err != nil {
			return fmt.Errorf("failed to load seller for fulfillment: %w", err)
		}
	}

	token, err := s.downloads.Issue(sale, &product)
	if err != nil {
		return err
	}
	downloadURL := s.downloads.DownloadURL(token)

	if err := s.notifications.SendSaleEmails(sale, &product, &seller, downloadURL); err != nil {
		return err
	}

	return s.sales.MarkNotified(sale.ID)
}

// RetryPending re-attempts delivery for sales still marked
// pending_notify. Returns how many were delivered this pass.
func (s *FulfillmentService) RetryPending(limit int) (int, error) {
	sales, err := s.sales.PendingNotification(limit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := range sales {
		if err := s.deliver(&sales[i]); err != nil {
			logrus.WithFields(logrus.Fields{
				"sale_id": sales[i].ID,
				"error":   err.Error(),
			}).Warn("Fulfillment retry failed")
			continue
		}
		delivered++
	}

	return delivered, nil
}

// Run sweeps pending notifications on an interval until ctx is done.
func (s *FulfillmentService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			delivered, err := s.RetryPending(50)
			if err != nil {
				logrus.WithError(err).Error("Fulfillment sweep failed")
				continue
			}
			if delivered > 0 {
				logrus.WithField("delivered", delivered).Info("Fulfillment sweep delivered pending emails")
			}
		}
	}
}
