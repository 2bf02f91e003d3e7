// internal/services/fulfillment_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rufinostore/bubastore/internal/models"
)

// recordingNotifier counts email dispatches instead of sending anything.
type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (n *recordingNotifier) SendSaleEmails(sale *models.Sale, product *models.Product, seller *models.User, downloadURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func (n *recordingNotifier) fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func newTestFulfillment(db *gorm.DB, notifier SaleNotifier) *FulfillmentService {
	cfg := servicesTestConfig()
	return NewFulfillmentService(db, cfg, NewSaleService(db, cfg), NewDownloadService(cfg), notifier)
}

func TestFulfillDeliversAndMarksNotified(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	notifier := &recordingNotifier{}
	fulfillment := newTestFulfillment(db, notifier)

	sale, created, err := fulfillment.Fulfill(saleInputFor(seller, product, "pi_10"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, notifier.count())

	var reloaded models.Sale
	require.NoError(t, db.First(&reloaded, "id = ?", sale.ID).Error)
	assert.Equal(t, models.NotifyStatusNotified, reloaded.NotifyStatus)
	require.NotNil(t, reloaded.NotifiedAt)
}

func TestFulfillDoesNotResendForDuplicatePayment(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	notifier := &recordingNotifier{}
	fulfillment := newTestFulfillment(db, notifier)

	first, created, err := fulfillment.Fulfill(saleInputFor(seller, product, "pi_11"))
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, notifier.count())

	// Redelivered payment collapses onto the notified sale; the emails
	// must not go out a second time.
	second, created, err := fulfillment.Fulfill(saleInputFor(seller, product, "pi_11"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, notifier.count())

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFulfillEmailFailureLeavesPendingForSweeper(t *testing.T) {
	db := newTestDB(t)
	seller, product := seedSellerAndProduct(t, db)
	notifier := &recordingNotifier{}
	notifier.fail(errors.New("smtp unreachable"))
	fulfillment := newTestFulfillment(db, notifier)

	sale, created, err := fulfillment.Fulfill(saleInputFor(seller, product, "pi_12"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, notifier.count())

	var reloaded models.Sale
	require.NoError(t, db.First(&reloaded, "id = ?", sale.ID).Error)
	assert.Equal(t, models.NotifyStatusPending, reloaded.NotifyStatus)
	assert.Nil(t, reloaded.NotifiedAt)

	// SMTP recovers; the sweeper delivers the pending sale.
	notifier.fail(nil)
	delivered, err := fulfillment.RetryPending(10)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
	assert.Equal(t, 2, notifier.count())

	require.NoError(t, db.First(&reloaded, "id = ?", sale.ID).Error)
	assert.Equal(t, models.NotifyStatusNotified, reloaded.NotifyStatus)
	require.NotNil(t, reloaded.NotifiedAt)
}
