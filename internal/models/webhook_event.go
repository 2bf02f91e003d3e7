// internal/models/webhook_event.go
package models

import (
	"time"
)

// WebhookEvent stores every verified gateway notification keyed by the
// provider's event id. Gateways deliver at-least-once; the unique index
// turns a redelivery into a no-op instead of a duplicate fulfillment.
type WebhookEvent struct {
	BaseModel
	Provider        PaymentMethod `json:"provider" gorm:"type:varchar(20);not null;uniqueIndex:idx_webhook_events_provider_event,priority:1"`
	ProviderEventID string        `json:"provider_event_id" gorm:"size:255;not null;uniqueIndex:idx_webhook_events_provider_event,priority:2"`
	EventType       string        `json:"event_type" gorm:"size:100;not null;index"`
	PayloadHash     string        `json:"payload_hash" gorm:"size:64"`
	ProcessedAt     *time.Time    `json:"processed_at"`
	ProcessingError string        `json:"processing_error,omitempty" gorm:"type:text"`
}
