package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
	StatusIgnored   Status = "ignored"
)

// Event is one gateway webhook delivery. WebhookID is the gateway's own
// delivery id and deduplicates retries at the database level.
type Event struct {
	ID               snowflake.ID   `json:"id" gorm:"primaryKey"`
	WebhookID        string         `json:"webhook_id" gorm:"uniqueIndex;size:128"`
	EventType        string         `json:"event_type" gorm:"index;size:64"`
	GatewayInvoiceID string         `json:"gateway_invoice_id" gorm:"index;size:128"`
	Payload          datatypes.JSON `json:"payload"`
	Status           Status         `json:"status" gorm:"index;size:16;default:pending"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	ProcessedAt      *time.Time     `json:"processed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Event) TableName() string {
	return "webhook_events"
}

// CanRetry reports whether a manual retry is allowed. Only failed
// deliveries retry; everything else stays as it is.
func (e Event) CanRetry() bool {
	return e.Status == StatusFailed
}
