package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusIgnored      WebhookEventLogStatus = "ignored"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog keeps an audit trail of every verified webhook delivery.
// Fulfillment failures never surface to the gateway (the dispatcher acks
// regardless), so this log is the only place they are observable.
type WebhookEventLog struct {
	ID            string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway       string                `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	EventID       string                `gorm:"column:event_id;type:varchar(128);index" json:"event_id"`
	EventType     string                `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	TransactionID string                `gorm:"column:transaction_id;type:varchar(128);index" json:"transaction_id"`
	TraceID       string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Data          datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result        *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status        WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
