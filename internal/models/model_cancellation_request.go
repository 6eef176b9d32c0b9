package models

import "time"

type CancellationRequestStatus string

const (
	CancellationRequestStatusPending CancellationRequestStatus = "pending"
	CancellationRequestStatusSettled CancellationRequestStatus = "settled"
)

// CancellationRequest exists for the duration of the proration payment leg.
// The subscription it references stays active until a PaymentConfirmed event
// tagged with OrderID is recorded; an abandoned or failed payment leaves the
// request pending and billing untouched.
type CancellationRequest struct {
	ID              string                    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID  string                    `gorm:"column:subscription_id;type:varchar(128);not null;index" json:"subscription_id"`
	MonthsRemaining int                       `gorm:"column:months_remaining;not null" json:"months_remaining"`
	AmountDue       int64                     `gorm:"column:amount_due;type:bigint;not null" json:"amount_due"`
	Currency        string                    `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	OrderID         string                    `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex" json:"order_id"`
	Status          CancellationRequestStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	SettledAt       *time.Time                `gorm:"column:settled_at;default:null" json:"settled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CancellationRequest) TableName() string {
	return "cancellation_request"
}
