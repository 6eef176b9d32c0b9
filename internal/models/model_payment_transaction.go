package models

import (
	"time"

	"github.com/lumenworks/storefront/pkg/types"

	"gorm.io/datatypes"
)

// PaymentTransaction is the persisted, never-mutated record of a confirmed
// payment. The unique index on transaction_id is the idempotency guard every
// downstream consumer relies on: a row either inserts exactly once or the
// insert is a no-op.
type PaymentTransaction struct {
	ID            string               `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string               `gorm:"column:transaction_id;type:varchar(128);not null;uniqueIndex" json:"transaction_id"`
	Gateway       types.PaymentGateway `gorm:"column:gateway;type:varchar(32);not null" json:"gateway"`
	Kind          types.GatewayKind    `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	Purpose       types.PaymentPurpose `gorm:"column:purpose;type:varchar(32);not null" json:"purpose"`
	Status        types.PaymentStatus  `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Amount        int64                `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency      string               `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	CustomerEmail string               `gorm:"column:customer_email;type:varchar(255);index" json:"customer_email"`
	CustomerName  string               `gorm:"column:customer_name;type:varchar(255)" json:"customer_name"`
	// Exactly one of SubscriptionID / DeliverableIDs is set; the recorder
	// rejects payloads carrying neither or both.
	SubscriptionID *string                     `gorm:"column:subscription_id;type:varchar(128);index" json:"subscription_id,omitempty"`
	PlanID         string                      `gorm:"column:plan_id;type:varchar(64)" json:"plan_id,omitempty"`
	DeliverableIDs datatypes.JSONSlice[string] `gorm:"column:deliverable_ids;type:jsonb" json:"deliverable_ids,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transaction"
}

// IsSubscriptionPayment reports whether the row settles a subscription
// (either the original purchase or a cancellation fee).
func (t *PaymentTransaction) IsSubscriptionPayment() bool {
	return t != nil && t.SubscriptionID != nil && *t.SubscriptionID != ""
}
