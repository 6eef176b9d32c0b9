package models

import (
	"time"

	"github.com/lumenworks/storefront/pkg/types"
)

// Subscription stores one sold subscription plan. It is activated when the
// original purchase payment is recorded and only transitions to inactive
// after a prorated cancellation fee has been captured and recorded.
type Subscription struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// SubscriptionID is the gateway-side subscription identifier.
	SubscriptionID string                   `gorm:"column:subscription_id;type:varchar(128);not null;uniqueIndex" json:"subscription_id"`
	PlanID         string                   `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`
	CustomerEmail  string                   `gorm:"column:customer_email;type:varchar(255);not null;index" json:"customer_email"`
	Status         types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	MonthlyPrice   int64                    `gorm:"column:monthly_price;type:bigint;not null" json:"monthly_price"`
	Currency       string                   `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	// BillingAnchorAt is the start of the committed billing period; months
	// remaining for proration are computed against it.
	BillingAnchorAt time.Time  `gorm:"column:billing_anchor_at;not null" json:"billing_anchor_at"`
	CommittedMonths int        `gorm:"column:committed_months;not null" json:"committed_months"`
	DeactivatedAt   *time.Time `gorm:"column:deactivated_at;default:null" json:"deactivated_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

func (s *Subscription) Active() bool {
	return s != nil && s.Status == types.SubscriptionStatusActive
}
