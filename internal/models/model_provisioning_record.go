package models

import (
	"time"

	"github.com/lumenworks/storefront/pkg/types"

	"gorm.io/datatypes"
)

// ProvisioningRecord is the persisted step ledger of one fulfillment run,
// keyed by transaction id. Duplicate payment deliveries return the stored
// ledger instead of re-running provisioning, and the re-run entry point uses
// it to retry only the steps that failed.
type ProvisioningRecord struct {
	ID            string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string `gorm:"column:transaction_id;type:varchar(128);not null;uniqueIndex" json:"transaction_id"`
	ProjectKey    string `gorm:"column:project_key;type:varchar(32);not null" json:"project_key"`
	TrackerURL    string `gorm:"column:tracker_url;type:varchar(512)" json:"tracker_url"`
	ChatURL       string `gorm:"column:chat_url;type:varchar(512)" json:"chat_url"`
	InviteSent    bool   `gorm:"column:invite_sent;not null;default:false" json:"invite_sent"`

	Errors datatypes.JSONType[[]types.ProvisionStepError] `gorm:"column:errors;type:jsonb;default:'[]'" json:"errors"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProvisioningRecord) TableName() string {
	return "provisioning_record"
}

// ToResult converts the stored ledger back to the orchestrator result shape.
func (r *ProvisioningRecord) ToResult() *types.ProvisioningResult {
	if r == nil {
		return nil
	}
	return &types.ProvisioningResult{
		TransactionID:  r.TransactionID,
		ProjectKey:     r.ProjectKey,
		TrackerURL:     r.TrackerURL,
		ChatChannelURL: r.ChatURL,
		InviteSent:     r.InviteSent,
		Errors:         r.Errors.Data(),
	}
}
