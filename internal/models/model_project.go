package models

import (
	"time"

	"github.com/lumenworks/storefront/pkg/types"

	"gorm.io/datatypes"
)

// Project is the system-of-record row created once per confirmed payment.
// ProjectKey is derived deterministically from the transaction id and never
// changes; the status/step fields are mutated by operators through the
// project state machine and must stay synchronized with Steps.
type Project struct {
	ID          string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	ProjectKey  string `gorm:"column:project_key;type:varchar(32);not null;uniqueIndex" json:"project_key"`
	Email       string `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	Description string `gorm:"column:description;type:text" json:"description"`
	TrackerURL  string `gorm:"column:tracker_url;type:varchar(512)" json:"tracker_url"`
	ChatURL     string `gorm:"column:chat_url;type:varchar(512)" json:"chat_url"`

	Status           string                                  `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CurrentStepIndex int                                     `gorm:"column:current_step_index;not null;default:0" json:"current_step_index"`
	Steps            datatypes.JSONType[[]types.ProjectStep] `gorm:"column:steps;type:jsonb;default:'[]'" json:"steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "project"
}
