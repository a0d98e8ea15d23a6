package audit

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionSubmitFundRequest = "submit_fund_request"
	ActionPickImage         = "pick_image"

	ResourceFundRequest = "fund_request"
)

// Outcome values recorded for a submission attempt.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomeUploadFailed     = "upload_failed"
	OutcomePersistFailed    = "persist_failed"
	OutcomePermissionDenied = "permission_denied"
)

type AuditLog struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       string         `json:"user_id" gorm:"index;size:128"`
	Action       string         `json:"action" gorm:"size:64;index"`
	ResourceType string         `json:"resource_type" gorm:"size:64"`
	ResourceID   string         `json:"resource_id" gorm:"size:64"`
	Outcome      string         `json:"outcome" gorm:"size:32;index"`
	Details      datatypes.JSON `json:"details"`
	Description  string         `json:"description"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
}
