package user

import "time"

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// Profile is the subset of the user document this service reads.
// The record is owned by the identity service.
type Profile struct {
	UID         string    `json:"uid" gorm:"column:uid;primaryKey;size:128"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	KYCStatus   KYCStatus `json:"kyc_status" gorm:"column:kyc_status;size:32;default:'pending'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "users"
}

func (p *Profile) KYCApproved() bool {
	return p != nil && p.KYCStatus == KYCStatusApproved
}
