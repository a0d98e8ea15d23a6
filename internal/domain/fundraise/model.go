package fundraise

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

// FundingRequest is written once per successful submission. Approval and
// fund tracking are handled elsewhere.
type FundingRequest struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	UserID          string          `json:"userId" gorm:"index;size:128;not null"`
	Title           string          `json:"title" gorm:"not null"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	AmountRequested decimal.Decimal `json:"amountRequested" gorm:"type:numeric(18,2);not null"`
	AmountRaised    decimal.Decimal `json:"amountRaised" gorm:"type:numeric(18,2);not null"`
	Status          RequestStatus   `json:"status" gorm:"size:32;index;default:'pending'"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	BlogImg         string          `json:"blogImg" gorm:"column:blog_img;not null"`
}

func (FundingRequest) TableName() string {
	return "fund_requests"
}

func (r *FundingRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewPendingRequest builds the record for a validated draft and its image URL.
func NewPendingRequest(userID string, d Draft, imageURL string, now time.Time) *FundingRequest {
	return &FundingRequest{
		UserID:          userID,
		Title:           d.Title,
		Description:     d.Description,
		AmountRequested: d.Amount,
		AmountRaised:    decimal.Zero,
		Status:          RequestStatusPending,
		CreatedAt:       now,
		BlogImg:         imageURL,
	}
}
