package types

import (
	"time"

	"github.com/google/uuid"
)

type AppealStatus string

const (
	AppealStatusPending  AppealStatus = "pending"
	AppealStatusApproved AppealStatus = "approved"
	AppealStatusRejected AppealStatus = "rejected"
)

func (s AppealStatus) Valid() bool {
	switch s {
	case AppealStatusPending, AppealStatusApproved, AppealStatusRejected:
		return true
	}
	return false
}

type Appeal struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID  uuid.UUID    `gorm:"type:uuid;not null;index;column:listing_id" json:"listing_id"`
	SellerID   string       `gorm:"not null;column:seller_id" json:"seller_id"`
	Reason     string       `gorm:"not null;column:reason" json:"reason"`
	Status     AppealStatus `gorm:"not null;default:'pending';index;column:status" json:"status"`
	CreatedAt  time.Time    `gorm:"not null;default:now();index" json:"created_at"`
	ResolvedAt *time.Time   `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
}

func (Appeal) TableName() string { return "appeal" }
