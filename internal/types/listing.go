package types

import (
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "Active"
	ListingStatusFlagged ListingStatus = "Flagged"
	ListingStatusBanned  ListingStatus = "Banned"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusFlagged, ListingStatusBanned:
		return true
	}
	return false
}

type Listing struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SellerID      string        `gorm:"not null;index;column:seller_id" json:"seller_id"`
	Title         string        `gorm:"not null;column:title" json:"title"`
	Description   string        `gorm:"not null;column:description" json:"description"`
	Category      *string       `gorm:"column:category" json:"category,omitempty"`
	Price         *float64      `gorm:"column:price" json:"price,omitempty"`
	Inventory     *int          `gorm:"column:inventory" json:"inventory,omitempty"`
	ImageURL      *string       `gorm:"column:image_url" json:"image_url,omitempty"`
	Status        ListingStatus `gorm:"not null;default:'Active';index;column:status" json:"status"`
	LastCheckedAt *time.Time    `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:now()" json:"updated_at"`

	// Latest evaluation, attached on reads. Not a column.
	Compliance *Verdict `gorm:"-" json:"compliance,omitempty"`
}

func (Listing) TableName() string { return "listing" }
