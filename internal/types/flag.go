package types

import (
	"time"

	"github.com/google/uuid"
)

type Flag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index;column:listing_id" json:"listing_id"`
	SellerID  string    `gorm:"not null;column:seller_id" json:"seller_id"`
	Severity  Severity  `gorm:"not null;column:severity" json:"severity"`
	Reason    string    `gorm:"not null;column:reason" json:"reason"`
	Reviewed  bool      `gorm:"not null;default:false;index;column:reviewed" json:"reviewed"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (Flag) TableName() string { return "flag" }
