package models

import (
	"time"

	"github.com/google/uuid"
)

// Garage is the tenant container for cars and memberships. Partner columns
// are populated iff HasPartner is true; clearing the partnership nulls every
// partner_* column so the invariant survives round trips.
type Garage struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`

	HasPartner        bool    `gorm:"column:has_partner;not null;default:false"`
	PartnerName       *string `gorm:"column:partner_name"`
	PartnerSplitRatio *int64  `gorm:"column:partner_split_ratio"`
	PartnerEmail      *string `gorm:"column:partner_email"`
	PartnerPhone      *string `gorm:"column:partner_phone"`
	PartnerNotes      *string `gorm:"column:partner_notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
