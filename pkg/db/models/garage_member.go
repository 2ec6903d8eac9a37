package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// GarageMember links a user with a garage and captures their role and
// permission flags. A garage has exactly one owner member.
type GarageMember struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GarageID        uuid.UUID        `gorm:"column:garage_id;type:uuid;not null;uniqueIndex:idx_garage_members_garage_user"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_garage_members_garage_user"`
	Email           string           `gorm:"column:email;not null"`
	Name            string           `gorm:"column:name;not null"`
	Role            enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	Permissions     PermissionSet    `gorm:"embedded"`
	InvitedByUserID *uuid.UUID       `gorm:"column:invited_by_user_id;type:uuid"`
	JoinedAt        time.Time        `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
