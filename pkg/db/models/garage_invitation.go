package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// GarageInvitation is a time-boxed, single-use offer of membership. The row id
// doubles as the opaque token handed to the invitee. Permission flags are a
// snapshot taken at invite time from the role defaults.
type GarageInvitation struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GarageID      uuid.UUID              `gorm:"column:garage_id;type:uuid;not null;index"`
	GarageName    string                 `gorm:"column:garage_name;not null"`
	InviterUserID uuid.UUID              `gorm:"column:inviter_user_id;type:uuid;not null"`
	InviterName   string                 `gorm:"column:inviter_name;not null"`
	InviterEmail  string                 `gorm:"column:inviter_email;not null"`
	InviteeEmail  string                 `gorm:"column:invitee_email;not null;index"`
	Role          enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Permissions   PermissionSet          `gorm:"embedded"`
	Status        enums.InvitationStatus `gorm:"column:status;type:invitation_status;not null;default:'pending'"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt     time.Time              `gorm:"column:expires_at;not null"`
	AcceptedAt    *time.Time             `gorm:"column:accepted_at"`
	DeclinedAt    *time.Time             `gorm:"column:declined_at"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
