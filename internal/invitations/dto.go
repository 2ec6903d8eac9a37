package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// InvitationDTO is what the invite link renders before the invitee decides.
// The row id doubles as the opaque token.
type InvitationDTO struct {
	Token        uuid.UUID              `json:"token"`
	GarageID     uuid.UUID              `json:"garage_id"`
	GarageName   string                 `json:"garage_name"`
	InviterName  string                 `json:"inviter_name"`
	InviterEmail string                 `json:"inviter_email"`
	InviteeEmail string                 `json:"invitee_email"`
	Role         enums.MemberRole       `json:"role"`
	Permissions  models.PermissionSet   `json:"permissions"`
	Status       enums.InvitationStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	ExpiresAt    time.Time              `json:"expires_at"`
}

// FromModel maps the persisted invitation into a DTO.
func FromModel(m *models.GarageInvitation) *InvitationDTO {
	if m == nil {
		return nil
	}
	return &InvitationDTO{
		Token:        m.ID,
		GarageID:     m.GarageID,
		GarageName:   m.GarageName,
		InviterName:  m.InviterName,
		InviterEmail: m.InviterEmail,
		InviteeEmail: m.InviteeEmail,
		Role:         m.Role,
		Permissions:  m.Permissions,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
		ExpiresAt:    m.ExpiresAt,
	}
}
