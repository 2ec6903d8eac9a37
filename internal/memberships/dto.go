package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// MemberDTO is the roster entry returned by the members endpoint.
type MemberDTO struct {
	UserID      uuid.UUID            `json:"user_id"`
	Email       string               `json:"email"`
	Name        string               `json:"name"`
	Role        enums.MemberRole     `json:"role"`
	Permissions models.PermissionSet `json:"permissions"`
	JoinedAt    time.Time            `json:"joined_at"`
}

// FromModel maps a membership row into its roster DTO.
func FromModel(m *models.GarageMember) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		UserID:      m.UserID,
		Email:       m.Email,
		Name:        m.Name,
		Role:        m.Role,
		Permissions: m.Permissions,
		JoinedAt:    m.JoinedAt,
	}
}
