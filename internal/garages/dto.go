package garages

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
)

// PartnerInfoDTO is the partner block on a garage. Present iff the garage has
// a partner.
type PartnerInfoDTO struct {
	Name       string  `json:"name"`
	SplitRatio int64   `json:"split_ratio"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// GarageDTO exposes garage data in API responses.
type GarageDTO struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	HasPartner  bool            `json:"has_partner"`
	Partner     *PartnerInfoDTO `json:"partner,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromModel maps the persisted garage into a DTO.
func FromModel(m *models.Garage) *GarageDTO {
	if m == nil {
		return nil
	}
	dto := &GarageDTO{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		HasPartner:  m.HasPartner,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.HasPartner && m.PartnerName != nil && m.PartnerSplitRatio != nil {
		dto.Partner = &PartnerInfoDTO{
			Name:       *m.PartnerName,
			SplitRatio: *m.PartnerSplitRatio,
			Email:      m.PartnerEmail,
			Phone:      m.PartnerPhone,
			Notes:      m.PartnerNotes,
		}
	}
	return dto
}
