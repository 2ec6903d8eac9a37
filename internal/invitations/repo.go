package invitations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// Repository manages invitation persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new invitation.
func (r *Repository) Create(ctx context.Context, invitation *models.GarageInvitation) error {
	if invitation == nil {
		return fmt.Errorf("invitation is required")
	}
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByID loads an invitation by its token.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GarageInvitation, error) {
	var invitation models.GarageInvitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Update saves the invitation row.
func (r *Repository) Update(ctx context.Context, invitation *models.GarageInvitation) error {
	if invitation == nil {
		return fmt.Errorf("invitation is required")
	}
	return r.db.WithContext(ctx).Save(invitation).Error
}

// PendingExists reports whether the garage already has a pending invitation
// for the email.
func (r *Repository) PendingExists(ctx context.Context, garageID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GarageInvitation{}).
		Where("garage_id = ? AND invitee_email = ? AND status = ?", garageID, email, enums.InvitationStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AcceptWithMember marks the invitation accepted and appends the membership
// in one transaction, so acceptance is single-use even under a crash between
// the two writes.
func (r *Repository) AcceptWithMember(ctx context.Context, invitation *models.GarageInvitation, member *models.GarageMember) error {
	if invitation == nil || member == nil {
		return fmt.Errorf("invitation and member are required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Save(invitation).Error
	})
}
