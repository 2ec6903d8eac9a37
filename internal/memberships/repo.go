package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMember retrieves a membership by garage and user.
func (r *Repository) GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error) {
	var member models.GarageMember
	err := r.db.WithContext(ctx).
		Where("garage_id = ? AND user_id = ?", garageID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers returns the garage roster ordered by join time.
func (r *Repository) ListMembers(ctx context.Context, garageID uuid.UUID) ([]models.GarageMember, error) {
	var members []models.GarageMember
	err := r.db.WithContext(ctx).
		Where("garage_id = ?", garageID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// CreateMember persists a new membership record.
func (r *Repository) CreateMember(ctx context.Context, member *models.GarageMember) error {
	if member == nil {
		return fmt.Errorf("member is required")
	}
	if !member.Role.IsValid() {
		return fmt.Errorf("invalid member role %q", member.Role)
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// DeleteMember removes the membership linking the user to the garage.
func (r *Repository) DeleteMember(ctx context.Context, garageID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("garage_id = ? AND user_id = ?", garageID, userID).
		Delete(&models.GarageMember{}).Error
}

// EmailIsMember reports whether any roster entry carries the provided email.
func (r *Repository) EmailIsMember(ctx context.Context, garageID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GarageMember{}).
		Where("garage_id = ? AND email = ?", garageID, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
