package garages

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
)

// Repository handles garage persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to garage operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithOwner persists the garage and its owner membership in one
// transaction so a garage never exists without its owner on the roster.
func (r *Repository) CreateWithOwner(ctx context.Context, garage *models.Garage, owner *models.GarageMember) error {
	if garage == nil || owner == nil {
		return fmt.Errorf("garage and owner member are required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(garage).Error; err != nil {
			return err
		}
		owner.GarageID = garage.ID
		return tx.Create(owner).Error
	})
}

// FindByID loads a garage by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error) {
	var garage models.Garage
	if err := r.db.WithContext(ctx).First(&garage, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &garage, nil
}

// ListForUser returns every garage the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Garage, error) {
	var garages []models.Garage
	err := r.db.WithContext(ctx).
		Joins("JOIN garage_members ON garage_members.garage_id = garages.id").
		Where("garage_members.user_id = ?", userID).
		Order("garages.name").
		Find(&garages).Error
	if err != nil {
		return nil, err
	}
	return garages, nil
}

// Update saves the provided garage.
func (r *Repository) Update(ctx context.Context, garage *models.Garage) error {
	if garage == nil {
		return fmt.Errorf("garage is required")
	}
	return r.db.WithContext(ctx).Save(garage).Error
}

// DeleteCascade removes the garage together with its memberships and
// invitations. Cars are the caller's responsibility to check first.
func (r *Repository) DeleteCascade(ctx context.Context, garageID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("garage_id = ?", garageID).Delete(&models.GarageInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("garage_id = ?", garageID).Delete(&models.GarageMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Garage{}, "id = ?", garageID).Error
	})
}
