package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// Repository handles plan and subscription persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to billing operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPlans returns every plan, cheapest first.
func (r *Repository) ListPlans(ctx context.Context) ([]models.BillingPlan, error) {
	var plans []models.BillingPlan
	err := r.db.WithContext(ctx).Order("price_amount ASC").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// FindPlan loads a plan by its tier.
func (r *Repository) FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error) {
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", planType).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindSubscription loads the user's subscription row.
func (r *Repository) FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription persists a new subscription row.
func (r *Repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	return r.db.WithContext(ctx).Create(sub).Error
}
