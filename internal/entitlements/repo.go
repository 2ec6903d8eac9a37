package entitlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// Repository answers the queries the entitlement checker needs: the account's
// subscription, the plan ceilings, and live resource counts. Usage is always
// recomputed by counting rows so the check self-corrects after partial
// failures.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindSubscription loads the account's subscription row.
func (r *Repository) FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindPlan loads one billing plan by tier.
func (r *Repository) FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error) {
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", planType).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// CountUsage recomputes the account's live resource counts.
func (r *Repository) CountUsage(ctx context.Context, userID uuid.UUID) (Usage, error) {
	var usage Usage

	if err := r.db.WithContext(ctx).
		Model(&models.Garage{}).
		Where("owner_id = ?", userID).
		Count(&usage.Garages).Error; err != nil {
		return Usage{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Joins("JOIN garages ON garages.id = cars.garage_id").
		Where("garages.owner_id = ?", userID).
		Count(&usage.Cars).Error; err != nil {
		return Usage{}, err
	}

	// Pending partner invitations count against the ceiling so an account
	// cannot queue up more partners than the plan allows.
	var partnerMembers, pendingInvites int64
	if err := r.db.WithContext(ctx).
		Model(&models.GarageMember{}).
		Joins("JOIN garages ON garages.id = garage_members.garage_id").
		Where("garages.owner_id = ? AND garage_members.role = ?", userID, enums.MemberRolePartner).
		Count(&partnerMembers).Error; err != nil {
		return Usage{}, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.GarageInvitation{}).
		Joins("JOIN garages ON garages.id = garage_invitations.garage_id").
		Where("garages.owner_id = ? AND garage_invitations.role = ? AND garage_invitations.status = ?",
			userID, enums.MemberRolePartner, enums.InvitationStatusPending).
		Count(&pendingInvites).Error; err != nil {
		return Usage{}, err
	}
	usage.Partners = partnerMembers + pendingInvites

	return usage, nil
}
