package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

type billingRepository interface {
	ListPlans(ctx context.Context) ([]models.BillingPlan, error)
	FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error)
	FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
}

// Service exposes the pricing page and the account's plan binding.
type Service interface {
	ListPlans(ctx context.Context) ([]PlanDTO, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error)
	EnsureFreeSubscription(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo billingRepository
}

// ServiceParams bundles the dependencies required to build the billing service.
type ServiceParams struct {
	Repo billingRepository
}

// NewService constructs a billing service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("billing repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListPlans(ctx context.Context) ([]PlanDTO, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	dtos := make([]PlanDTO, 0, len(plans))
	for i := range plans {
		dtos = append(dtos, *PlanFromModel(&plans[i]))
	}
	return dtos, nil
}

func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error) {
	sub, err := s.repo.FindSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Accounts without a row behave as free, same as entitlements.
			sub = &models.Subscription{
				UserID:   userID,
				PlanType: enums.PlanTypeFree,
				Status:   enums.SubscriptionStatusActive,
			}
		} else {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
	}
	plan, err := s.repo.FindPlan(ctx, sub.PlanType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	return SubscriptionFromModel(sub, plan), nil
}

// EnsureFreeSubscription seeds the free-plan row for a new account. Existing
// rows are left alone so re-registration retries stay idempotent.
func (s *service) EnsureFreeSubscription(ctx context.Context, userID uuid.UUID) error {
	_, err := s.repo.FindSubscription(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	sub := &models.Subscription{
		UserID:   userID,
		PlanType: enums.PlanTypeFree,
		Status:   enums.SubscriptionStatusActive,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return nil
}
