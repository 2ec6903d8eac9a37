package entitlements

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

type entitlementRepository interface {
	FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error)
	CountUsage(ctx context.Context, userID uuid.UUID) (Usage, error)
}

// Checker is the admission gate consulted before every garage/car/partner
// create.
type Checker interface {
	CheckCreate(ctx context.Context, userID uuid.UUID, kind enums.LimitedResource) error
}

type service struct {
	repo entitlementRepository
}

// NewService builds the entitlement checker.
func NewService(repo entitlementRepository) (Checker, error) {
	if repo == nil {
		return nil, fmt.Errorf("entitlement repository is required")
	}
	return &service{repo: repo}, nil
}

// LimitDetails is attached to LIMIT_REACHED errors so the client can render
// the upgrade prompt.
type LimitDetails struct {
	Resource enums.LimitedResource `json:"resource"`
	Plan     enums.PlanType        `json:"plan"`
	Limit    int64                 `json:"limit"`
	Used     int64                 `json:"used"`
}

func (s *service) CheckCreate(ctx context.Context, userID uuid.UUID, kind enums.LimitedResource) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown resource kind %q", kind))
	}

	planType := enums.PlanTypeFree
	sub, err := s.repo.FindSubscription(ctx, userID)
	switch {
	case err == nil:
		planType = sub.PlanType
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Accounts without a subscription row fall back to the free tier.
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	plan, err := s.repo.FindPlan(ctx, planType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing plan")
	}

	usage, err := s.repo.CountUsage(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count resource usage")
	}

	limits := LimitsFromPlan(plan)
	if !CanCreate(kind, usage, limits) {
		return pkgerrors.New(pkgerrors.CodeLimitReached, fmt.Sprintf("%s limit reached for the %s plan", kind, planType)).
			WithDetails(LimitDetails{
				Resource: kind,
				Plan:     planType,
				Limit:    limits.For(kind),
				Used:     usage.For(kind),
			})
	}
	return nil
}
