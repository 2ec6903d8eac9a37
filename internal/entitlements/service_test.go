package entitlements

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

type stubEntitlementRepo struct {
	sub     *models.Subscription
	subErr  error
	plans   map[enums.PlanType]*models.BillingPlan
	usage   Usage
	usageFn func() Usage
}

func (s *stubEntitlementRepo) FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	return s.sub, nil
}

func (s *stubEntitlementRepo) FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error) {
	plan, ok := s.plans[planType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (s *stubEntitlementRepo) CountUsage(ctx context.Context, userID uuid.UUID) (Usage, error) {
	if s.usageFn != nil {
		return s.usageFn(), nil
	}
	return s.usage, nil
}

func testPlans() map[enums.PlanType]*models.BillingPlan {
	return map[enums.PlanType]*models.BillingPlan{
		enums.PlanTypeFree:    {ID: enums.PlanTypeFree, GarageLimit: 1, CarLimit: 5, PartnerLimit: 0},
		enums.PlanTypeStarter: {ID: enums.PlanTypeStarter, GarageLimit: 3, CarLimit: 20, PartnerLimit: 5},
		enums.PlanTypePro:     {ID: enums.PlanTypePro, GarageLimit: -1, CarLimit: -1, PartnerLimit: -1},
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestCheckCreateFreePlanAtGarageLimit(t *testing.T) {
	repo := &stubEntitlementRepo{
		sub:   &models.Subscription{PlanType: enums.PlanTypeFree},
		plans: testPlans(),
		usage: Usage{Garages: 1},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.CheckCreate(context.Background(), uuid.New(), enums.LimitedResourceGarages)
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeLimitReached) {
		t.Fatalf("expected limit reached, got %v", gotErr)
	}

	typed := pkgerrors.As(gotErr)
	details, ok := typed.Details().(LimitDetails)
	if !ok {
		t.Fatalf("expected limit details, got %T", typed.Details())
	}
	if details.Plan != enums.PlanTypeFree || details.Limit != 1 || details.Used != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestCheckCreateAdmitsUnderLimit(t *testing.T) {
	repo := &stubEntitlementRepo{
		sub:   &models.Subscription{PlanType: enums.PlanTypeStarter},
		plans: testPlans(),
		usage: Usage{Garages: 2, Cars: 19, Partners: 4},
	}
	svc, _ := NewService(repo)

	for _, kind := range []enums.LimitedResource{
		enums.LimitedResourceGarages,
		enums.LimitedResourceCars,
		enums.LimitedResourcePartners,
	} {
		if err := svc.CheckCreate(context.Background(), uuid.New(), kind); err != nil {
			t.Fatalf("kind=%s: expected admit, got %v", kind, err)
		}
	}
}

func TestCheckCreateProPlanUnlimited(t *testing.T) {
	repo := &stubEntitlementRepo{
		sub:   &models.Subscription{PlanType: enums.PlanTypePro},
		plans: testPlans(),
		usage: Usage{Garages: 9000, Cars: 9000, Partners: 9000},
	}
	svc, _ := NewService(repo)

	if err := svc.CheckCreate(context.Background(), uuid.New(), enums.LimitedResourceCars); err != nil {
		t.Fatalf("expected unlimited admit, got %v", err)
	}
}

func TestCheckCreateMissingSubscriptionFallsBackToFree(t *testing.T) {
	repo := &stubEntitlementRepo{
		subErr: gorm.ErrRecordNotFound,
		plans:  testPlans(),
		usage:  Usage{Partners: 0},
	}
	svc, _ := NewService(repo)

	// Free allows zero partners, so even the first one is rejected.
	gotErr := svc.CheckCreate(context.Background(), uuid.New(), enums.LimitedResourcePartners)
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeLimitReached) {
		t.Fatalf("expected limit reached on free fallback, got %v", gotErr)
	}
}

func TestCheckCreateSubscriptionLookupFailure(t *testing.T) {
	repo := &stubEntitlementRepo{
		subErr: errors.New("boom"),
		plans:  testPlans(),
	}
	svc, _ := NewService(repo)

	gotErr := svc.CheckCreate(context.Background(), uuid.New(), enums.LimitedResourceGarages)
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestCheckCreateInvalidKind(t *testing.T) {
	svc, _ := NewService(&stubEntitlementRepo{plans: testPlans()})
	gotErr := svc.CheckCreate(context.Background(), uuid.New(), enums.LimitedResource("boats"))
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}

func TestCheckCreateUsageIsRecountedEachCheck(t *testing.T) {
	// Usage comes from counting live rows, so a delete that never touched a
	// counter still frees capacity on the next check.
	liveCars := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	repo := &stubEntitlementRepo{
		sub:     &models.Subscription{PlanType: enums.PlanTypeFree},
		plans:   testPlans(),
		usageFn: func() Usage { return Usage{Cars: int64(len(liveCars))} },
	}
	svc, _ := NewService(repo)
	userID := uuid.New()

	gotErr := svc.CheckCreate(context.Background(), userID, enums.LimitedResourceCars)
	if !pkgerrors.HasCode(gotErr, pkgerrors.CodeLimitReached) {
		t.Fatalf("expected limit reached at 5/5 cars, got %v", gotErr)
	}

	liveCars = liveCars[:4]
	if err := svc.CheckCreate(context.Background(), userID, enums.LimitedResourceCars); err != nil {
		t.Fatalf("expected admit after row delete, got %v", err)
	}
}
