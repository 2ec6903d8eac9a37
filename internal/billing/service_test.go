package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

type stubBillingRepo struct {
	plans   []models.BillingPlan
	subs    map[uuid.UUID]*models.Subscription
	created []*models.Subscription
}

func newStubBillingRepo() *stubBillingRepo {
	return &stubBillingRepo{
		plans: []models.BillingPlan{
			{ID: enums.PlanTypeFree, Name: "Free", PriceAmount: decimal.Zero, GarageLimit: 1, CarLimit: 5, IsDefault: true},
			{ID: enums.PlanTypeStarter, Name: "Starter", PriceAmount: decimal.RequireFromString("9.99"), GarageLimit: 3, CarLimit: 20, PartnerLimit: 5},
			{ID: enums.PlanTypePro, Name: "Pro", PriceAmount: decimal.RequireFromString("24.99"), GarageLimit: -1, CarLimit: -1, PartnerLimit: -1},
		},
		subs: map[uuid.UUID]*models.Subscription{},
	}
}

func (s *stubBillingRepo) ListPlans(ctx context.Context) ([]models.BillingPlan, error) {
	return s.plans, nil
}

func (s *stubBillingRepo) FindPlan(ctx context.Context, planType enums.PlanType) (*models.BillingPlan, error) {
	for i := range s.plans {
		if s.plans[i].ID == planType {
			return &s.plans[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBillingRepo) FindSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub, ok := s.subs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

func (s *stubBillingRepo) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.ID = uuid.New()
	s.subs[sub.UserID] = sub
	s.created = append(s.created, sub)
	return nil
}

func newBillingService(t *testing.T) (Service, *stubBillingRepo) {
	t.Helper()
	repo := newStubBillingRepo()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func TestListPlans(t *testing.T) {
	svc, _ := newBillingService(t)

	plans, err := svc.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	if !plans[0].IsDefault || plans[0].ID != enums.PlanTypeFree {
		t.Fatalf("expected free default first, got %+v", plans[0])
	}
	if plans[2].GarageLimit != -1 {
		t.Fatalf("expected unlimited pro garages, got %d", plans[2].GarageLimit)
	}
}

func TestGetSubscriptionResolvesPlan(t *testing.T) {
	svc, repo := newBillingService(t)
	userID := uuid.New()
	repo.subs[userID] = &models.Subscription{
		UserID:   userID,
		PlanType: enums.PlanTypeStarter,
		Status:   enums.SubscriptionStatusActive,
	}

	sub, err := svc.GetSubscription(context.Background(), userID)
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.PlanType != enums.PlanTypeStarter {
		t.Fatalf("expected starter, got %s", sub.PlanType)
	}
	if sub.Plan == nil || sub.Plan.CarLimit != 20 {
		t.Fatalf("expected resolved starter plan, got %+v", sub.Plan)
	}
}

func TestGetSubscriptionDefaultsToFree(t *testing.T) {
	svc, _ := newBillingService(t)

	sub, err := svc.GetSubscription(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if sub.PlanType != enums.PlanTypeFree || sub.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active free fallback, got %+v", sub)
	}
}

func TestEnsureFreeSubscriptionIsIdempotent(t *testing.T) {
	svc, repo := newBillingService(t)
	userID := uuid.New()

	if err := svc.EnsureFreeSubscription(context.Background(), userID); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := svc.EnsureFreeSubscription(context.Background(), userID); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created row, got %d", len(repo.created))
	}
	if repo.created[0].PlanType != enums.PlanTypeFree {
		t.Fatalf("expected free plan, got %s", repo.created[0].PlanType)
	}
}
