package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/davidcalleja/garagebook-backend/internal/analytics"
	"github.com/davidcalleja/garagebook-backend/internal/auth"
	"github.com/davidcalleja/garagebook-backend/internal/billing"
	"github.com/davidcalleja/garagebook-backend/internal/cars"
	"github.com/davidcalleja/garagebook-backend/internal/garages"
	"github.com/davidcalleja/garagebook-backend/internal/invitations"
	"github.com/davidcalleja/garagebook-backend/internal/memberships"
	pkgauth "github.com/davidcalleja/garagebook-backend/pkg/auth"
	"github.com/davidcalleja/garagebook-backend/pkg/config"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubGaragesService struct{}

func (stubGaragesService) Create(ctx context.Context, actor garages.Actor, input garages.CreateGarageInput) (*garages.GarageDTO, error) {
	return &garages.GarageDTO{}, nil
}

func (stubGaragesService) GetByID(ctx context.Context, userID, garageID uuid.UUID) (*garages.GarageDTO, error) {
	return &garages.GarageDTO{}, nil
}

func (stubGaragesService) List(ctx context.Context, userID uuid.UUID) ([]garages.GarageDTO, error) {
	return nil, nil
}

func (stubGaragesService) Update(ctx context.Context, userID, garageID uuid.UUID, input garages.UpdateGarageInput) (*garages.GarageDTO, error) {
	return &garages.GarageDTO{}, nil
}

func (stubGaragesService) Delete(ctx context.Context, userID, garageID uuid.UUID) error {
	return nil
}

func (stubGaragesService) ListMembers(ctx context.Context, userID, garageID uuid.UUID) ([]memberships.MemberDTO, error) {
	return nil, nil
}

func (stubGaragesService) RemoveMember(ctx context.Context, actorID, garageID, targetUserID uuid.UUID) error {
	return nil
}

type stubCarsService struct{}

func (stubCarsService) Create(ctx context.Context, userID, garageID uuid.UUID, input cars.CreateCarInput) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) Get(ctx context.Context, userID, garageID, carID uuid.UUID) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) List(ctx context.Context, userID, garageID uuid.UUID, page cars.ListCarsParams) (*cars.CarList, error) {
	return &cars.CarList{}, nil
}

func (stubCarsService) Update(ctx context.Context, userID, garageID, carID uuid.UUID, input cars.UpdateCarInput) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) Delete(ctx context.Context, userID, garageID, carID uuid.UUID) error {
	return nil
}

func (stubCarsService) SetStatus(ctx context.Context, userID, garageID, carID uuid.UUID, status enums.CarStatus) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) Sell(ctx context.Context, userID, garageID, carID uuid.UUID, salePrice money.Cents) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) CancelSale(ctx context.Context, userID, garageID, carID uuid.UUID) (*cars.CarDTO, error) {
	return &cars.CarDTO{}, nil
}

func (stubCarsService) ListExpenses(ctx context.Context, userID, garageID, carID uuid.UUID) ([]cars.ExpenseDTO, error) {
	return nil, nil
}

func (stubCarsService) AddExpense(ctx context.Context, userID, garageID, carID uuid.UUID, input cars.ExpenseInput) (*cars.ExpenseDTO, error) {
	return &cars.ExpenseDTO{}, nil
}

func (stubCarsService) UpdateExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID, input cars.ExpenseInput) (*cars.ExpenseDTO, error) {
	return &cars.ExpenseDTO{}, nil
}

func (stubCarsService) DeleteExpense(ctx context.Context, userID, garageID, carID, expenseID uuid.UUID) error {
	return nil
}

type stubInvitationsService struct{}

func (stubInvitationsService) Create(ctx context.Context, actor invitations.Actor, garageID uuid.UUID, input invitations.CreateInvitationInput) (*invitations.InvitationDTO, error) {
	return &invitations.InvitationDTO{}, nil
}

func (stubInvitationsService) Get(ctx context.Context, token uuid.UUID) (*invitations.InvitationDTO, error) {
	return &invitations.InvitationDTO{}, nil
}

func (stubInvitationsService) Accept(ctx context.Context, token uuid.UUID, actor invitations.Actor) (*memberships.MemberDTO, error) {
	return &memberships.MemberDTO{}, nil
}

func (stubInvitationsService) Decline(ctx context.Context, token uuid.UUID) (*invitations.InvitationDTO, error) {
	return &invitations.InvitationDTO{}, nil
}

type stubBillingService struct{}

func (stubBillingService) ListPlans(ctx context.Context) ([]billing.PlanDTO, error) {
	return nil, nil
}

func (stubBillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionDTO, error) {
	return &billing.SubscriptionDTO{}, nil
}

func (stubBillingService) EnsureFreeSubscription(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) Summarize(ctx context.Context, userID, garageID uuid.UUID, query analytics.Query) (*analytics.Summary, error) {
	return &analytics.Summary{}, nil
}

// memoryIdempotencyStore is a map-backed stand-in for the Redis client.
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{records: map[string]string{}}
}

func (s *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.records[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = value.(string)
	return true, nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		SessionManager: stubSessionChecker{},
		Auth:           stubAuthService{},
		Garages:        stubGaragesService{},
		Cars:           stubCarsService{},
		Invitations:    stubInvitationsService{},
		Billing:        stubBillingService{},
		Analytics:      stubAnalyticsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "driver@example.com",
		Name:   "Driver",
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/garages", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/garages", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestLogoutRequiresJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body got %d", resp.Code)
	}
}

func TestSellRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := newMemoryIdempotencyStore()
	guarded := NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		Idempotency:    store,
		SessionManager: stubSessionChecker{},
		Auth:           stubAuthService{},
		Garages:        stubGaragesService{},
		Cars:           stubCarsService{},
		Invitations:    stubInvitationsService{},
		Billing:        stubBillingService{},
		Analytics:      stubAnalyticsService{},
	})

	target := "/api/v1/garages/" + uuid.NewString() + "/cars/" + uuid.NewString() + "/sell"
	body := `{"sale_price_cents":100000}`

	missing := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	missing.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	guarded.ServeHTTP(resp, missing)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}

	keyed := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	keyed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	keyed.Header.Set("Idempotency-Key", "sale-1")
	resp = httptest.NewRecorder()
	guarded.ServeHTTP(resp, keyed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with idempotency key got %d", resp.Code)
	}
}
