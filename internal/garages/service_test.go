package garages

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

type stubGarageRepo struct {
	garage        *models.Garage
	findErr       error
	created       *models.Garage
	createdOwner  *models.GarageMember
	updated       *models.Garage
	deleteCalled  bool
	listedGarages []models.Garage
}

func (s *stubGarageRepo) CreateWithOwner(ctx context.Context, garage *models.Garage, owner *models.GarageMember) error {
	garage.ID = uuid.New()
	owner.GarageID = garage.ID
	s.created = garage
	s.createdOwner = owner
	return nil
}

func (s *stubGarageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.garage == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.garage, nil
}

func (s *stubGarageRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Garage, error) {
	return s.listedGarages, nil
}

func (s *stubGarageRepo) Update(ctx context.Context, garage *models.Garage) error {
	s.updated = garage
	return nil
}

func (s *stubGarageRepo) DeleteCascade(ctx context.Context, garageID uuid.UUID) error {
	s.deleteCalled = true
	return nil
}

type stubMembersRepo struct {
	members map[uuid.UUID]*models.GarageMember
	deleted []uuid.UUID
}

func (s *stubMembersRepo) GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error) {
	member, ok := s.members[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return member, nil
}

func (s *stubMembersRepo) ListMembers(ctx context.Context, garageID uuid.UUID) ([]models.GarageMember, error) {
	out := make([]models.GarageMember, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, *m)
	}
	return out, nil
}

func (s *stubMembersRepo) DeleteMember(ctx context.Context, garageID, userID uuid.UUID) error {
	s.deleted = append(s.deleted, userID)
	delete(s.members, userID)
	return nil
}

type stubCarsRepo struct {
	count int64
}

func (s *stubCarsRepo) CountByGarage(ctx context.Context, garageID uuid.UUID) (int64, error) {
	return s.count, nil
}

type stubChecker struct {
	err    error
	called int
}

func (s *stubChecker) CheckCreate(ctx context.Context, userID uuid.UUID, kind enums.LimitedResource) error {
	s.called++
	return s.err
}

func newTestService(t *testing.T, repo *stubGarageRepo, members *stubMembersRepo, cars *stubCarsRepo, checker *stubChecker) Service {
	t.Helper()
	if members == nil {
		members = &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{}}
	}
	if cars == nil {
		cars = &stubCarsRepo{}
	}
	if checker == nil {
		checker = &stubChecker{}
	}
	svc, err := NewService(ServiceParams{Repo: repo, Members: members, Cars: cars, Entitlements: checker})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func ownerMember(userID uuid.UUID) *models.GarageMember {
	return &models.GarageMember{UserID: userID, Role: enums.MemberRoleOwner}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error creating service without dependencies")
	}
	if _, err := NewService(ServiceParams{Repo: &stubGarageRepo{}}); err == nil {
		t.Fatal("expected error creating service without members repo")
	}
}

func TestCreateCollectsAllViolations(t *testing.T) {
	svc := newTestService(t, &stubGarageRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateGarageInput{
		Name:    "  ",
		Partner: &PartnerInfoInput{Name: "", SplitRatio: 140},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().([]string)
	if !ok || len(details) != 3 {
		t.Fatalf("expected 3 violations, got %v", details)
	}
}

func TestCreateRejectedByEntitlements(t *testing.T) {
	repo := &stubGarageRepo{}
	checker := &stubChecker{err: pkgerrors.New(pkgerrors.CodeLimitReached, "garages limit reached for the free plan")}
	svc := newTestService(t, repo, nil, nil, checker)

	_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateGarageInput{Name: "Side Hustle"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeLimitReached) {
		t.Fatalf("expected limit reached, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("garage must not be created when the entitlement check fails")
	}
}

func TestCreateSeedsOwnerMembership(t *testing.T) {
	repo := &stubGarageRepo{}
	svc := newTestService(t, repo, nil, nil, nil)
	actor := Actor{ID: uuid.New(), Email: "owner@example.com", Name: "Dana"}

	dto, err := svc.Create(context.Background(), actor, CreateGarageInput{
		Name:    "Weekend Flips",
		Partner: &PartnerInfoInput{Name: "Sam", SplitRatio: 60},
	})
	if err != nil {
		t.Fatalf("create garage: %v", err)
	}
	if dto.Partner == nil || dto.Partner.SplitRatio != 60 {
		t.Fatalf("expected partner with ratio 60, got %+v", dto.Partner)
	}
	if repo.createdOwner == nil || repo.createdOwner.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner membership, got %+v", repo.createdOwner)
	}
	if !repo.createdOwner.Permissions.CanSellCars {
		t.Fatal("owner membership should carry full permissions")
	}
}

func TestUpdateRequiresOwnerRole(t *testing.T) {
	garageID := uuid.New()
	viewerID := uuid.New()
	repo := &stubGarageRepo{garage: &models.Garage{ID: garageID, Name: "G"}}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{
		viewerID: {UserID: viewerID, Role: enums.MemberRoleViewer},
	}}
	svc := newTestService(t, repo, members, nil, nil)

	_, err := svc.Update(context.Background(), viewerID, garageID, UpdateGarageInput{})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateClearsPartnerInfoEntirely(t *testing.T) {
	ownerID := uuid.New()
	partnerName := "Sam"
	ratio := int64(60)
	email := "sam@example.com"
	garage := &models.Garage{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Name:              "G",
		HasPartner:        true,
		PartnerName:       &partnerName,
		PartnerSplitRatio: &ratio,
		PartnerEmail:      &email,
	}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{ownerID: ownerMember(ownerID)}}
	svc := newTestService(t, repo, members, nil, nil)

	off := false
	dto, err := svc.Update(context.Background(), ownerID, garage.ID, UpdateGarageInput{HasPartner: &off})
	if err != nil {
		t.Fatalf("update garage: %v", err)
	}
	if dto.HasPartner || dto.Partner != nil {
		t.Fatalf("expected partner cleared, got %+v", dto)
	}
	if garage.PartnerName != nil || garage.PartnerSplitRatio != nil || garage.PartnerEmail != nil {
		t.Fatalf("expected all partner columns nulled, got %+v", garage)
	}

	// Clearing again is a no-op, not an error.
	dto, err = svc.Update(context.Background(), ownerID, garage.ID, UpdateGarageInput{HasPartner: &off})
	if err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if dto.HasPartner || dto.Partner != nil {
		t.Fatalf("expected clearing to stay idempotent, got %+v", dto)
	}
}

func TestUpdateEnablingPartnerNeedsInfo(t *testing.T) {
	ownerID := uuid.New()
	garage := &models.Garage{ID: uuid.New(), OwnerID: ownerID, Name: "G"}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{ownerID: ownerMember(ownerID)}}
	svc := newTestService(t, repo, members, nil, nil)

	on := true
	_, err := svc.Update(context.Background(), ownerID, garage.ID, UpdateGarageInput{HasPartner: &on})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRejectedWhileCarsExist(t *testing.T) {
	ownerID := uuid.New()
	garage := &models.Garage{ID: uuid.New(), OwnerID: ownerID, Name: "G"}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{ownerID: ownerMember(ownerID)}}
	svc := newTestService(t, repo, members, &stubCarsRepo{count: 3}, nil)

	err := svc.Delete(context.Background(), ownerID, garage.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if reason := pkgerrors.ConflictReason(err); reason != "has_dependent_resources" {
		t.Fatalf("expected has_dependent_resources reason, got %q (%v)", reason, err)
	}
	if repo.deleteCalled {
		t.Fatal("garage must not be deleted while cars exist")
	}
}

func TestDeleteCascadesWhenEmpty(t *testing.T) {
	ownerID := uuid.New()
	garage := &models.Garage{ID: uuid.New(), OwnerID: ownerID, Name: "G"}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{ownerID: ownerMember(ownerID)}}
	svc := newTestService(t, repo, members, &stubCarsRepo{count: 0}, nil)

	if err := svc.Delete(context.Background(), ownerID, garage.ID); err != nil {
		t.Fatalf("delete garage: %v", err)
	}
	if !repo.deleteCalled {
		t.Fatal("expected cascade delete to run")
	}
}

func TestRemoveMemberCannotTargetOwner(t *testing.T) {
	ownerID := uuid.New()
	garage := &models.Garage{ID: uuid.New(), OwnerID: ownerID, Name: "G"}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{ownerID: ownerMember(ownerID)}}
	svc := newTestService(t, repo, members, nil, nil)

	err := svc.RemoveMember(context.Background(), ownerID, garage.ID, ownerID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRemoveMemberSuccess(t *testing.T) {
	ownerID := uuid.New()
	viewerID := uuid.New()
	garage := &models.Garage{ID: uuid.New(), OwnerID: ownerID, Name: "G"}
	repo := &stubGarageRepo{garage: garage}
	members := &stubMembersRepo{members: map[uuid.UUID]*models.GarageMember{
		ownerID:  ownerMember(ownerID),
		viewerID: {UserID: viewerID, Role: enums.MemberRoleViewer},
	}}
	svc := newTestService(t, repo, members, nil, nil)

	if err := svc.RemoveMember(context.Background(), ownerID, garage.ID, viewerID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if len(members.deleted) != 1 || members.deleted[0] != viewerID {
		t.Fatalf("expected viewer removed, got %v", members.deleted)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, &stubGarageRepo{}, nil, nil, nil)
	_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
