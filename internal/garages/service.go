package garages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/internal/memberships"
	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

type garageRepository interface {
	CreateWithOwner(ctx context.Context, garage *models.Garage, owner *models.GarageMember) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Garage, error)
	Update(ctx context.Context, garage *models.Garage) error
	DeleteCascade(ctx context.Context, garageID uuid.UUID) error
}

type membershipsRepository interface {
	GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error)
	ListMembers(ctx context.Context, garageID uuid.UUID) ([]models.GarageMember, error)
	DeleteMember(ctx context.Context, garageID, userID uuid.UUID) error
}

type carsRepository interface {
	CountByGarage(ctx context.Context, garageID uuid.UUID) (int64, error)
}

type entitlementChecker interface {
	CheckCreate(ctx context.Context, userID uuid.UUID, kind enums.LimitedResource) error
}

// Actor identifies the signed-in user performing an operation.
type Actor struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// PartnerInfoInput is the partner block supplied on create/update.
type PartnerInfoInput struct {
	Name       string
	SplitRatio int64
	Email      *string
	Phone      *string
	Notes      *string
}

// CreateGarageInput captures creation-time garage data.
type CreateGarageInput struct {
	Name        string
	Description *string
	Partner     *PartnerInfoInput
}

// UpdateGarageInput is the owner-only garage patch. Setting HasPartner to
// false clears every partner field; supplying Partner replaces the block.
type UpdateGarageInput struct {
	Name        *string
	Description *string
	HasPartner  *bool
	Partner     *PartnerInfoInput
}

// Service exposes garage operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateGarageInput) (*GarageDTO, error)
	GetByID(ctx context.Context, userID, garageID uuid.UUID) (*GarageDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]GarageDTO, error)
	Update(ctx context.Context, userID, garageID uuid.UUID, input UpdateGarageInput) (*GarageDTO, error)
	Delete(ctx context.Context, userID, garageID uuid.UUID) error
	ListMembers(ctx context.Context, userID, garageID uuid.UUID) ([]memberships.MemberDTO, error)
	RemoveMember(ctx context.Context, actorID, garageID, targetUserID uuid.UUID) error
}

type service struct {
	repo         garageRepository
	members      membershipsRepository
	cars         carsRepository
	entitlements entitlementChecker
}

// ServiceParams bundles the dependencies required to build a garage service.
type ServiceParams struct {
	Repo         garageRepository
	Members      membershipsRepository
	Cars         carsRepository
	Entitlements entitlementChecker
}

// NewService constructs a garage service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("garage repository is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Cars == nil {
		return nil, fmt.Errorf("cars repository is required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement checker is required")
	}
	return &service{
		repo:         params.Repo,
		members:      params.Members,
		cars:         params.Cars,
		entitlements: params.Entitlements,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateGarageInput) (*GarageDTO, error) {
	var violations []string
	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, "name must not be empty")
	}
	if input.Partner != nil {
		violations = append(violations, validatePartnerInfo(input.Partner)...)
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid garage input").WithDetails(violations)
	}

	if err := s.entitlements.CheckCreate(ctx, actor.ID, enums.LimitedResourceGarages); err != nil {
		return nil, err
	}

	garage := &models.Garage{
		OwnerID:     actor.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	applyPartnerInfo(garage, input.Partner)

	owner := &models.GarageMember{
		UserID:      actor.ID,
		Email:       actor.Email,
		Name:        actor.Name,
		Role:        enums.MemberRoleOwner,
		Permissions: memberships.DefaultPermissions(enums.MemberRoleOwner),
	}

	if err := s.repo.CreateWithOwner(ctx, garage, owner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create garage")
	}
	return FromModel(garage), nil
}

func (s *service) GetByID(ctx context.Context, userID, garageID uuid.UUID) (*GarageDTO, error) {
	garage, err := s.loadGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, garageID, userID); err != nil {
		return nil, err
	}
	return FromModel(garage), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]GarageDTO, error) {
	garages, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list garages")
	}
	dtos := make([]GarageDTO, 0, len(garages))
	for i := range garages {
		dtos = append(dtos, *FromModel(&garages[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, userID, garageID uuid.UUID, input UpdateGarageInput) (*GarageDTO, error) {
	garage, err := s.loadGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, garageID, userID); err != nil {
		return nil, err
	}

	var violations []string
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		violations = append(violations, "name must not be empty")
	}
	if input.Partner != nil {
		violations = append(violations, validatePartnerInfo(input.Partner)...)
	}
	turningOn := input.HasPartner != nil && *input.HasPartner
	if turningOn && input.Partner == nil && !garage.HasPartner {
		violations = append(violations, "partner info is required to enable a partnership")
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid garage input").WithDetails(violations)
	}

	if input.Name != nil {
		garage.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		garage.Description = input.Description
	}

	switch {
	case input.HasPartner != nil && !*input.HasPartner:
		// Clearing must null every partner field, not just the flag, and is
		// idempotent whether or not a partner was ever set.
		applyPartnerInfo(garage, nil)
	case input.Partner != nil:
		applyPartnerInfo(garage, input.Partner)
	}

	if err := s.repo.Update(ctx, garage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update garage")
	}
	return FromModel(garage), nil
}

func (s *service) Delete(ctx context.Context, userID, garageID uuid.UUID) error {
	if _, err := s.loadGarage(ctx, garageID); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, garageID, userID); err != nil {
		return err
	}

	carCount, err := s.cars.CountByGarage(ctx, garageID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cars")
	}
	if carCount > 0 {
		return pkgerrors.StateConflict("has_dependent_resources", "garage still has cars").
			WithDetail("cars", carCount)
	}

	if err := s.repo.DeleteCascade(ctx, garageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete garage")
	}
	return nil
}

func (s *service) ListMembers(ctx context.Context, userID, garageID uuid.UUID) ([]memberships.MemberDTO, error) {
	if _, err := s.loadGarage(ctx, garageID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, garageID, userID); err != nil {
		return nil, err
	}

	members, err := s.members.ListMembers(ctx, garageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	dtos := make([]memberships.MemberDTO, 0, len(members))
	for i := range members {
		dtos = append(dtos, *memberships.FromModel(&members[i]))
	}
	return dtos, nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, garageID, targetUserID uuid.UUID) error {
	if _, err := s.loadGarage(ctx, garageID); err != nil {
		return err
	}
	if err := s.requireOwner(ctx, garageID, actorID); err != nil {
		return err
	}

	target, err := s.members.GetMember(ctx, garageID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if target.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove the garage owner")
	}

	if err := s.members.DeleteMember(ctx, garageID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}
	return nil
}

func (s *service) loadGarage(ctx context.Context, garageID uuid.UUID) (*models.Garage, error) {
	garage, err := s.repo.FindByID(ctx, garageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "garage not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load garage")
	}
	return garage, nil
}

func (s *service) requireMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error) {
	member, err := s.members.GetMember(ctx, garageID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this garage")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	return member, nil
}

func (s *service) requireOwner(ctx context.Context, garageID, userID uuid.UUID) error {
	member, err := s.requireMember(ctx, garageID, userID)
	if err != nil {
		return err
	}
	if member.Role != enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}
	return nil
}

func validatePartnerInfo(info *PartnerInfoInput) []string {
	var violations []string
	if strings.TrimSpace(info.Name) == "" {
		violations = append(violations, "partner name must not be empty")
	}
	if info.SplitRatio < 0 || info.SplitRatio > 100 {
		violations = append(violations, "split ratio must be between 0 and 100")
	}
	return violations
}

func applyPartnerInfo(garage *models.Garage, info *PartnerInfoInput) {
	if info == nil {
		garage.HasPartner = false
		garage.PartnerName = nil
		garage.PartnerSplitRatio = nil
		garage.PartnerEmail = nil
		garage.PartnerPhone = nil
		garage.PartnerNotes = nil
		return
	}
	name := strings.TrimSpace(info.Name)
	ratio := info.SplitRatio
	garage.HasPartner = true
	garage.PartnerName = &name
	garage.PartnerSplitRatio = &ratio
	garage.PartnerEmail = info.Email
	garage.PartnerPhone = info.Phone
	garage.PartnerNotes = info.Notes
}
