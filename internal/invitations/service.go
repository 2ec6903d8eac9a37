package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidcalleja/garagebook-backend/internal/memberships"
	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

type invitationRepository interface {
	Create(ctx context.Context, invitation *models.GarageInvitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GarageInvitation, error)
	Update(ctx context.Context, invitation *models.GarageInvitation) error
	PendingExists(ctx context.Context, garageID uuid.UUID, email string) (bool, error)
	AcceptWithMember(ctx context.Context, invitation *models.GarageInvitation, member *models.GarageMember) error
}

type garagesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Garage, error)
}

type membershipsRepository interface {
	GetMember(ctx context.Context, garageID, userID uuid.UUID) (*models.GarageMember, error)
	EmailIsMember(ctx context.Context, garageID uuid.UUID, email string) (bool, error)
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

// CreateInvitationInput is the invite request body after validation.
type CreateInvitationInput struct {
	InviteeEmail string
	Role         enums.MemberRole
}

// Service drives the invitation lifecycle.
type Service interface {
	Create(ctx context.Context, actor Actor, garageID uuid.UUID, input CreateInvitationInput) (*InvitationDTO, error)
	Get(ctx context.Context, token uuid.UUID) (*InvitationDTO, error)
	Accept(ctx context.Context, token uuid.UUID, actor Actor) (*memberships.MemberDTO, error)
	Decline(ctx context.Context, token uuid.UUID) (*InvitationDTO, error)
}

type service struct {
	repo         invitationRepository
	garages      garagesRepository
	members      membershipsRepository
	entitlements entitlementChecker
	ttl          time.Duration
}

// ServiceParams bundles the dependencies required to build the invitation
// service.
type ServiceParams struct {
	Repo         invitationRepository
	Garages      garagesRepository
	Members      membershipsRepository
	Entitlements entitlementChecker
	TTL          time.Duration
}

// NewService constructs an invitation service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("invitation repository is required")
	}
	if params.Garages == nil {
		return nil, fmt.Errorf("garages repository is required")
	}
	if params.Members == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement checker is required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("invitation ttl must be positive")
	}
	return &service{
		repo:         params.Repo,
		garages:      params.Garages,
		members:      params.Members,
		entitlements: params.Entitlements,
		ttl:          params.TTL,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, garageID uuid.UUID, input CreateInvitationInput) (*InvitationDTO, error) {
	garage, err := s.garages.FindByID(ctx, garageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "garage not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load garage")
	}

	member, err := s.members.GetMember(ctx, garageID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this garage")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if member.Role != enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "owner role required")
	}

	email := strings.ToLower(strings.TrimSpace(input.InviteeEmail))
	var violations []string
	if email == "" || !strings.Contains(email, "@") {
		violations = append(violations, "invitee email is invalid")
	}
	if input.Role != enums.MemberRolePartner && input.Role != enums.MemberRoleViewer {
		violations = append(violations, "role must be partner or viewer")
	}
	if len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitation input").WithDetails(violations)
	}

	if email == strings.ToLower(strings.TrimSpace(actor.Email)) {
		return nil, pkgerrors.StateConflict("self_invite", "cannot invite yourself")
	}

	alreadyMember, err := s.members.EmailIsMember(ctx, garageID, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check roster")
	}
	if alreadyMember {
		return nil, pkgerrors.StateConflict("already_member", "already a member of this garage")
	}

	pending, err := s.repo.PendingExists(ctx, garageID, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending invitations")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an invitation for this email is already pending")
	}

	if input.Role == enums.MemberRolePartner {
		if err := s.entitlements.CheckCreate(ctx, garage.OwnerID, enums.LimitedResourcePartners); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	invitation := &models.GarageInvitation{
		GarageID:      garageID,
		GarageName:    garage.Name,
		InviterUserID: actor.ID,
		InviterName:   actor.Name,
		InviterEmail:  strings.ToLower(strings.TrimSpace(actor.Email)),
		InviteeEmail:  email,
		Role:          input.Role,
		Permissions:   memberships.DefaultPermissions(input.Role),
		Status:        enums.InvitationStatusPending,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
	}
	return FromModel(invitation), nil
}

func (s *service) Get(ctx context.Context, token uuid.UUID) (*InvitationDTO, error) {
	invitation, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.lazyExpire(ctx, invitation); err != nil {
		return nil, err
	}
	return FromModel(invitation), nil
}

func (s *service) Accept(ctx context.Context, token uuid.UUID, actor Actor) (*memberships.MemberDTO, error) {
	invitation, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, invitation); err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(actor.Email), invitation.InviteeEmail) {
		return nil, pkgerrors.StateConflict("email_mismatch", "invitation email mismatch")
	}

	if _, err := s.members.GetMember(ctx, invitation.GarageID, actor.ID); err == nil {
		return nil, pkgerrors.StateConflict("already_member", "already a member of this garage")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	now := time.Now().UTC()
	member := &models.GarageMember{
		GarageID:        invitation.GarageID,
		UserID:          actor.ID,
		Email:           strings.ToLower(strings.TrimSpace(actor.Email)),
		Name:            actor.Name,
		Role:            invitation.Role,
		Permissions:     invitation.Permissions,
		InvitedByUserID: &invitation.InviterUserID,
	}
	invitation.Status = enums.InvitationStatusAccepted
	invitation.AcceptedAt = &now

	if err := s.repo.AcceptWithMember(ctx, invitation, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invitation")
	}
	return memberships.FromModel(member), nil
}

func (s *service) Decline(ctx context.Context, token uuid.UUID) (*InvitationDTO, error) {
	invitation, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.requirePending(ctx, invitation); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invitation.Status = enums.InvitationStatusDeclined
	invitation.DeclinedAt = &now
	if err := s.repo.Update(ctx, invitation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline invitation")
	}
	return FromModel(invitation), nil
}

func (s *service) load(ctx context.Context, token uuid.UUID) (*models.GarageInvitation, error) {
	invitation, err := s.repo.FindByID(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	return invitation, nil
}

// requirePending enforces the single-use lifecycle. Expiry is evaluated
// lazily against the clock: a row can still read pending after its deadline,
// so the check cannot trust the stored status alone.
func (s *service) requirePending(ctx context.Context, invitation *models.GarageInvitation) error {
	switch invitation.Status {
	case enums.InvitationStatusPending:
		if time.Now().UTC().After(invitation.ExpiresAt) {
			if err := s.persistExpiry(ctx, invitation); err != nil {
				return err
			}
			return pkgerrors.StateConflict("expired", "invitation expired")
		}
		return nil
	case enums.InvitationStatusExpired:
		return pkgerrors.StateConflict("expired", "invitation expired")
	default:
		return pkgerrors.StateConflict("already_resolved", "invitation already resolved")
	}
}

func (s *service) lazyExpire(ctx context.Context, invitation *models.GarageInvitation) error {
	if invitation.Status != enums.InvitationStatusPending {
		return nil
	}
	if !time.Now().UTC().After(invitation.ExpiresAt) {
		return nil
	}
	return s.persistExpiry(ctx, invitation)
}

func (s *service) persistExpiry(ctx context.Context, invitation *models.GarageInvitation) error {
	invitation.Status = enums.InvitationStatusExpired
	if err := s.repo.Update(ctx, invitation); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire invitation")
	}
	return nil
}
