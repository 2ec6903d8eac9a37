package controllers

import (
	"net/http"

	"github.com/davidcalleja/garagebook-backend/api/middleware"
	"github.com/davidcalleja/garagebook-backend/api/responses"
	"github.com/davidcalleja/garagebook-backend/api/validators"
	"github.com/davidcalleja/garagebook-backend/internal/garages"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
)

type partnerInfoRequest struct {
	Name       string  `json:"name" validate:"required,min=1"`
	SplitRatio int64   `json:"split_ratio" validate:"min=0,max=100"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (p *partnerInfoRequest) toInput() *garages.PartnerInfoInput {
	if p == nil {
		return nil
	}
	return &garages.PartnerInfoInput{
		Name:       p.Name,
		SplitRatio: p.SplitRatio,
		Email:      p.Email,
		Phone:      p.Phone,
		Notes:      p.Notes,
	}
}

type createGarageRequest struct {
	Name        string              `json:"name" validate:"required,min=1"`
	Description *string             `json:"description,omitempty"`
	Partner     *partnerInfoRequest `json:"partner,omitempty"`
}

type updateGarageRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string             `json:"description,omitempty"`
	HasPartner  *bool               `json:"has_partner,omitempty"`
	Partner     *partnerInfoRequest `json:"partner,omitempty"`
}

func garageActor(r *http.Request) (garages.Actor, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return garages.Actor{}, err
	}
	return garages.Actor{
		ID:    userID,
		Email: middleware.UserEmailFromContext(r.Context()),
		Name:  middleware.UserNameFromContext(r.Context()),
	}, nil
}

func CreateGarage(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		actor, err := garageActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createGarageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garage, err := svc.Create(r.Context(), actor, garages.CreateGarageInput{
			Name:        req.Name,
			Description: req.Description,
			Partner:     req.Partner.toInput(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, garage)
	}
}

func ListGarages(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func GetGarage(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garageID, err := validators.ParseUUIDParam(r, "garageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garage, err := svc.GetByID(r.Context(), userID, garageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, garage)
	}
}

func UpdateGarage(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garageID, err := validators.ParseUUIDParam(r, "garageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateGarageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garage, err := svc.Update(r.Context(), userID, garageID, garages.UpdateGarageInput{
			Name:        req.Name,
			Description: req.Description,
			HasPartner:  req.HasPartner,
			Partner:     req.Partner.toInput(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, garage)
	}
}

func DeleteGarage(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garageID, err := validators.ParseUUIDParam(r, "garageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, garageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListGarageMembers(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garageID, err := validators.ParseUUIDParam(r, "garageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.ListMembers(r.Context(), userID, garageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, members)
	}
}

func RemoveGarageMember(svc garages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "garage service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		garageID, err := validators.ParseUUIDParam(r, "garageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := validators.ParseUUIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMember(r.Context(), userID, garageID, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
