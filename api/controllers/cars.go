package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/api/responses"
	"github.com/davidcalleja/garagebook-backend/api/validators"
	"github.com/davidcalleja/garagebook-backend/internal/cars"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

type createCarRequest struct {
	Name         string     `json:"name" validate:"required,min=1"`
	Year         int        `json:"year" validate:"required"`
	PlateNumber  *string    `json:"plate_number,omitempty"`
	Mileage      *int64     `json:"mileage,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type updateCarRequest struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Year         *int       `json:"year,omitempty"`
	PlateNumber  *string    `json:"plate_number,omitempty"`
	Mileage      *int64     `json:"mileage,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type setCarStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type sellCarRequest struct {
	SalePriceCents int64 `json:"sale_price_cents" validate:"required"`
}

// carScope resolves the authenticated user plus the garage and car path ids.
func carScope(r *http.Request) (userID, garageID, carID uuid.UUID, err error) {
	userID, err = currentUserID(r)
	if err != nil {
		return
	}
	garageID, err = validators.ParseUUIDParam(r, "garageID")
	if err != nil {
		return
	}
	carID, err = validators.ParseUUIDParam(r, "carID")
	return
}

func CreateCar(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
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

		var req createCarRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.Create(r.Context(), userID, garageID, cars.CreateCarInput{
			Name:         req.Name,
			Year:         req.Year,
			PlateNumber:  req.PlateNumber,
			Mileage:      req.Mileage,
			PurchaseDate: req.PurchaseDate,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, car)
	}
}

func ListCars(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
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

		limit, err := validators.ParseOptionalQueryInt(r, "limit")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), userID, garageID, cars.ListCarsParams{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func GetCar(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.Get(r.Context(), userID, garageID, carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, car)
	}
}

func UpdateCar(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCarRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.Update(r.Context(), userID, garageID, carID, cars.UpdateCarInput{
			Name:         req.Name,
			Year:         req.Year,
			PlateNumber:  req.PlateNumber,
			Mileage:      req.Mileage,
			PurchaseDate: req.PurchaseDate,
			Notes:        req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, car)
	}
}

func DeleteCar(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, garageID, carID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func SetCarStatus(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setCarStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseCarStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		car, err := svc.SetStatus(r.Context(), userID, garageID, carID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, car)
	}
}

func SellCar(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req sellCarRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.Sell(r.Context(), userID, garageID, carID, money.Cents(req.SalePriceCents))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, car)
	}
}

func CancelCarSale(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "car service unavailable"))
			return
		}

		userID, garageID, carID, err := carScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		car, err := svc.CancelSale(r.Context(), userID, garageID, carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, car)
	}
}
