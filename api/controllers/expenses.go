package controllers

import (
	"net/http"
	"time"

	"github.com/davidcalleja/garagebook-backend/api/responses"
	"github.com/davidcalleja/garagebook-backend/api/validators"
	"github.com/davidcalleja/garagebook-backend/internal/cars"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
	"github.com/davidcalleja/garagebook-backend/pkg/money"
)

type expenseRequest struct {
	Description string    `json:"description" validate:"required,min=1"`
	AmountCents int64     `json:"amount_cents" validate:"required"`
	Category    string    `json:"category" validate:"required,min=1"`
	Date        time.Time `json:"date" validate:"required"`
	PaidBy      string    `json:"paid_by" validate:"required"`
}

func (req expenseRequest) toInput() (cars.ExpenseInput, error) {
	payer, err := enums.ParseExpensePayer(req.PaidBy)
	if err != nil {
		return cars.ExpenseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payer")
	}
	return cars.ExpenseInput{
		Description: req.Description,
		AmountCents: money.Cents(req.AmountCents),
		Category:    req.Category,
		Date:        req.Date,
		PaidBy:      payer,
	}, nil
}

func ListExpenses(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListExpenses(r.Context(), userID, garageID, carID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func AddExpense(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req expenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.AddExpense(r.Context(), userID, garageID, carID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func UpdateExpense(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
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

		expenseID, err := validators.ParseUUIDParam(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req expenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.UpdateExpense(r.Context(), userID, garageID, carID, expenseID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, expense)
	}
}

func DeleteExpense(svc cars.Service, logg *logger.Logger) http.HandlerFunc {
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

		expenseID, err := validators.ParseUUIDParam(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteExpense(r.Context(), userID, garageID, carID, expenseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
