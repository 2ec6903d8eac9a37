package controllers

import (
	"net/http"
	"time"

	"github.com/davidcalleja/garagebook-backend/api/responses"
	"github.com/davidcalleja/garagebook-backend/api/validators"
	"github.com/davidcalleja/garagebook-backend/internal/analytics"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
	"github.com/davidcalleja/garagebook-backend/pkg/logger"
)

// defaultAnalyticsWindow is applied when the caller omits the period bounds.
const defaultAnalyticsWindow = 30 * 24 * time.Hour

func AnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
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

		now := time.Now().UTC()
		to, err := validators.ParseQueryTime(r, "to", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from", to.Add(-defaultAnalyticsWindow))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		carID, err := validators.ParseOptionalQueryUUID(r, "car_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summarize(r.Context(), userID, garageID, analytics.Query{
			From:  from,
			To:    to,
			CarID: carID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
