package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/davidcalleja/garagebook-backend/api/middleware"
	pkgerrors "github.com/davidcalleja/garagebook-backend/pkg/errors"
)

// currentUserID pulls the authenticated user out of the request context. The
// auth middleware guarantees it is present on protected routes.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}
