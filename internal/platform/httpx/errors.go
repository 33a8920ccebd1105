package httpx

import (
	"errors"
	"net/http"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Store and infrastructure
// failures collapse to a generic 500; the underlying message is the caller's
// to log, never the client's to see.
func RespondError(w http.ResponseWriter, err error) {
	var (
		authzErr      *shared.AuthorizationError
		validationErr *shared.ValidationError
		conflictErr   *shared.ConflictError
	)
	switch {
	case errors.Is(err, shared.ErrAuthenticationRequired):
		Problem(w, http.StatusUnauthorized, "Authentication Required", "sign in to continue")
	case errors.As(err, &authzErr):
		JSON(w, http.StatusForbidden, ProblemDetail{
			Title:      "Forbidden",
			Status:     http.StatusForbidden,
			Detail:     authzErr.Error(),
			Permission: authzErr.Permission,
			Role:       authzErr.Role,
		})
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &validationErr):
		JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Fields: validationErr.Fields,
		})
	case errors.As(err, &conflictErr):
		Problem(w, http.StatusConflict, "Conflict", conflictErr.Reason)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
