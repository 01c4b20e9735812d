package middleware

import (
	"net/http"

	"github.com/techvault/identity-service/internal/domain"
)

// ErrorToStatus translates domain errors to HTTP status codes. The mapping
// is 1:1 with the service's failure taxonomy; anything unrecognized is an
// internal error and its detail stays out of the response.
func ErrorToStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case domain.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case domain.IsBadRequest(err):
		return http.StatusBadRequest, err.Error()
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, err.Error()
	case domain.IsForbidden(err):
		return http.StatusForbidden, err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	case domain.IsConflict(err):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
