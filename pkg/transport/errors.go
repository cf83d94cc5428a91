package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rhuss/vrmaction/pkg/api"
)

// HTTPStatus maps err to an HTTP status code. An *api.APIError anywhere in
// the chain maps by its type; deadline errors map to 504; anything else
// is a 500.
func HTTPStatus(err error) int {
	if apiErr, ok := api.AsError(err); ok {
		switch apiErr.Type {
		case api.ErrorTypeInvalidRequest:
			return http.StatusBadRequest
		case api.ErrorTypeUnauthenticated:
			return http.StatusUnauthorized
		case api.ErrorTypeForbidden:
			return http.StatusForbidden
		case api.ErrorTypeNotFound:
			return http.StatusNotFound
		case api.ErrorTypeTooManyRequests:
			return http.StatusTooManyRequests
		}
		return http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON error body with the status from
// HTTPStatus. Errors that are not APIErrors are reported without their
// message.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorStatus(w, toAPIError(err), HTTPStatus(err))
}

// WriteErrorStatus writes apiErr as a JSON error body with an explicit
// status code.
func WriteErrorStatus(w http.ResponseWriter, apiErr *api.APIError, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

func toAPIError(err error) *api.APIError {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewServerError("request timed out")
	}
	return api.NewServerError("internal server error")
}
