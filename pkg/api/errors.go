package api

import (
	"errors"
	"fmt"
)

// ErrorType is the category of an APIError. Transports map it to their
// own status codes.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeForbidden       ErrorType = "forbidden"
)

// Error codes carried in APIError.Code.
const (
	CodeMissingCapabilities = "missing_capabilities"
	CodeUnknownField        = "unknown_field"
	CodeMissingField        = "missing_field"
	CodeInvalidType         = "invalid_type"
	CodeOutOfRange          = "out_of_range"
)

// APIError is the error value returned to clients. Param names the
// offending input field using the request's JSON path.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
}

// ErrorResponse is the JSON envelope of an error body.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// AsError returns the first *APIError in err's chain.
func AsError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

func newError(t ErrorType, code, param, message string) *APIError {
	return &APIError{Type: t, Code: code, Param: param, Message: message}
}

func NewInvalidRequestError(param, message string) *APIError {
	return newError(ErrorTypeInvalidRequest, "", param, message)
}

// NewValidationError is an invalid-request error with a machine-readable
// code.
func NewValidationError(code, param, message string) *APIError {
	return newError(ErrorTypeInvalidRequest, code, param, message)
}

// NewMissingCapabilitiesError reports a generate request without a model
// capability descriptor.
func NewMissingCapabilitiesError() *APIError {
	return NewValidationError(CodeMissingCapabilities, "model_capabilities",
		"model capabilities must be provided for accurate action generation")
}

func NewNotFoundError(message string) *APIError {
	return newError(ErrorTypeNotFound, "", "", message)
}

func NewServerError(message string) *APIError {
	return newError(ErrorTypeServerError, "", "", message)
}

func NewTooManyRequestsError(message string) *APIError {
	return newError(ErrorTypeTooManyRequests, "", "", message)
}

// NewUnauthenticatedError is returned when credentials are missing or
// rejected.
func NewUnauthenticatedError(message string) *APIError {
	return newError(ErrorTypeUnauthenticated, "", "", message)
}

// NewForbiddenError is returned to authenticated callers that lack a
// required scope.
func NewForbiddenError(message string) *APIError {
	return newError(ErrorTypeForbidden, "", "", message)
}
