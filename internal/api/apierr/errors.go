package apierr

import (
	"errors"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/api/response"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

// APIError represents an API error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeAlreadyAuthenticated = "ALREADY_AUTHENTICATED"
	CodeInvalidView          = "INVALID_VIEW"
	CodeEmptySelection       = "EMPTY_SELECTION"
	CodeUnknownSymptom       = "UNKNOWN_SYMPTOM"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	response.JSON(w, he.status, ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status WriteError would use for err
func StatusOf(err error) int {
	return toHTTPError(err).status
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid username or password"}}
	case errors.Is(err, session.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case errors.Is(err, model.ErrNotAuthenticated):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Login required"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeUsernameExists, Message: "Username already exists"}}
	case errors.Is(err, model.ErrAlreadyAuthenticated):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyAuthenticated, Message: "Already logged in"}}
	case errors.Is(err, model.ErrInvalidView):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidView, Message: "Unknown view"}}
	case errors.Is(err, model.ErrEmptySelection):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeEmptySelection, Message: "Please select at least one symptom"}}
	case errors.Is(err, model.ErrUnknownSymptom):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeUnknownSymptom, Message: err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewValidationError creates an invalid request error listing the offending fields
func NewValidationError(fields map[string]string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: "validation failed", Fields: fields}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
