package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devflowhq/devflow/contracts"
)

// ErrorCode represents an API error code.
type ErrorCode string

// Error codes for API responses.
const (
	CodeInvalidInput      ErrorCode = "invalid_input"
	CodePipelineNotFound  ErrorCode = "pipeline_not_found"
	CodeExecutionNotFound ErrorCode = "execution_not_found"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrExecutionNotFound is returned when an execution id is unknown.
var ErrExecutionNotFound = errors.New("execution not found")

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Code       ErrorCode
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// MapError maps a domain error to an HTTPError.
func MapError(err error) *HTTPError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, contracts.ErrInvalidInput):
		return &HTTPError{http.StatusBadRequest, CodeInvalidInput, err}

	case errors.Is(err, contracts.ErrPipelineNotFound):
		return &HTTPError{http.StatusNotFound, CodePipelineNotFound, err}

	case errors.Is(err, ErrExecutionNotFound):
		return &HTTPError{http.StatusNotFound, CodeExecutionNotFound, err}

	default:
		return &HTTPError{http.StatusInternalServerError, CodeInternalError, err}
	}
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, err error) {
	httpErr := MapError(err)
	if httpErr == nil {
		return
	}

	resp := ErrorDTO{
		Code:    string(httpErr.Code),
		Message: httpErr.Error(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.StatusCode)
	writeJSON(w, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Log error but can't write to response at this point
		_ = err
	}
}
