package errs

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// StatusFail marks client errors (4xx).
	StatusFail = "fail"

	// StatusError marks every other status code.
	StatusError = "error"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "email", "error": "Please provide a valid email!" }
type FieldError struct {
	// Field is the field path the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// AppError is the operational error type shared by handlers, services and the
// global error handler.
//
// Construction takes only a message and an HTTP status code; Status and
// IsOperational are derived. The JSON shape is what development responses
// expose under "error":
//
//	{ "statusCode": 404, "status": "fail", "isOperational": true }
type AppError struct {
	Message       string       `json:"-"`
	StatusCode    int          `json:"statusCode"`
	Status        string       `json:"status"`
	IsOperational bool         `json:"isOperational"`
	Errors        []FieldError `json:"errors,omitempty"`

	// origin records the call stack at construction.
	origin error
}

// New creates an operational AppError for the given message and status code.
func New(message string, statusCode int) *AppError {
	return &AppError{
		Message:       message,
		StatusCode:    statusCode,
		Status:        StatusFor(statusCode),
		IsOperational: true,
		origin:        errors.New(message),
	}
}

// StatusFor returns "fail" when the decimal status code starts with 4, "error" otherwise.
func StatusFor(statusCode int) string {
	if strings.HasPrefix(strconv.Itoa(statusCode), "4") {
		return StatusFail
	}
	return StatusError
}

// Error makes *AppError satisfy the built-in `error` interface.
func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is also an *AppError. It does not compare fields.
func (e *AppError) Is(target error) bool {
	_, ok := target.(*AppError)
	return ok
}

// WithFields returns a copy of e carrying field-level details.
func (e *AppError) WithFields(fields []FieldError) *AppError {
	cp := *e
	cp.Errors = fields
	return &cp
}

// StackTrace exposes the construction stack to zerolog's pkgerrors marshaler.
func (e *AppError) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := e.origin.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Stack renders the error message followed by its construction stack.
func (e *AppError) Stack() string {
	if e.origin == nil {
		return e.Message
	}
	return fmt.Sprintf("%+v", e.origin)
}

// NewBadRequestError creates a 400 AppError.
func NewBadRequestError(message string) *AppError {
	return New(message, http.StatusBadRequest)
}

// NewUnauthorizedError creates a 401 AppError.
func NewUnauthorizedError(message string) *AppError {
	return New(message, http.StatusUnauthorized)
}

// NewNotFoundError creates the 404 returned when no document matches an ID.
//
//	NewNotFoundError("tour") -> "No tour found with that ID"
func NewNotFoundError(entity string) *AppError {
	return New(fmt.Sprintf("No %s found with that ID", entity), http.StatusNotFound)
}

// NewRouteNotFoundError creates the 404 returned for unknown URLs.
func NewRouteNotFoundError(url string) *AppError {
	return New(fmt.Sprintf("Can't find %s on this server!", url), http.StatusNotFound)
}

// NewTooManyRequestsError creates a 429 AppError.
func NewTooManyRequestsError(message string) *AppError {
	return New(message, http.StatusTooManyRequests)
}
