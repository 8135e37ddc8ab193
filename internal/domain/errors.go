package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionExpired is returned when the backend rejected the bearer token.
	// The session has already been cleared when a caller sees it.
	ErrSessionExpired = errors.New("session expired, please login again")

	// ErrNotAuthenticated is returned when an operation needs a signed-in user
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the current role may not perform an operation
	ErrForbidden = errors.New("operation not permitted for role")

	// ErrStaleSession is returned when a response arrived after the session changed
	ErrStaleSession = errors.New("session changed while request was in flight")
)

// APIError is a non-2xx response from the backend, reduced to a
// human-readable message suitable for the initiating form
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	// Err is the sentinel the status maps to, if any
	Err error `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("Request failed: %d", e.Status)
}

// Unwrap returns the sentinel the status maps to
func (e *APIError) Unwrap() error {
	return e.Err
}

// TransportError wraps a network-level failure
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationFieldError maps a field name to its validation error message
type ValidationFieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any request is sent when a payload is invalid
type ValidationError struct {
	Fields []ValidationFieldError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidationMessages maps validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
	"e164":     "Must be a valid phone number",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
