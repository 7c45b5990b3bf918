package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error into the API error taxonomy.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
)

// Error is a classified application error. Details carries user-facing,
// field-level information and is always rendered; Err is the internal cause
// and is only rendered in development mode.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so formatted instances compare
// equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// New creates a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation creates a 400 validation error.
func Validation(code, message string) *Error { return New(KindValidation, code, message) }

// NotFound creates a 404 error.
func NotFound(code, message string) *Error { return New(KindNotFound, code, message) }

// Forbidden creates a 403 error.
func Forbidden(code, message string) *Error { return New(KindForbidden, code, message) }

// Unauthorized creates a 401 error.
func Unauthorized(code, message string) *Error { return New(KindUnauthorized, code, message) }

// Conflict creates a unique-constraint error.
func Conflict(code, message string) *Error { return New(KindConflict, code, message) }

// Internal creates a 500 error that keeps its cause for development responses.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: message, Err: cause}
}

var (
	// ErrInvalidToken is returned when a bearer token is missing, malformed, expired or revoked.
	ErrInvalidToken = Unauthorized("INVALID_TOKEN", "Invalid or expired token")
	// ErrAdminRequired is returned when the acting user is not the administrator.
	ErrAdminRequired = Forbidden("ADMIN_REQUIRED", "Admin access required")
	// ErrInvalidID is returned when a path identifier is not syntactically valid.
	ErrInvalidID = Validation("INVALID_ID", "Invalid ID format")
	// ErrInvalidRequest is returned when a request body cannot be decoded.
	ErrInvalidRequest = Validation("INVALID_REQUEST", "Invalid request body")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// StatusCode returns the HTTP status for a kind. Conflicts are reported as 400.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unclassified errors become
// opaque 500s; their message is only exposed when verbose is set.
func MapErrorToHTTP(err error, verbose bool) *HTTPError {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("internal server error", err)
	}

	httpErr := NewHTTPError(appErr.Kind.StatusCode(), appErr.Message, appErr.Code)
	httpErr.Details = appErr.Details
	if verbose && appErr.Err != nil && httpErr.Details == nil {
		httpErr.Details = map[string]string{"message": appErr.Err.Error()}
	}
	return httpErr
}
