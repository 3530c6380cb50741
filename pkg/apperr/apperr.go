// Package apperr defines the service's error taxonomy: every failure a
// handler can surface maps onto one of a small set of machine-readable
// codes with a fixed HTTP status. Handlers return *Error values (or wrap
// them) and the HTTP layer renders them into the response envelope.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND_ERROR"
	CodeConflict       = "CONFLICT_ERROR"
	CodeRateLimit      = "RATE_LIMIT_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error is a failure with a stable code and an HTTP status. Details is
// optional structured context, typically per-field validation messages.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of the error carrying structured context.
// The original is left untouched so the predefined errors stay immutable.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// Validation reports a request that failed input validation.
func Validation(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

// Authentication reports missing or bad credentials.
func Authentication(message string) *Error {
	return &Error{StatusCode: http.StatusUnauthorized, Code: CodeAuthentication, Message: message}
}

// Authorization reports a valid identity lacking permission.
func Authorization(message string) *Error {
	return &Error{StatusCode: http.StatusForbidden, Code: CodeAuthorization, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// Conflict reports a request that clashes with existing state.
func Conflict(message string) *Error {
	return &Error{StatusCode: http.StatusConflict, Code: CodeConflict, Message: message}
}

// RateLimited reports a client that exceeded its request budget.
func RateLimited(message string) *Error {
	return &Error{StatusCode: http.StatusTooManyRequests, Code: CodeRateLimit, Message: message}
}

// Internal reports an unexpected server-side failure. The message shown
// to clients is generic on purpose; the real cause belongs in the logs.
func Internal() *Error {
	return &Error{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
}

// From coerces an arbitrary error into an *Error. Errors already in the
// taxonomy (possibly wrapped) pass through unchanged, anything else
// collapses to Internal so unclassified failures never leak internals.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal()
}

// errorEnvelope is the wire shape of a failed request.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	Error     *Error `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// Write renders the error as a JSON envelope. The request id, when
// known, is echoed so clients can quote it in bug reports.
func (e *Error) Write(w http.ResponseWriter, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Success:   false,
		Error:     e,
		RequestID: requestID,
	})
}

// Write coerces err through From and renders it.
func Write(w http.ResponseWriter, requestID string, err error) {
	From(err).Write(w, requestID)
}
