package vauth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Stable error codes returned in JSON error responses.
const (
	ErrCodeInvalidEmail  = "invalid_email"
	ErrCodeWeakPassword  = "weak_password"
	ErrCodeMissingField  = "missing_field"
	ErrCodeEmailExists   = "email_exists"
	ErrCodeWrongProvider = "wrong_provider"
	ErrCodeInvalidCreds  = "invalid_credentials"
	ErrCodeInvalidToken  = "invalid_token"
	ErrCodeInternal      = "internal_error"
)

// Sentinel errors returned by stores.  Callers translate these into
// AuthErrors at the boundary.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("oauth token not found")
)

// AuthError is the error type surfaced on the HTTP boundary.  Status
// follows the taxonomy: validation and conflict errors are 400, credential
// and token errors are 401, everything else is 500.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewValidationError creates a 400 error for malformed input.
func NewValidationError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field, Status: http.StatusBadRequest}
}

// NewConflictError creates a 400 error for duplicate emails and
// cross-provider collisions.
func NewConflictError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message, Status: http.StatusBadRequest}
}

// NewAuthError creates a 401 error for bad credentials, provider
// mismatches and invalid or expired tokens.
func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message, Status: http.StatusUnauthorized}
}

// NewInternalError creates a 500 error.  The underlying cause is logged by
// the caller, never sent to the client.
func NewInternalError(message string) *AuthError {
	if message == "" {
		message = "Server error"
	}
	return &AuthError{Code: ErrCodeInternal, Message: message, Status: http.StatusInternalServerError}
}

// AsAuthError returns err as an *AuthError, wrapping unknown errors as
// internal ones so handlers always have a status to write.
func AsAuthError(err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return NewInternalError("")
}

// WriteJSON writes the error as a JSON response with its HTTP status.
func (e *AuthError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}
