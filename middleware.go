package vauth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type userParamNameKey string

// Middleware extracts the authenticated user from incoming requests.  It
// checks the Authorization header first (stripping an optional "Bearer "
// prefix), then the auth cookie, then an optional session getter for
// browser flows.
type Middleware struct {
	AuthTokenHeaderName string
	AuthTokenCookieName string
	UserParamName       string
	SessionGetter       func(r *http.Request, param string) any
	VerifyToken         func(tokenString string) (loggedInUserId string, err error)
}

// EnsureReasonableDefaults fills unset config values.
func (m *Middleware) EnsureReasonableDefaults() {
	if m.UserParamName == "" {
		m.UserParamName = "loggedInUserId"
	}
	if m.AuthTokenHeaderName == "" {
		m.AuthTokenHeaderName = "Authorization"
	}
}

// GetLoggedInUserId returns the ID of the logged in user for the current
// request, or "" if no valid credential was presented.
func (m *Middleware) GetLoggedInUserId(r *http.Request) string {
	m.EnsureReasonableDefaults()

	if v := r.Context().Value(userParamNameKey(m.UserParamName)); v != nil {
		if userID, ok := v.(string); ok && userID != "" {
			return userID
		}
	}

	if m.SessionGetter != nil {
		if v := m.SessionGetter(r, m.UserParamName); v != nil && v != "" {
			return v.(string)
		}
	}

	if m.VerifyToken == nil {
		slog.Warn("no auth token verifier configured")
		return ""
	}

	for _, tokenString := range m.bearerTokens(r) {
		userID, err := m.VerifyToken(tokenString)
		if err == nil && userID != "" {
			return userID
		}
	}
	return ""
}

// bearerTokens collects candidate tokens from the auth header and cookie.
func (m *Middleware) bearerTokens(r *http.Request) []string {
	var tokens []string
	for _, header := range r.Header.Values(m.AuthTokenHeaderName) {
		tokens = append(tokens, strings.TrimPrefix(header, "Bearer "))
	}
	if m.AuthTokenCookieName != "" {
		for _, cookie := range r.CookiesNamed(m.AuthTokenCookieName) {
			if cookie.Value != "" {
				tokens = append(tokens, cookie.Value)
			}
		}
	}
	return tokens
}

// ExtractUser loads the logged in user id (if any) into the request
// context for downstream handlers.  It never rejects requests; pair with
// EnsureUser to enforce authentication.
func (m *Middleware) ExtractUser(next http.Handler) http.Handler {
	m.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.GetLoggedInUserId(r)
		next.ServeHTTP(w, m.setLoggedInUserId(userID, r))
	})
}

// EnsureUser extracts the user and rejects the request with a 401 when no
// valid credential was presented.
func (m *Middleware) EnsureUser(next http.Handler) http.Handler {
	m.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := m.GetLoggedInUserId(r)
		if userID == "" {
			NewAuthError(ErrCodeInvalidToken, "Invalid token").WriteJSON(w)
			return
		}
		next.ServeHTTP(w, m.setLoggedInUserId(userID, r))
	})
}

// setLoggedInUserId stores the user id as a request scoped variable.
func (m *Middleware) setLoggedInUserId(userID string, r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), userParamNameKey(m.UserParamName), userID)
	return r.WithContext(ctx)
}
