package vauth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	authp "github.com/vidlink/vauth/oauth2"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string      `json:"message"`
	User    *PublicUser `json:"user"`
	Token   string      `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	ae := AsAuthError(err)
	if ae.Status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", ae.Code, "error", err)
	}
	ae.WriteJSON(w)
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return NewValidationError(ErrCodeMissingField, "Invalid request body", "")
	}
	return nil
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.Resolver.Signup(req.Email, req.Password)
	s.Metrics.RecordSignup(err)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User created successfully",
		User:    user.Public(),
		Token:   token,
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.Resolver.Login(req.Email, req.Password)
	s.Metrics.RecordLogin(err)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}

// handleOAuthCallback accepts an already-resolved OAuth assertion from a
// client that ran the provider flow itself (the mobile deep-link path).
func (s *Service) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	var assertion OAuthAssertion
	if err := decodeBody(r, &assertion); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.Resolver.ResolveOAuth(&assertion)
	s.Metrics.RecordOAuthLogin(assertion.Provider, err)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "OAuth login successful",
		User:    user.Public(),
		Token:   token,
	})
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		err := NewAuthError(ErrCodeInvalidToken, "No token provided")
		s.Metrics.RecordVerification(err)
		writeError(w, err)
		return
	}

	userID, err := s.Issuer.Verify(token)
	if err != nil {
		authErr := NewAuthError(ErrCodeInvalidToken, "Invalid token")
		s.Metrics.RecordVerification(authErr)
		writeError(w, authErr)
		return
	}

	// The token must still resolve to a live user.
	user, err := s.Users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			authErr := NewAuthError(ErrCodeInvalidToken, "Invalid token")
			s.Metrics.RecordVerification(authErr)
			writeError(w, authErr)
			return
		}
		s.Metrics.RecordVerification(err)
		writeError(w, err)
		return
	}

	s.Metrics.RecordVerification(nil)
	writeJSON(w, http.StatusOK, map[string]any{"user": user.Public()})
}

// handleLogout revokes the presented token's server-side session record.
// The token itself stays valid until expiry; clients drop their copy.
func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, NewAuthError(ErrCodeInvalidToken, "No token provided"))
		return
	}
	if _, err := s.Issuer.Verify(token); err != nil {
		writeError(w, NewAuthError(ErrCodeInvalidToken, "Invalid token"))
		return
	}

	if s.Sessions != nil {
		if err := s.Sessions.DeleteSessionByToken(token); err != nil && !errors.Is(err, ErrSessionNotFound) {
			writeError(w, err)
			return
		}
	}
	if s.Session != nil {
		if err := s.Session.Clear(r.Context()); err != nil {
			slog.Warn("error clearing session", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

// handleProviderRedirect starts the server-side OAuth flow for a
// registered provider.
func (s *Service) handleProviderRedirect(w http.ResponseWriter, r *http.Request) {
	p := s.Provider(mux.Vars(r)["provider"])
	if p == nil {
		http.NotFound(w, r)
		return
	}
	authp.Redirector(p)(w, r)
}

// handleProviderCallback finishes the server-side OAuth flow: state
// check, code exchange, account resolution, token issue.  The provider's
// own token is persisted when an OAuthTokenStore is configured.
func (s *Service) handleProviderCallback(w http.ResponseWriter, r *http.Request) {
	p := s.Provider(mux.Vars(r)["provider"])
	if p == nil {
		http.NotFound(w, r)
		return
	}

	if !authp.ValidateState(w, r) {
		writeError(w, NewValidationError(ErrCodeMissingField, "Invalid oauth state", "state"))
		return
	}

	providerToken, info, err := p.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		slog.Error("oauth exchange failed", "provider", p.Name(), "error", err)
		s.Metrics.RecordOAuthLogin(p.Name(), NewInternalError(""))
		writeError(w, NewAuthError(ErrCodeInvalidCreds, "OAuth login failed"))
		return
	}

	user, err := s.Resolver.ResolveOAuth(&OAuthAssertion{
		Provider:       info.Provider,
		ProviderID:     info.ProviderID,
		Email:          info.Email,
		FirstName:      info.FirstName,
		LastName:       info.LastName,
		ProfilePicture: info.Picture,
	})
	s.Metrics.RecordOAuthLogin(p.Name(), err)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.OAuthTokens != nil {
		s.saveProviderToken(user.ID, p.Name(), providerToken.AccessToken, providerToken.RefreshToken, providerToken.Expiry)
	}

	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	if s.Session != nil {
		s.Session.Put(r.Context(), s.Middleware.UserParamName, user.ID)
	}

	// Deep-link clients get the token appended to their callback URL;
	// everyone else gets JSON.
	if callbackCookie, _ := r.Cookie(authp.CallbackURLCookieName); callbackCookie != nil && callbackCookie.Value != "" {
		http.SetCookie(w, &http.Cookie{Name: authp.CallbackURLCookieName, Value: "", Path: "/", MaxAge: -1})
		target := callbackCookie.Value
		if u, err := url.Parse(target); err == nil {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			target = u.String()
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "OAuth login successful",
		User:    user.Public(),
		Token:   token,
	})
}

func (s *Service) saveProviderToken(userID, provider, accessToken, refreshToken string, expiry time.Time) {
	if accessToken == "" {
		return
	}
	err := s.OAuthTokens.SaveOAuthToken(&OAuthToken{
		UserID:       userID,
		Provider:     provider,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiry,
	})
	if err != nil {
		slog.Warn("failed to save provider token", "provider", provider, "error", err)
	}
}
