package vauth

import (
	"net/http"
	"os"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"

	authp "github.com/vidlink/vauth/oauth2"
)

// Service wires the account resolver, token issuer and stores into the
// HTTP auth surface.  Mount Handler() at the server root; all routes live
// under /auth.
type Service struct {
	router *mux.Router

	// Resolver maps credentials and OAuth assertions to users.
	Resolver *Resolver

	// Issuer signs and verifies bearer tokens.
	Issuer *TokenIssuer

	// Users is the backing user store.
	Users UserStore

	// Sessions, when set, records each issued token server-side and lets
	// logout revoke it.
	Sessions SessionStore

	// OAuthTokens, when set, persists provider tokens obtained in the
	// server-side redirect flow.
	OAuthTokens OAuthTokenStore

	// Session manages the browser session used by the redirect flow.
	// Optional; JSON API clients never touch it.
	Session *scs.SessionManager

	// Middleware extracts bearer tokens on protected routes.
	Middleware Middleware

	// Metrics, when set, counts auth outcomes.
	Metrics *Metrics

	providers map[string]authp.Provider
}

// NewService creates a Service over the given store and issuer.
func NewService(users UserStore, issuer *TokenIssuer) *Service {
	s := &Service{
		Resolver: NewResolver(users),
		Issuer:   issuer,
		Users:    users,
	}
	s.EnsureDefaults()
	return s
}

// EnsureDefaults fills unset optional fields.
func (s *Service) EnsureDefaults() *Service {
	if s.Issuer == nil {
		s.Issuer = &TokenIssuer{SecretKey: strings.TrimSpace(os.Getenv("VAUTH_JWT_SECRET_KEY"))}
	}
	s.Issuer.EnsureDefaults()
	if s.Resolver == nil {
		s.Resolver = NewResolver(s.Users)
	}
	s.Middleware.EnsureReasonableDefaults()
	if s.Middleware.VerifyToken == nil {
		s.Middleware.VerifyToken = s.Issuer.Verify
	}
	if s.Session != nil && s.Middleware.SessionGetter == nil {
		s.Middleware.SessionGetter = func(r *http.Request, param string) any {
			return s.Session.Get(r.Context(), param)
		}
	}
	return s
}

// AddProvider registers an OAuth provider for the server-side redirect
// flow (GET /auth/{provider}/ and GET /auth/{provider}/callback).
func (s *Service) AddProvider(p authp.Provider) *Service {
	if s.providers == nil {
		s.providers = make(map[string]authp.Provider)
	}
	s.providers[p.Name()] = p
	return s
}

// Provider returns the registered provider by name, or nil.
func (s *Service) Provider(name string) authp.Provider {
	return s.providers[name]
}

// Handler returns the HTTP handler for the auth surface.
func (s *Service) Handler() http.Handler {
	s.EnsureDefaults()
	if s.router == nil {
		s.router = mux.NewRouter()
		auth := s.router.PathPrefix("/auth").Subrouter()
		auth.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
		auth.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
		auth.HandleFunc("/oauth/callback", s.handleOAuthCallback).Methods(http.MethodPost)
		auth.HandleFunc("/verify", s.handleVerify).Methods(http.MethodGet)
		auth.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
		auth.HandleFunc("/{provider}/", s.handleProviderRedirect).Methods(http.MethodGet)
		auth.HandleFunc("/{provider}/callback", s.handleProviderCallback).Methods(http.MethodGet)
	}
	if s.Session != nil {
		return s.Session.LoadAndSave(s.router)
	}
	return s.router
}

// issueToken mints a bearer token for the user and, when a session store
// is configured, records it server-side so logout can revoke it.
func (s *Service) issueToken(user *User) (string, error) {
	token, err := s.Issuer.Issue(user.ID)
	if err != nil {
		return "", err
	}
	if s.Sessions != nil {
		if err := s.Sessions.CreateSession(NewSession(user.ID, token, s.Issuer.TTL)); err != nil {
			return "", err
		}
	}
	return token, nil
}
