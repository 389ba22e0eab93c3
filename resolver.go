package vauth

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the default minimum password length for signup.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail canonicalizes an address before any lookup or create.
// Stores compare emails however their backend does, so uniqueness across
// casings holds only if the resolver hands every store the same form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// OAuthAssertion is the already-resolved identity delivered by an OAuth
// callback: the provider, its id for the user, and whatever profile fields
// the provider shared.
type OAuthAssertion struct {
	Provider       string `json:"provider"`
	ProviderID     string `json:"providerId"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Resolver maps incoming credentials or OAuth assertions to user accounts,
// creating them on first contact.  All store access goes through the
// injected UserStore so tests can swap in doubles.
type Resolver struct {
	Users UserStore

	// MinPasswordLength overrides the default when > 0.
	MinPasswordLength int
}

// NewResolver creates a Resolver over the given store.
func NewResolver(users UserStore) *Resolver {
	return &Resolver{Users: users}
}

func (r *Resolver) minPasswordLength() int {
	if r.MinPasswordLength > 0 {
		return r.MinPasswordLength
	}
	return MinPasswordLength
}

// Signup registers a new email/password user.  The email must be unused
// by any provider.
func (r *Resolver) Signup(email, password string) (*User, error) {
	email = normalizeEmail(email)
	if !emailRegex.MatchString(email) {
		return nil, NewValidationError(ErrCodeInvalidEmail, "Invalid email format", "email")
	}
	if len(password) < r.minPasswordLength() {
		msg := fmt.Sprintf("Password must be at least %d characters", r.minPasswordLength())
		return nil, NewValidationError(ErrCodeWeakPassword, msg, "password")
	}

	if _, err := r.Users.GetUserByEmail(email); err == nil {
		return nil, NewConflictError(ErrCodeEmailExists, "User already exists")
	} else if !errors.Is(err, ErrUserNotFound) {
		slog.Error("signup lookup failed", "error", err)
		return nil, NewInternalError("")
	}

	hash, err := HashPassword(password)
	if err != nil {
		slog.Error("password hashing failed", "error", err)
		return nil, NewInternalError("")
	}

	now := time.Now()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		AuthProvider: ProviderEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Users.CreateUser(user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, NewConflictError(ErrCodeEmailExists, "User already exists")
		}
		slog.Error("user creation failed", "error", err)
		return nil, NewInternalError("")
	}

	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Login validates email/password credentials.  Users registered through an
// OAuth provider are told which provider to use instead.
func (r *Resolver) Login(email, password string) (*User, error) {
	email = normalizeEmail(email)
	user, err := r.Users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, NewAuthError(ErrCodeInvalidCreds, "Invalid credentials")
		}
		slog.Error("login lookup failed", "error", err)
		return nil, NewInternalError("")
	}

	if user.IsOAuth() {
		msg := fmt.Sprintf("Please login with %s", user.AuthProvider)
		return nil, NewAuthError(ErrCodeWrongProvider, msg)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, NewAuthError(ErrCodeInvalidCreds, "Invalid credentials")
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// ResolveOAuth maps an OAuth assertion to a user account.  Resolution
// order: the (provider, provider id) pair identifies a returning user;
// failing that, a user with the same email and the same provider is
// returning; an email held by a different provider is a conflict; an
// unknown email creates a new account.
//
// Calling twice with the same (provider, provider id) always yields the
// same user.  Profile fields on the returned user fall back to the
// assertion's values where the stored record has none; the fallback is
// response-level only and is not persisted.
func (r *Resolver) ResolveOAuth(a *OAuthAssertion) (*User, error) {
	if a.Provider == "" || a.ProviderID == "" || a.Email == "" {
		return nil, NewValidationError(ErrCodeMissingField, "Missing required OAuth data", "")
	}

	norm := *a
	norm.Email = normalizeEmail(a.Email)
	a = &norm

	user, err := r.Users.GetUserByProvider(a.Provider, a.ProviderID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		slog.Error("oauth provider lookup failed", "error", err)
		return nil, NewInternalError("")
	}

	if user == nil {
		user, err = r.Users.GetUserByEmail(a.Email)
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			slog.Error("oauth email lookup failed", "error", err)
			return nil, NewInternalError("")
		}

		if user != nil {
			if user.AuthProvider != a.Provider {
				msg := fmt.Sprintf("Email already registered with %s", user.AuthProvider)
				return nil, NewConflictError(ErrCodeEmailExists, msg)
			}
		} else {
			user, err = r.createOAuthUser(a)
			if err != nil {
				return nil, err
			}
			slog.Info("oauth user created", "user_id", user.ID, "provider", a.Provider)
			return user, nil
		}
	}

	slog.Info("oauth user resolved", "user_id", user.ID, "provider", a.Provider)
	return withAssertionFallbacks(user, a), nil
}

func (r *Resolver) createOAuthUser(a *OAuthAssertion) (*User, error) {
	now := time.Now()
	user := &User{
		ID:             uuid.NewString(),
		Email:          a.Email,
		AuthProvider:   a.Provider,
		AuthProviderID: a.ProviderID,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		ProfilePicture: a.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if a.Provider == ProviderLinkedIn {
		user.LinkedInProfile = a.ProviderID
	}

	if err := r.Users.CreateUser(user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, NewConflictError(ErrCodeEmailExists, "User already exists")
		}
		slog.Error("oauth user creation failed", "error", err)
		return nil, NewInternalError("")
	}
	return user, nil
}

// withAssertionFallbacks fills blank profile fields from the assertion on
// a copy of the user.
func withAssertionFallbacks(user *User, a *OAuthAssertion) *User {
	out := *user
	if out.FirstName == "" {
		out.FirstName = a.FirstName
	}
	if out.LastName == "" {
		out.LastName = a.LastName
	}
	if out.ProfilePicture == "" {
		out.ProfilePicture = a.ProfilePicture
	}
	return &out
}
