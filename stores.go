package vauth

import "time"

// UserStore manages user accounts.  Lookups that find nothing return
// ErrUserNotFound; creating a user with a duplicate email returns
// ErrEmailExists.
type UserStore interface {
	// CreateUser persists a new user.  The caller assigns the ID.
	CreateUser(user *User) error

	// GetUserByID retrieves a user by their ID.
	GetUserByID(id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(email string) (*User, error)

	// GetUserByProvider retrieves a user by (provider, provider-assigned id).
	// Only meaningful for providers other than "email".
	GetUserByProvider(provider, providerID string) (*User, error)

	// SaveUser updates an existing user (upsert).
	SaveUser(user *User) error

	// DeleteUser removes a user.  Dependent sessions and oauth tokens are
	// removed with it.
	DeleteUser(id string) error
}

// SessionStore records issued bearer tokens server-side so they can be
// listed and revoked.  Token verification itself stays stateless; see
// Service.handleVerify.
type SessionStore interface {
	// CreateSession persists a new session.
	CreateSession(session *Session) error

	// GetSessionByToken retrieves a session by its token value.  Returns
	// ErrSessionNotFound if missing or already revoked.
	GetSessionByToken(token string) (*Session, error)

	// DeleteSessionByToken revokes a single session.
	DeleteSessionByToken(token string) error

	// DeleteUserSessions revokes all sessions for a user.
	DeleteUserSessions(userID string) error

	// DeleteExpiredSessions removes expired rows (for maintenance).
	DeleteExpiredSessions() error
}

// OAuthToken records a provider access/refresh token obtained during a
// server-side code exchange.
type OAuthToken struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OAuthTokenStore manages provider tokens, one per (user, provider).
type OAuthTokenStore interface {
	// SaveOAuthToken creates or replaces the token for (UserID, Provider).
	SaveOAuthToken(token *OAuthToken) error

	// GetOAuthToken retrieves the token for (userID, provider).  Returns
	// ErrTokenNotFound if missing.
	GetOAuthToken(userID, provider string) (*OAuthToken, error)

	// DeleteUserOAuthTokens removes all provider tokens for a user.
	DeleteUserOAuthTokens(userID string) error
}
