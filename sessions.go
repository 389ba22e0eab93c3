package vauth

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record of an issued bearer token.  The token
// itself is self-contained; the row exists so logout can revoke it and so
// active sessions can be audited.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session's validity window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// NewSession builds a session record for a freshly issued token.
func NewSession(userID, token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
