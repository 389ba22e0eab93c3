package vauth

import "time"

// Auth providers.  ProviderEmail users authenticate with a password; the
// rest delegate to an external OAuth provider.
const (
	ProviderEmail    = "email"
	ProviderGoogle   = "google"
	ProviderLinkedIn = "linkedin"
)

// User is a single account.  Email is globally unique regardless of
// provider, and (AuthProvider, AuthProviderID) is unique for non-email
// providers.  PasswordHash is set only when AuthProvider is "email".
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	AuthProvider    string    `json:"authProvider"`
	AuthProviderID  string    `json:"authProviderId,omitempty"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	ProfilePicture  string    `json:"profilePicture,omitempty"`
	LinkedInProfile string    `json:"linkedinProfile,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicUser is the view of a user returned to clients.  It never carries
// credentials.
type PublicUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}

// IsOAuth reports whether the user authenticates via an external provider.
func (u *User) IsOAuth() bool {
	return u.AuthProvider != ProviderEmail
}
