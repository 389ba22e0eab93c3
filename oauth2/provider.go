// Package oauth2 implements the server side of the OAuth login flow for
// the providers vauth supports.  Each provider wraps an oauth2.Config,
// exchanges the authorization code for a token, and normalizes the
// provider's userinfo response into a UserInfo.
package oauth2

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo is the normalized identity a provider reports after a
// successful code exchange.
type UserInfo struct {
	Provider   string
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
	Picture    string
}

// Provider is one OAuth login integration.
type Provider interface {
	// Name returns the provider tag ("google", "linkedin").
	Name() string

	// AuthCodeURL builds the provider's consent page URL for the given
	// CSRF state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for a provider token and
	// fetches the user's identity.
	Exchange(ctx context.Context, code string) (*oauth2.Token, *UserInfo, error)
}
