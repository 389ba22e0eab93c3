package oauth2

import (
	"os"

	"golang.org/x/oauth2"
)

// BaseOAuth2 holds the configuration shared by all providers.
type BaseOAuth2 struct {
	ClientId     string
	ClientSecret string
	CallbackURL  string
	oauthConfig  oauth2.Config
}

// NewBaseOAuth2 builds the shared config, falling back to the generic
// OAUTH2_* environment variables for unset values.
func NewBaseOAuth2(clientId string, clientSecret string, callbackUrl string) *BaseOAuth2 {
	if clientId == "" {
		clientId = os.Getenv("OAUTH2_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("OAUTH2_CLIENT_SECRET")
	}
	if callbackUrl == "" {
		callbackUrl = os.Getenv("OAUTH2_CALLBACK_URL")
	}
	return &BaseOAuth2{
		ClientId:     clientId,
		ClientSecret: clientSecret,
		CallbackURL:  callbackUrl,
		oauthConfig: oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			RedirectURL:  callbackUrl,
		},
	}
}

// AuthCodeURL builds the consent page URL for the given CSRF state.
func (b *BaseOAuth2) AuthCodeURL(state string) string {
	return b.oauthConfig.AuthCodeURL(state)
}

// Config exposes the underlying oauth2.Config for provider-specific use.
func (b *BaseOAuth2) Config() *oauth2.Config {
	return &b.oauthConfig
}
