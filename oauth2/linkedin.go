package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const linkedinUserinfoURL = "https://api.linkedin.com/v2/userinfo"

// LinkedInOAuth2 implements the LinkedIn login flow using the OpenID
// Connect userinfo endpoint.
type LinkedInOAuth2 struct {
	*BaseOAuth2
}

// NewLinkedInOAuth2 builds the LinkedIn provider, falling back to the
// OAUTH2_LINKEDIN_* environment variables for unset values.
func NewLinkedInOAuth2(clientId string, clientSecret string, callbackUrl string) *LinkedInOAuth2 {
	if clientId == "" {
		clientId = os.Getenv("OAUTH2_LINKEDIN_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("OAUTH2_LINKEDIN_CLIENT_SECRET")
	}
	if callbackUrl == "" {
		callbackUrl = os.Getenv("OAUTH2_LINKEDIN_CALLBACK_URL")
	}

	out := &LinkedInOAuth2{
		BaseOAuth2: NewBaseOAuth2(clientId, clientSecret, callbackUrl),
	}
	out.oauthConfig.Endpoint = linkedin.Endpoint
	out.oauthConfig.Scopes = []string{"openid", "profile", "email"}
	return out
}

func (l *LinkedInOAuth2) Name() string { return "linkedin" }

// Exchange trades the authorization code for a token and fetches the
// user's LinkedIn profile.
func (l *LinkedInOAuth2) Exchange(ctx context.Context, code string) (*oauth2.Token, *UserInfo, error) {
	return l.exchangeWithUserinfoURL(ctx, code, linkedinUserinfoURL)
}

func (l *LinkedInOAuth2) exchangeWithUserinfoURL(ctx context.Context, code string, userinfoURL string) (*oauth2.Token, *UserInfo, error) {
	token, err := l.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("code exchange failed: %w", err)
	}

	info, err := fetchLinkedInUserinfo(ctx, l.oauthConfig.Client(ctx, token), userinfoURL)
	if err != nil {
		return nil, nil, err
	}

	return token, &UserInfo{
		Provider:   l.Name(),
		ProviderID: info.Sub,
		Email:      info.Email,
		FirstName:  info.GivenName,
		LastName:   info.FamilyName,
		Picture:    info.Picture,
	}, nil
}

type linkedinUserinfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func fetchLinkedInUserinfo(ctx context.Context, client *http.Client, userinfoURL string) (*linkedinUserinfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned %s", resp.Status)
	}

	var info linkedinUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("linkedin userinfo missing sub or email")
	}
	return &info, nil
}
