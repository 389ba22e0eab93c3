package client

import (
	"net/http"
)

// AuthTransport wraps an http.RoundTripper to add Authorization headers.
// The token is fetched per request so a re-login picks up the new one.
type AuthTransport struct {
	Base        http.RoundTripper
	TokenSource func() (string, error)
}

// RoundTrip implements http.RoundTripper
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := ""
	if t.TokenSource != nil {
		var err error
		token, err = t.TokenSource()
		if err != nil {
			return nil, err
		}
	}

	if token != "" {
		// Clone the request to avoid mutating the original
		req2 := req.Clone(req.Context())
		req2.Header.Set("Authorization", "Bearer "+token)
		req = req2
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewStaticTransport creates an AuthTransport that always sends the
// given token.
func NewStaticTransport(token string) *AuthTransport {
	return &AuthTransport{
		TokenSource: func() (string, error) { return token, nil },
	}
}
