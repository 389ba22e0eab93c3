package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserInfo is the user object returned by the server on auth endpoints.
type UserInfo struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// authResponse is the server's response on signup/login.
type authResponse struct {
	Message string    `json:"message"`
	User    *UserInfo `json:"user"`
	Token   string    `json:"token"`
	Error   string    `json:"error,omitempty"`
	Code    string    `json:"code,omitempty"`
}

// AuthClient talks to a vauth server and keeps the obtained bearer
// token in a CredentialStore so it survives between runs.
type AuthClient struct {
	mu            sync.Mutex
	serverURL     string
	store         CredentialStore
	httpClient    *http.Client
	baseTransport http.RoundTripper
}

// ClientOption configures an AuthClient
type ClientOption func(*AuthClient)

// WithTransport sets a custom base transport (for connection pooling, proxies, etc.)
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *AuthClient) {
		c.baseTransport = transport
	}
}

// WithHTTPClient copies timeout and redirect settings from a base client.
// Its transport, if any, becomes the base transport.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *AuthClient) {
		if client == nil {
			return
		}
		if client.Transport != nil {
			c.baseTransport = client.Transport
		}
		c.httpClient.Timeout = client.Timeout
		c.httpClient.CheckRedirect = client.CheckRedirect
		c.httpClient.Jar = client.Jar
	}
}

// NewAuthClient creates a client for the given server.  Credentials are
// read from and written to store, keyed by the server URL.
func NewAuthClient(serverURL string, store CredentialStore, opts ...ClientOption) *AuthClient {
	// Normalize to scheme://host
	if u, err := url.Parse(serverURL); err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	}

	c := &AuthClient{
		serverURL:     serverURL,
		store:         store,
		httpClient:    &http.Client{},
		baseTransport: http.DefaultTransport,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Transport = &AuthTransport{
		Base:        c.baseTransport,
		TokenSource: c.Token,
	}

	return c
}

// HTTPClient returns an HTTP client that attaches the stored bearer
// token to every request.
func (c *AuthClient) HTTPClient() *http.Client {
	return c.httpClient
}

// ServerURL returns the server URL this client is configured for
func (c *AuthClient) ServerURL() string {
	return c.serverURL
}

// Token returns the stored access token, or empty if there is none or it
// has expired.
func (c *AuthClient) Token() (string, error) {
	cred, err := c.store.GetCredential(c.serverURL)
	if err != nil {
		return "", err
	}
	if cred == nil || cred.IsExpired() {
		return "", nil
	}
	return cred.AccessToken, nil
}

// IsLoggedIn returns true if there is a valid (non-expired) credential
func (c *AuthClient) IsLoggedIn() bool {
	token, err := c.Token()
	return err == nil && token != ""
}

// Signup registers a new email/password account and stores the returned
// token.
func (c *AuthClient) Signup(email, password string) (*UserInfo, error) {
	return c.authenticate("/auth/signup", email, password)
}

// Login authenticates with email/password and stores the returned token.
func (c *AuthClient) Login(email, password string) (*UserInfo, error) {
	return c.authenticate("/auth/login", email, password)
}

func (c *AuthClient) authenticate(path, email, password string) (*UserInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.postJSON(path, map[string]string{"email": email, "password": password}, "")
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("server returned no token")
	}

	cred := &ServerCredential{
		AccessToken: resp.Token,
		TokenType:   "Bearer",
		UserEmail:   email,
		ExpiresAt:   tokenExpiry(resp.Token),
		CreatedAt:   time.Now(),
	}
	if resp.User != nil {
		cred.UserID = resp.User.ID
		cred.UserEmail = resp.User.Email
	}

	if err := c.store.SetCredential(c.serverURL, cred); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	if err := c.store.Save(); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	return resp.User, nil
}

// Verify asks the server whether the stored token is still good and
// returns the user it belongs to.
func (c *AuthClient) Verify() (*UserInfo, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("not logged in")
	}

	req, err := http.NewRequest(http.MethodGet, c.serverURL+"/auth/verify", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	httpClient := &http.Client{Transport: c.baseTransport}
	httpResp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp struct {
		User  *UserInfo `json:"user"`
		Error string    `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from server: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		if resp.Error != "" {
			return nil, fmt.Errorf("verification failed: %s", resp.Error)
		}
		return nil, fmt.Errorf("verification failed: HTTP %d", httpResp.StatusCode)
	}
	return resp.User, nil
}

// Logout revokes the server-side session for the stored token and
// removes the local credential.
func (c *AuthClient) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred, err := c.store.GetCredential(c.serverURL)
	if err != nil {
		return err
	}

	if cred != nil && !cred.IsExpired() {
		// Best effort; the local credential goes away regardless.
		_, _ = c.postJSON("/auth/logout", nil, cred.AccessToken)
	}

	if err := c.store.RemoveCredential(c.serverURL); err != nil {
		return err
	}
	return c.store.Save()
}

// postJSON posts to path using the base transport, avoiding the
// token-attaching transport so auth endpoints see exactly what we send.
func (c *AuthClient) postJSON(path string, payload any, token string) (*authResponse, error) {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(http.MethodPost, c.serverURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := &http.Client{Transport: c.baseTransport}
	httpResp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp authResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from server: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		if resp.Error != "" {
			return nil, fmt.Errorf("authentication failed: %s", resp.Error)
		}
		return nil, fmt.Errorf("authentication failed: HTTP %d", httpResp.StatusCode)
	}
	return &resp, nil
}

// tokenExpiry reads the exp claim without verifying the signature; only
// the server can verify, the client just needs to know when to re-login.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
