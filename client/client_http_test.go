package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// mockCredentialStore is an in-memory CredentialStore for tests.
type mockCredentialStore struct {
	mu      sync.Mutex
	servers map[string]*ServerCredential
	saves   int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{servers: make(map[string]*ServerCredential)}
}

func (s *mockCredentialStore) GetCredential(serverURL string) (*ServerCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.servers[serverURL], nil
}

func (s *mockCredentialStore) SetCredential(serverURL string, cred *ServerCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers[serverURL] = cred
	return nil
}

func (s *mockCredentialStore) RemoveCredential(serverURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.servers, serverURL)
	return nil
}

func (s *mockCredentialStore) ListServers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.servers))
	for k := range s.servers {
		out = append(out, k)
	}
	return out, nil
}

func (s *mockCredentialStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

// newAuthTestServer fakes the vauth HTTP surface well enough for the
// client: one known account, one valid token.
func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeAuth := func(w http.ResponseWriter, status int) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(authResponse{
			Message: "ok",
			User:    &UserInfo{ID: "u1", Email: "user@example.com"},
			Token:   "tok-123",
		})
	}

	mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeAuth(w, http.StatusCreated)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}
		writeAuth(w, http.StatusOK)
	})
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": &UserInfo{ID: "u1", Email: "user@example.com"},
		})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("hello"))
	})

	return httptest.NewServer(mux)
}

func TestAuthClient_Login(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	user, err := c.Login("user@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}

	cred, _ := store.GetCredential(server.URL)
	if cred == nil {
		t.Fatal("expected credential to be stored")
	}
	if cred.AccessToken != "tok-123" {
		t.Errorf("AccessToken = %v, want tok-123", cred.AccessToken)
	}
	if cred.UserEmail != "user@example.com" {
		t.Errorf("UserEmail = %v, want user@example.com", cred.UserEmail)
	}
	if store.saves == 0 {
		t.Error("expected Save to be called")
	}
	if !c.IsLoggedIn() {
		t.Error("expected IsLoggedIn after login")
	}
}

func TestAuthClient_Login_BadPassword(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	if _, err := c.Login("user@example.com", "wrong"); err == nil {
		t.Fatal("expected error for bad password")
	}
	if cred, _ := store.GetCredential(server.URL); cred != nil {
		t.Error("expected no credential stored after failed login")
	}
}

func TestAuthClient_Signup(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	user, err := c.Signup("user@example.com", "secret123")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user == nil || user.Email != "user@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if cred, _ := store.GetCredential(server.URL); cred == nil {
		t.Error("expected credential stored after signup")
	}
}

func TestAuthClient_Verify(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	if _, err := c.Verify(); err == nil {
		t.Fatal("expected error verifying without login")
	}

	if _, err := c.Login("user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := c.Verify()
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %v, want u1", user.ID)
	}
}

func TestAuthClient_HTTPClient_AttachesToken(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	if _, err := c.Login("user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	resp, err := c.HTTPClient().Get(server.URL + "/protected")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthClient_Logout(t *testing.T) {
	server := newAuthTestServer(t)
	defer server.Close()

	store := newMockCredentialStore()
	c := NewAuthClient(server.URL, store)

	if _, err := c.Login("user@example.com", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if c.IsLoggedIn() {
		t.Error("expected not logged in after logout")
	}
	if cred, _ := store.GetCredential(server.URL); cred != nil {
		t.Error("expected credential removed after logout")
	}
}
