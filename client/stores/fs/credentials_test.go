package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vidlink/vauth/client"
)

func TestFSCredentialStore_GetSetCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() error = %v", err)
	}

	// Initially empty
	cred, err := store.GetCredential("http://localhost:8080")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred != nil {
		t.Errorf("expected nil credential, got %+v", cred)
	}

	testCred := &client.ServerCredential{
		AccessToken: "test-token",
		UserEmail:   "user@example.com",
		ExpiresAt:   time.Now().Add(1 * time.Hour),
		CreatedAt:   time.Now(),
	}

	if err := store.SetCredential("http://localhost:8080", testCred); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}

	cred, err = store.GetCredential("http://localhost:8080")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred == nil {
		t.Fatal("expected credential, got nil")
	}
	if cred.AccessToken != "test-token" {
		t.Errorf("AccessToken = %v, want test-token", cred.AccessToken)
	}
}

func TestFSCredentialStore_NormalizesURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() error = %v", err)
	}

	testCred := &client.ServerCredential{AccessToken: "test-token"}
	if err := store.SetCredential("http://localhost:8080/some/path", testCred); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}

	// Lookup without the path should find the same credential
	cred, err := store.GetCredential("http://localhost:8080")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred == nil || cred.AccessToken != "test-token" {
		t.Errorf("expected credential via normalized URL, got %+v", cred)
	}
}

func TestFSCredentialStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() error = %v", err)
	}

	testCred := &client.ServerCredential{
		AccessToken: "persisted-token",
		UserEmail:   "user@example.com",
	}
	if err := store.SetCredential("https://api.example.com", testCred); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Credentials file should be owner read/write only
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 600", perm)
	}

	// A fresh store over the same path sees the credential
	reloaded, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() reload error = %v", err)
	}
	cred, err := reloaded.GetCredential("https://api.example.com")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred == nil || cred.AccessToken != "persisted-token" {
		t.Errorf("expected persisted credential, got %+v", cred)
	}
}

func TestFSCredentialStore_RemoveCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() error = %v", err)
	}

	if err := store.SetCredential("http://localhost:8080", &client.ServerCredential{AccessToken: "t"}); err != nil {
		t.Fatalf("SetCredential() error = %v", err)
	}
	if err := store.RemoveCredential("http://localhost:8080"); err != nil {
		t.Fatalf("RemoveCredential() error = %v", err)
	}

	cred, err := store.GetCredential("http://localhost:8080")
	if err != nil {
		t.Fatalf("GetCredential() error = %v", err)
	}
	if cred != nil {
		t.Errorf("expected nil after removal, got %+v", cred)
	}
}

func TestFSCredentialStore_ListServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFSCredentialStore(path, "")
	if err != nil {
		t.Fatalf("NewFSCredentialStore() error = %v", err)
	}

	store.SetCredential("http://a.example.com", &client.ServerCredential{AccessToken: "a"})
	store.SetCredential("http://b.example.com", &client.ServerCredential{AccessToken: "b"})

	servers, err := store.ListServers()
	if err != nil {
		t.Fatalf("ListServers() error = %v", err)
	}
	if len(servers) != 2 {
		t.Errorf("expected 2 servers, got %d: %v", len(servers), servers)
	}
}
