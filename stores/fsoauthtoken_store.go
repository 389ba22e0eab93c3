package stores

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	va "github.com/vidlink/vauth"
)

// FSOAuthTokenStore stores provider tokens as JSON files under
// <StoragePath>/oauth_tokens/<userID>_<provider>.json, one file per
// (user, provider).
type FSOAuthTokenStore struct {
	StoragePath string

	mu sync.RWMutex
}

func NewFSOAuthTokenStore(storagePath string) *FSOAuthTokenStore {
	return &FSOAuthTokenStore{StoragePath: storagePath}
}

func (s *FSOAuthTokenStore) tokenDir() string {
	return filepath.Join(s.StoragePath, "oauth_tokens")
}

func (s *FSOAuthTokenStore) tokenPath(userID, provider string) string {
	return filepath.Join(s.tokenDir(), userID+"_"+provider+".json")
}

func (s *FSOAuthTokenStore) SaveOAuthToken(token *va.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, err := s.read(s.tokenPath(token.UserID, token.Provider)); err == nil {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	} else {
		if token.ID == "" {
			token.ID = uuid.NewString()
		}
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	path := s.tokenPath(token.UserID, token.Provider)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSOAuthTokenStore) GetOAuthToken(userID, provider string) (*va.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.tokenPath(userID, provider))
}

func (s *FSOAuthTokenStore) DeleteUserOAuthTokens(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.tokenDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), userID+"_") {
			continue
		}
		path := filepath.Join(s.tokenDir(), entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *FSOAuthTokenStore) read(path string) (*va.OAuthToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, va.ErrTokenNotFound
		}
		return nil, err
	}

	var token va.OAuthToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
