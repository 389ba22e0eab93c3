package stores

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	va "github.com/vidlink/vauth"
)

// FSSessionStore stores session records as JSON files under
// <StoragePath>/sessions/, named by a hash of the token so lookups by
// token are a single stat.
type FSSessionStore struct {
	StoragePath string

	mu sync.RWMutex
}

func NewFSSessionStore(storagePath string) *FSSessionStore {
	return &FSSessionStore{StoragePath: storagePath}
}

func (s *FSSessionStore) sessionDir() string {
	return filepath.Join(s.StoragePath, "sessions")
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *FSSessionStore) sessionPath(token string) string {
	return filepath.Join(s.sessionDir(), hashToken(token)+".json")
}

func (s *FSSessionStore) CreateSession(session *va.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	path := s.sessionPath(session.Token)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSSessionStore) GetSessionByToken(token string) (*va.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.sessionPath(token))
}

func (s *FSSessionStore) DeleteSessionByToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.sessionPath(token))
	if os.IsNotExist(err) {
		return va.ErrSessionNotFound
	}
	return err
}

func (s *FSSessionStore) DeleteUserSessions(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteMatching(func(sess *va.Session) bool {
		return sess.UserID == userID
	})
}

func (s *FSSessionStore) DeleteExpiredSessions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteMatching((*va.Session).IsExpired)
}

func (s *FSSessionStore) read(path string) (*va.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, va.ErrSessionNotFound
		}
		return nil, err
	}

	var session va.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *FSSessionStore) deleteMatching(match func(*va.Session) bool) error {
	entries, err := os.ReadDir(s.sessionDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.sessionDir(), entry.Name())
		session, err := s.read(path)
		if err != nil {
			continue
		}
		if match(session) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}
