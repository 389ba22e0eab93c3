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

// fsUser is the on-disk record.  It differs from va.User only in that the
// password hash is serialized; va.User hides it from all JSON output.
type fsUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"password_hash,omitempty"`
	AuthProvider    string    `json:"auth_provider"`
	AuthProviderID  string    `json:"auth_provider_id,omitempty"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	ProfilePicture  string    `json:"profile_picture,omitempty"`
	LinkedInProfile string    `json:"linkedin_profile,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func fsUserFrom(u *va.User) *fsUser {
	return &fsUser{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		AuthProvider:    u.AuthProvider,
		AuthProviderID:  u.AuthProviderID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfilePicture:  u.ProfilePicture,
		LinkedInProfile: u.LinkedInProfile,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (r *fsUser) toUser() *va.User {
	return &va.User{
		ID:              r.ID,
		Email:           r.Email,
		PasswordHash:    r.PasswordHash,
		AuthProvider:    r.AuthProvider,
		AuthProviderID:  r.AuthProviderID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		ProfilePicture:  r.ProfilePicture,
		LinkedInProfile: r.LinkedInProfile,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FSUserStore stores users as one JSON file per user under
// <StoragePath>/users/<id>.json.  Email and provider lookups scan the
// directory; fine for tests and small single-node deployments.
// DeleteUser also removes the user's session and oauth-token files kept
// under the same StoragePath.
type FSUserStore struct {
	StoragePath string

	mu sync.RWMutex
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

func (s *FSUserStore) userDir() string {
	return filepath.Join(s.StoragePath, "users")
}

func (s *FSUserStore) userPath(id string) string {
	return filepath.Join(s.userDir(), id+".json")
}

func (s *FSUserStore) CreateUser(user *va.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if existing, _ := s.findUser(func(u *va.User) bool {
		return strings.EqualFold(u.Email, user.Email)
	}); existing != nil {
		return va.ErrEmailExists
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.write(user)
}

func (s *FSUserStore) GetUserByID(id string) (*va.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FSUserStore) GetUserByEmail(email string) (*va.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u *va.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (s *FSUserStore) GetUserByProvider(provider, providerID string) (*va.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findUser(func(u *va.User) bool {
		return u.AuthProvider == provider && u.AuthProviderID == providerID
	})
}

func (s *FSUserStore) SaveUser(user *va.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.UpdatedAt = time.Now()
	return s.write(user)
}

func (s *FSUserStore) DeleteUser(id string) error {
	s.mu.Lock()
	if err := os.Remove(s.userPath(id)); err != nil && !os.IsNotExist(err) {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	// Dependent records live under the same StoragePath; removing them
	// here matches the database backend's FK cascade.
	if err := NewFSSessionStore(s.StoragePath).DeleteUserSessions(id); err != nil {
		return err
	}
	return NewFSOAuthTokenStore(s.StoragePath).DeleteUserOAuthTokens(id)
}

func (s *FSUserStore) read(id string) (*va.User, error) {
	data, err := os.ReadFile(s.userPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, va.ErrUserNotFound
		}
		return nil, err
	}

	var rec fsUser
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}

func (s *FSUserStore) write(user *va.User) error {
	path := s.userPath(user.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(fsUserFrom(user), "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSUserStore) findUser(match func(*va.User) bool) (*va.User, error) {
	entries, err := os.ReadDir(s.userDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, va.ErrUserNotFound
		}
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		user, err := s.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if match(user) {
			return user, nil
		}
	}
	return nil, va.ErrUserNotFound
}
