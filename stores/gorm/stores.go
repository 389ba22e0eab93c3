//go:build !wasm
// +build !wasm

package gorm

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	va "github.com/vidlink/vauth"
)

// AutoMigrate runs database migrations for all vauth tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&SessionModel{},
		&OAuthTokenModel{},
	)
}

// =============================================================================
// UserStore
// =============================================================================

// UserStore implements va.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(user *va.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	model := UserToModel(user)
	if err := s.db.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return va.ErrEmailExists
		}
		return err
	}
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *UserStore) GetUserByID(id string) (*va.User, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, va.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) GetUserByEmail(email string) (*va.User, error) {
	var model UserModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, va.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) GetUserByProvider(provider, providerID string) (*va.User, error) {
	var model UserModel
	err := s.db.First(&model, "auth_provider = ? AND auth_provider_id = ?", provider, providerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, va.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToUser(), nil
}

func (s *UserStore) SaveUser(user *va.User) error {
	model := UserToModel(user)
	if err := s.db.Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return va.ErrEmailExists
		}
		return err
	}
	user.UpdatedAt = model.UpdatedAt
	return nil
}

func (s *UserStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// =============================================================================
// SessionStore
// =============================================================================

// SessionStore implements va.SessionStore using GORM
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(session *va.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	model := SessionToModel(session)
	if err := s.db.Create(model).Error; err != nil {
		return err
	}
	session.CreatedAt = model.CreatedAt
	return nil
}

func (s *SessionStore) GetSessionByToken(token string) (*va.Session, error) {
	var model SessionModel
	if err := s.db.First(&model, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, va.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToSession(), nil
}

func (s *SessionStore) DeleteSessionByToken(token string) error {
	res := s.db.Delete(&SessionModel{}, "token = ?", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return va.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) DeleteUserSessions(userID string) error {
	return s.db.Delete(&SessionModel{}, "user_id = ?", userID).Error
}

func (s *SessionStore) DeleteExpiredSessions() error {
	return s.db.Delete(&SessionModel{}, "expires_at < ?", time.Now()).Error
}

// =============================================================================
// OAuthTokenStore
// =============================================================================

// OAuthTokenStore implements va.OAuthTokenStore using GORM.  One row per
// (user, provider); saves overwrite the previous token.
type OAuthTokenStore struct {
	db *gorm.DB
}

func NewOAuthTokenStore(db *gorm.DB) *OAuthTokenStore {
	return &OAuthTokenStore{db: db}
}

func (s *OAuthTokenStore) SaveOAuthToken(token *va.OAuthToken) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model OAuthTokenModel
		err := tx.First(&model, "user_id = ? AND provider = ?", token.UserID, token.Provider).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if token.ID == "" {
				token.ID = uuid.NewString()
			}
			fresh := OAuthTokenToModel(token)
			if err := tx.Create(fresh).Error; err != nil {
				return err
			}
			token.CreatedAt = fresh.CreatedAt
			token.UpdatedAt = fresh.UpdatedAt
			return nil
		case err != nil:
			return err
		}

		token.ID = model.ID
		token.CreatedAt = model.CreatedAt
		return tx.Model(&model).Updates(map[string]any{
			"access_token":  token.AccessToken,
			"refresh_token": token.RefreshToken,
			"expires_at":    token.ExpiresAt,
		}).Error
	})
}

func (s *OAuthTokenStore) GetOAuthToken(userID, provider string) (*va.OAuthToken, error) {
	var model OAuthTokenModel
	err := s.db.First(&model, "user_id = ? AND provider = ?", userID, provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, va.ErrTokenNotFound
		}
		return nil, err
	}
	return model.ToOAuthToken(), nil
}

func (s *OAuthTokenStore) DeleteUserOAuthTokens(userID string) error {
	return s.db.Delete(&OAuthTokenModel{}, "user_id = ?", userID).Error
}
