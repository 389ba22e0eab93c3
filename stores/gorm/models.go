//go:build !wasm
// +build !wasm

package gorm

import (
	"time"

	va "github.com/vidlink/vauth"
)

// UserModel is the GORM model for user accounts
type UserModel struct {
	ID              string    `gorm:"primaryKey;size:64"`
	Email           string    `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `gorm:"size:255"`
	AuthProvider    string    `gorm:"size:32;default:email;index:idx_users_provider,priority:1"`
	AuthProviderID  string    `gorm:"size:255;index:idx_users_provider,priority:2"`
	FirstName       string    `gorm:"size:255"`
	LastName        string    `gorm:"size:255"`
	ProfilePicture  string    `gorm:"size:1024"`
	LinkedInProfile string    `gorm:"size:1024"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToUser() *va.User {
	return &va.User{
		ID:              m.ID,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		AuthProvider:    m.AuthProvider,
		AuthProviderID:  m.AuthProviderID,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		ProfilePicture:  m.ProfilePicture,
		LinkedInProfile: m.LinkedInProfile,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func UserToModel(u *va.User) *UserModel {
	return &UserModel{
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

// SessionModel is the GORM model for issued-token session records
type SessionModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:64;index;not null"`
	User      UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"size:1024;uniqueIndex:idx_user_sessions_token;not null"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionModel) TableName() string {
	return "user_sessions"
}

func (m *SessionModel) ToSession() *va.Session {
	return &va.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func SessionToModel(s *va.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

// OAuthTokenModel is the GORM model for provider-issued tokens
type OAuthTokenModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	UserID       string    `gorm:"size:64;index;not null"`
	User         UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Provider     string    `gorm:"size:32;not null"`
	AccessToken  string    `gorm:"size:4096"`
	RefreshToken string    `gorm:"size:4096"`
	ExpiresAt    time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (OAuthTokenModel) TableName() string {
	return "oauth_tokens"
}

func (m *OAuthTokenModel) ToOAuthToken() *va.OAuthToken {
	return &va.OAuthToken{
		ID:           m.ID,
		UserID:       m.UserID,
		Provider:     m.Provider,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func OAuthTokenToModel(t *va.OAuthToken) *OAuthTokenModel {
	return &OAuthTokenModel{
		ID:           t.ID,
		UserID:       t.UserID,
		Provider:     t.Provider,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		CreatedAt:    t.CreatedAt,
	}
}
