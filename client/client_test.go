package client

import (
	"testing"
	"time"
)

func TestServerCredential_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "expired",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "not expired",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name: "no expiry recorded",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ServerCredential{ExpiresAt: tt.expiresAt}
			if got := c.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServerCredential_IsExpiringSoon(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		within    time.Duration
		want      bool
	}{
		{
			name:      "expiring soon",
			expiresAt: time.Now().Add(2 * time.Minute),
			within:    5 * time.Minute,
			want:      true,
		},
		{
			name:      "not expiring soon",
			expiresAt: time.Now().Add(10 * time.Minute),
			within:    5 * time.Minute,
			want:      false,
		},
		{
			name:      "already expired",
			expiresAt: time.Now().Add(-1 * time.Minute),
			within:    5 * time.Minute,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ServerCredential{ExpiresAt: tt.expiresAt}
			if got := c.IsExpiringSoon(tt.within); got != tt.want {
				t.Errorf("IsExpiringSoon(%v) = %v, want %v", tt.within, got, tt.want)
			}
		})
	}
}

func TestTokenExpiry_BadToken(t *testing.T) {
	if got := tokenExpiry("not-a-jwt"); !got.IsZero() {
		t.Errorf("expected zero time for garbage token, got %v", got)
	}
}
