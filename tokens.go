package vauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window for issued bearer tokens.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenIssuer signs and verifies the bearer tokens handed to clients.
// Tokens are HS256 JWTs carrying the user id as the subject claim.
type TokenIssuer struct {
	// SecretKey signs and verifies tokens.  Required.
	SecretKey string

	// Issuer is the "iss" claim.  Defaults to "vauth".
	Issuer string

	// TTL is the token validity window.  Defaults to DefaultTokenTTL.
	TTL time.Duration
}

// EnsureDefaults fills unset optional fields.
func (t *TokenIssuer) EnsureDefaults() *TokenIssuer {
	if t.Issuer == "" {
		t.Issuer = "vauth"
	}
	if t.TTL <= 0 {
		t.TTL = DefaultTokenTTL
	}
	return t
}

// Issue creates a signed token for the user, valid for the configured TTL.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	t.EnsureDefaults()
	if t.SecretKey == "" {
		return "", fmt.Errorf("token issuer has no secret key")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iss": t.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(t.TTL).Unix(),
	})
	return token.SignedString([]byte(t.SecretKey))
}

// Verify parses and validates a token string and returns the embedded user
// id.  Invalid signatures, expired tokens and malformed input all fail.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	t.EnsureDefaults()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.SecretKey), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims == nil {
		return "", fmt.Errorf("claims is not a map")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("subject not found")
	}
	return sub, nil
}
