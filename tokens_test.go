package vauth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	vauth "github.com/vidlink/vauth"
)

const testSecret = "test-secret-key-for-tokens-0123456789"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := &vauth.TokenIssuer{SecretKey: testSecret}

	token, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a JWT, got %q", token)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("Verify() = %q, want user-42", userID)
	}
}

func TestTokenIssuer_Claims(t *testing.T) {
	issuer := &vauth.TokenIssuer{SecretKey: testSecret, TTL: time.Hour}

	token, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)

	if iss, _ := claims.GetIssuer(); iss != "vauth" {
		t.Errorf("iss = %q, want vauth", iss)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("missing exp claim: %v", err)
	}
	until := time.Until(exp.Time)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("exp %v from now, want about 1h", until)
	}
}

func TestTokenIssuer_NoSecret(t *testing.T) {
	issuer := &vauth.TokenIssuer{}
	if _, err := issuer.Issue("user-42"); err == nil {
		t.Error("expected error issuing without a secret")
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := &vauth.TokenIssuer{SecretKey: testSecret}
	token, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := &vauth.TokenIssuer{SecretKey: "a-completely-different-secret-key-abc"}
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification to fail with a different secret")
	}
}

func TestTokenIssuer_Tampered(t *testing.T) {
	issuer := &vauth.TokenIssuer{SecretKey: testSecret}
	token, err := issuer.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := issuer.Verify(tampered); err == nil {
		t.Error("expected verification to fail for tampered token")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"iss": "vauth",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-1 * time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	issuer := &vauth.TokenIssuer{SecretKey: testSecret}
	if _, err := issuer.Verify(tokenString); err == nil {
		t.Error("expected verification to fail for expired token")
	}
}

func TestTokenIssuer_RejectsNonHMAC(t *testing.T) {
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	issuer := &vauth.TokenIssuer{SecretKey: testSecret}
	if _, err := issuer.Verify(tokenString); err == nil {
		t.Error("expected verification to reject unsigned token")
	}
}

func TestTokenIssuer_MissingSubject(t *testing.T) {
	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "vauth",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := noSub.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	issuer := &vauth.TokenIssuer{SecretKey: testSecret}
	if _, err := issuer.Verify(tokenString); err == nil {
		t.Error("expected verification to fail without a subject")
	}
}
