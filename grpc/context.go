// Package grpc provides authentication interceptors and context
// utilities for gRPC services that accept the bearer tokens issued by
// the vauth HTTP surface.
package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// Default metadata keys. These can be customized via Config if needed.
const (
	// DefaultMetadataKeyAuthorization carries the bearer token, same shape
	// as the HTTP Authorization header ("Bearer <token>").
	DefaultMetadataKeyAuthorization = "authorization"

	// DefaultMetadataKeyUserID carries a pre-verified user ID, set by a
	// trusted gateway that already checked the token.
	DefaultMetadataKeyUserID = "x-user-id"
)

type contextKey string

const userIDContextKey = contextKey("vauth.userID")

// Config holds the metadata key configuration for auth context.
type Config struct {
	// MetadataKeyAuthorization is the metadata key checked for a bearer
	// token. Defaults to "authorization".
	MetadataKeyAuthorization string

	// MetadataKeyUserID is the metadata key checked for a pre-verified
	// user ID. Defaults to "x-user-id".
	MetadataKeyUserID string

	// TrustUserIDMetadata when true accepts the user ID metadata key
	// without a token. Enable only behind a gateway that strips the key
	// from client traffic.
	TrustUserIDMetadata bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MetadataKeyAuthorization: DefaultMetadataKeyAuthorization,
		MetadataKeyUserID:        DefaultMetadataKeyUserID,
		TrustUserIDMetadata:      false,
	}
}

// EnsureDefaults fills in default values for any unset fields.
func (c *Config) EnsureDefaults() {
	if c.MetadataKeyAuthorization == "" {
		c.MetadataKeyAuthorization = DefaultMetadataKeyAuthorization
	}
	if c.MetadataKeyUserID == "" {
		c.MetadataKeyUserID = DefaultMetadataKeyUserID
	}
}

// UserIDFromContext returns the user ID the auth interceptor resolved
// for this request, or empty if the request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

// IsAuthenticated reports whether the interceptor resolved a user.
func IsAuthenticated(ctx context.Context) bool {
	return UserIDFromContext(ctx) != ""
}

// WithUserID returns a context carrying the given user ID, as set by the
// interceptors. Exposed for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// TokenToOutgoingContext attaches a bearer token to an outgoing gRPC
// context, for clients calling an intercepted service.
func TokenToOutgoingContext(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, DefaultMetadataKeyAuthorization, "Bearer "+token)
}

// bearerFromMetadata pulls the token out of the authorization metadata
// values, tolerating a missing "Bearer " prefix.
func bearerFromMetadata(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimPrefix(values[0], "Bearer ")
}
