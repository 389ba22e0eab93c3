package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// VerifyToken validates a bearer token and returns the user ID it was
// issued to. vauth.TokenIssuer.Verify satisfies this.
type VerifyToken func(token string) (string, error)

// InterceptorConfig configures the auth interceptor behavior.
type InterceptorConfig struct {
	// Config holds the metadata key configuration.
	*Config

	// Verify validates bearer tokens found in request metadata. Required
	// unless TrustUserIDMetadata is set.
	Verify VerifyToken

	// RequireAuth when true rejects unauthenticated requests.
	// When false, requests proceed but UserIDFromContext returns empty.
	RequireAuth bool

	// PublicMethods is a set of method names that don't require auth.
	// Only used when RequireAuth is true.
	// Keys should be full method names like "/package.Service/Method".
	PublicMethods map[string]bool
}

// NewInterceptorConfig returns a config that verifies tokens with verify
// and requires auth for all methods except the listed public ones.
func NewInterceptorConfig(verify VerifyToken, publicMethods ...string) *InterceptorConfig {
	config := &InterceptorConfig{
		Config:        DefaultConfig(),
		Verify:        verify,
		RequireAuth:   true,
		PublicMethods: make(map[string]bool),
	}
	for _, method := range publicMethods {
		config.PublicMethods[method] = true
	}
	return config
}

// OptionalAuthConfig returns a config that resolves the user when a
// valid token is present but never rejects the request.
func OptionalAuthConfig(verify VerifyToken) *InterceptorConfig {
	return &InterceptorConfig{
		Config:      DefaultConfig(),
		Verify:      verify,
		RequireAuth: false,
	}
}

func (c *InterceptorConfig) ensureDefaults() *InterceptorConfig {
	if c == nil {
		c = &InterceptorConfig{RequireAuth: true}
	}
	if c.Config == nil {
		c.Config = DefaultConfig()
	}
	c.Config.EnsureDefaults()
	return c
}

// UnaryAuthInterceptor returns a gRPC unary interceptor that resolves
// the calling user from request metadata and injects it into the
// handler's context.
func UnaryAuthInterceptor(config *InterceptorConfig) grpc.UnaryServerInterceptor {
	config = config.ensureDefaults()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := config.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor returns the stream counterpart of
// UnaryAuthInterceptor.
func StreamAuthInterceptor(config *InterceptorConfig) grpc.StreamServerInterceptor {
	config = config.ensureDefaults()

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := config.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: ctx})
	}
}

// authenticate resolves the caller from metadata. A bad token is always
// an error; a missing one is only an error when the method requires auth.
func (c *InterceptorConfig) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	userID, err := c.resolveUser(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if userID == "" && c.RequireAuth && !c.PublicMethods[fullMethod] {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}

	if userID != "" {
		ctx = WithUserID(ctx, userID)
	}
	return ctx, nil
}

func (c *InterceptorConfig) resolveUser(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	if token := bearerFromMetadata(md.Get(c.MetadataKeyAuthorization)); token != "" && c.Verify != nil {
		return c.Verify(token)
	}

	if c.TrustUserIDMetadata {
		if values := md.Get(c.MetadataKeyUserID); len(values) > 0 {
			return values[0], nil
		}
	}

	return "", nil
}

// wrappedStream overrides the stream context with the authenticated one.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
