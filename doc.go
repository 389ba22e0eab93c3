// Package vauth implements the authentication backend for email/password
// and OAuth sign-in with bearer-token sessions.
//
// Accounts are keyed by email. A user either authenticates locally with a
// bcrypt-hashed password or through an OAuth provider (Google, LinkedIn),
// never both: the account remembers which provider created it and rejects
// logins through any other.
//
// # Architecture
//
// Resolver: maps credentials or an OAuth assertion to exactly one user,
// creating the account on first OAuth sign-in.
//
// TokenIssuer: signs and verifies the HS256 bearer tokens handed to
// clients after a successful login.
//
// Service: the HTTP surface. It wires the resolver, issuer and stores
// into routes under /auth and optionally runs the server-side OAuth
// redirect flow for registered providers.
//
// # Basic Usage
//
// Set up a store and the service:
//
//	import (
//	    "github.com/vidlink/vauth"
//	    "github.com/vidlink/vauth/stores"
//	)
//
//	users := stores.NewFSUserStore("/path/to/storage")
//	issuer := &vauth.TokenIssuer{SecretKey: secret}
//	svc := vauth.NewService(users, issuer)
//
//	mux := http.NewServeMux()
//	mux.Handle("/auth/", svc.Handler())
//
// The JSON API then exposes:
//
//	POST /auth/signup          email/password registration
//	POST /auth/login           email/password login
//	POST /auth/oauth/callback  login with a client-resolved OAuth profile
//	GET  /auth/verify          validate a bearer token
//	POST /auth/logout          revoke the token's session record
//
// For the server-side redirect flow, register providers:
//
//	svc.AddProvider(oauth2.NewGoogleOAuth2(clientID, clientSecret, callbackURL))
//
// which adds GET /auth/google/ and GET /auth/google/callback.
//
// Stores are interfaces; see stores/gorm for the Postgres implementation
// and stores for the filesystem one used in tests and small deployments.
package vauth
