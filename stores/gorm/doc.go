//go:build !wasm
// +build !wasm

// Package gorm provides GORM-based implementations of the vauth store
// interfaces.  It supports any database that GORM supports (PostgreSQL,
// MySQL, SQLite, etc.) and is the store used in production deployments.
//
// # Database Schema
//
// The package auto-migrates the following tables:
//   - users: User accounts, one row per email
//   - user_sessions: Issued bearer tokens, recorded for revocation
//   - oauth_tokens: Provider access/refresh tokens, one per (user, provider)
//
// # Usage
//
//	db, _ := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	gormstore.AutoMigrate(db)
//	userStore := gormstore.NewUserStore(db)
//	sessionStore := gormstore.NewSessionStore(db)
package gorm
