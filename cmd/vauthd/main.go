// Command vauthd runs the vauth HTTP server: signup, login, OAuth
// callbacks and token verification, backed by Postgres (or the
// filesystem when no database is configured).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	gormdriver "gorm.io/driver/postgres"
	gormlib "gorm.io/gorm"

	vauth "github.com/vidlink/vauth"
	authp "github.com/vidlink/vauth/oauth2"
	"github.com/vidlink/vauth/stores"
	gormstore "github.com/vidlink/vauth/stores/gorm"
)

// Config is read from the environment (and .env in development).
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	Env         string `envconfig:"ENV" default:"development"`
	BaseURL     string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	StoragePath string `envconfig:"STORAGE_PATH" default:"./data"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	GoogleClientID       string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `envconfig:"GOOGLE_CLIENT_SECRET"`
	LinkedInClientID     string `envconfig:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `envconfig:"LINKEDIN_CLIENT_SECRET"`
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cfg.Env == "development" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	users, sessions, oauthTokens, err := buildStores(&cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := vauth.NewService(users, &vauth.TokenIssuer{SecretKey: cfg.JWTSecret})
	svc.Sessions = sessions
	svc.OAuthTokens = oauthTokens
	svc.Metrics = vauth.NewMetrics(registry)
	svc.Session = scs.New()
	svc.Session.Lifetime = vauth.DefaultTokenTTL
	svc.Session.Cookie.Secure = cfg.Env != "development"

	registerProviders(svc, &cfg)

	mux := http.NewServeMux()
	mux.Handle("/auth/", svc.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("listening", "addr", server.Addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildStores returns Postgres-backed stores when DATABASE_URL is set,
// filesystem stores otherwise.
func buildStores(cfg *Config) (vauth.UserStore, vauth.SessionStore, vauth.OAuthTokenStore, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using filesystem stores", "path", cfg.StoragePath)
		return stores.NewFSUserStore(cfg.StoragePath),
			stores.NewFSSessionStore(cfg.StoragePath),
			stores.NewFSOAuthTokenStore(cfg.StoragePath),
			nil
	}

	db, err := gormlib.Open(gormdriver.Open(cfg.DatabaseURL), &gormlib.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	return gormstore.NewUserStore(db),
		gormstore.NewSessionStore(db),
		gormstore.NewOAuthTokenStore(db),
		nil
}

func registerProviders(svc *vauth.Service, cfg *Config) {
	base := strings.TrimRight(cfg.BaseURL, "/")

	if cfg.GoogleClientID != "" {
		svc.AddProvider(authp.NewGoogleOAuth2(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			base+"/auth/google/callback",
		))
		slog.Info("oauth provider enabled", "provider", "google")
	}

	if cfg.LinkedInClientID != "" {
		svc.AddProvider(authp.NewLinkedInOAuth2(
			cfg.LinkedInClientID,
			cfg.LinkedInClientSecret,
			base+"/auth/linkedin/callback",
		))
		slog.Info("oauth provider enabled", "provider", "linkedin")
	}
}
