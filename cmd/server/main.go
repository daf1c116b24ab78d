package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	_ "github.com/lib/pq"

	httpapi "joinme-backend/internal/api/http"
	"joinme-backend/internal/alert"
	"joinme-backend/internal/config"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
	fsrepo "joinme-backend/internal/repository/firestore"
	"joinme-backend/internal/repository/memory"
	"joinme-backend/internal/repository/postgres"
	"joinme-backend/internal/security"
	"joinme-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting JoinMe Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Store configuration", "type", cfg.Store.Type)

	ctx := context.Background()

	// Initialize Repositories
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "type", cfg.Store.Type, "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer cleanup()

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)
	authenticator, err := newAuthenticator(ctx, cfg, tokenManager)
	if err != nil {
		logger.Error("Failed to initialize authenticator", "provider", cfg.Auth.Provider, "error", err)
		log.Fatalf("Failed to initialize authenticator: %v", err)
	}

	// Initialize Services
	noteSvc := service.NewNotificationService(store.Notifications, alert.NewLogAlerter())
	tripSvc := service.NewTripService(store.Trips, store.Users, noteSvc)
	authSvc := service.NewAuthService(store.Users, tokenManager)

	// Initialize Router
	router := httpapi.NewRouter(authSvc, tripSvc, noteSvc, authenticator)

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

// openStore builds the repository set for the configured backend and
// returns a cleanup function for the underlying connection.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	switch cfg.Store.Type {
	case "memory":
		logger.Info("Using in-memory store")
		return memory.NewStore(), func() {}, nil

	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("Database connection established")
		interval := time.Duration(cfg.Store.WatchPollSeconds) * time.Second
		return postgres.NewStore(db, interval), func() { db.Close() }, nil

	case "firestore":
		logger.Info("Connecting to Firestore...", "project_id", cfg.Firestore.ProjectID)
		client, err := fsrepo.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return fsrepo.NewStore(client), func() { client.Close() }, nil

	default:
		// Validate() guarantees a known type; this is unreachable.
		return nil, nil, nil
	}
}

// newAuthenticator picks the identity provider: locally issued JWTs, or
// Firebase ID tokens when the mobile clients sign in through Firebase.
func newAuthenticator(ctx context.Context, cfg *config.Config, tokens security.TokenManager) (security.Authenticator, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		conf := &firebase.Config{ProjectID: cfg.Firestore.ProjectID}
		var opts []option.ClientOption
		if cfg.Firestore.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
		}
		app, err := firebase.NewApp(ctx, conf, opts...)
		if err != nil {
			return nil, err
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, err
		}
		return security.NewFirebaseAuthenticator(authClient), nil
	default:
		return security.NewTokenAuthenticator(tokens), nil
	}
}
