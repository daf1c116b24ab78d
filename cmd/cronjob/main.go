package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"joinme-backend/internal/alert"
	"joinme-backend/internal/config"
	"joinme-backend/internal/jobs"
	"joinme-backend/internal/logger"
	"joinme-backend/internal/repository"
	fsrepo "joinme-backend/internal/repository/firestore"
	"joinme-backend/internal/repository/memory"
	"joinme-backend/internal/repository/postgres"
	"joinme-backend/internal/scheduler"
	"joinme-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-trip-reminders', 'all-daily')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting JoinMe Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Repositories
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "type", cfg.Store.Type, "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer cleanup()

	// Initialize Services
	noteService := service.NewNotificationService(store.Notifications, alert.NewLogAlerter())

	var emailService service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailService = service.NewEmailService(
			cfg.SendGrid.APIKey,
			cfg.SendGrid.FromEmail,
			cfg.SendGrid.FromName,
		)
	} else {
		logger.Warn("SendGrid API key not configured, reminder emails disabled")
	}

	jobServices := &jobs.Services{
		Email:        emailService,
		Notification: noteService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
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
		return nil, nil, nil
	}
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-trip-reminders":
		jobRunner.SendTripStartReminders()
	case "all-daily":
		jobRunner.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-trip-reminders\n")
		fmt.Printf("  - all-daily\n")
		os.Exit(1)
	}
}
