package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"part-scout-go/internal/config"
	"part-scout-go/internal/database"
	"part-scout-go/internal/fetcher"
	"part-scout-go/internal/handlers"
	"part-scout-go/internal/ingest"
	"part-scout-go/internal/metrics"
	"part-scout-go/internal/repository"
	"part-scout-go/internal/scheduler"
	"part-scout-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Part Scout ingestion service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	repo := repository.New(db)
	coordinator := ingest.NewCoordinator(repo, m)

	var (
		mailFetcher fetcher.EmailFetcher
		sched       *scheduler.Scheduler
	)
	if cfg.IMAP.Enabled {
		mailFetcher, err = fetcher.NewIMAPFetcher(&cfg.IMAP)
		if err != nil {
			return fmt.Errorf("failed to create IMAP fetcher: %w", err)
		}
		sched = scheduler.NewScheduler(&cfg.Scheduler, mailFetcher, coordinator, cfg.IMAP.OwnerID, m)
		logrus.Info("Mailbox polling enabled")
	} else {
		logrus.Info("Mailbox polling disabled, upload-only mode")
	}

	h := handlers.NewHandlers(repo, coordinator, sched, m)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if sched != nil {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			logrus.Errorf("Failed to stop scheduler: %v", err)
		}
		sched.Wait()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if mailFetcher != nil {
		if err := mailFetcher.Close(); err != nil {
			logrus.Errorf("Failed to close fetcher: %v", err)
		}
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
