package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hferris/earnhub/internal/backup"
	"github.com/hferris/earnhub/internal/database"
	"github.com/hferris/earnhub/internal/logging"
	"github.com/hferris/earnhub/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("EARNHUB_LOG_LEVEL"), os.Getenv("EARNHUB_LOG_FORMAT"))

	port := os.Getenv("EARNHUB_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("EARNHUB_DB_PATH")
	if dbPath == "" {
		dbPath = "earnhub.db"
	}

	adminSecret := os.Getenv("EARNHUB_ADMIN_SECRET")
	if adminSecret == "" {
		logger.Error("EARNHUB_ADMIN_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		AdminSecret:     adminSecret,
		PostmarkToken:   os.Getenv("EARNHUB_POSTMARK_TOKEN"),
		FromEmail:       os.Getenv("EARNHUB_FROM_EMAIL"),
		VAPIDPublicKey:  os.Getenv("EARNHUB_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("EARNHUB_VAPID_PRIVATE_KEY"),
		Backup: backup.Config{
			DBPath: dbPath,
			S3: backup.S3Config{
				Endpoint:  os.Getenv("EARNHUB_S3_ENDPOINT"),
				Bucket:    os.Getenv("EARNHUB_S3_BUCKET"),
				Region:    os.Getenv("EARNHUB_S3_REGION"),
				AccessKey: os.Getenv("EARNHUB_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("EARNHUB_S3_SECRET_KEY"),
			},
		},
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("earnhub starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
