package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearth/internal/config"
	"hearth/internal/database"
	"hearth/internal/email"
	"hearth/internal/logging"
	"hearth/internal/push"
	"hearth/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail)
	if !emailClient.Configured() {
		logger.Warn("postmark not configured, verification codes will be logged instead of emailed")
	}

	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	if !pushSvc.Enabled() {
		logger.Info("web push disabled, no VAPID keys configured")
	}

	srv := server.New(db, emailClient, pushSvc, logger)

	// Background cleanup of expired sessions, stale OTPs, and rate
	// limiter windows.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go runCleanup(cleanupCtx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("hearth listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func runCleanup(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("cleanup sessions", "error", err)
			}
			if _, err := srv.PendingStore().DeleteExpired(); err != nil {
				logger.Error("cleanup pending verifications", "error", err)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}
