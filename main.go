package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kycdesk/config"
	"kycdesk/database"
	"kycdesk/handlers"
	"kycdesk/logger"
	"kycdesk/middleware"
	"kycdesk/routes"
	"kycdesk/services"
	"kycdesk/session"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	logger.Init(cfg.Environment)
	defer logger.Sync()
	ctx := context.Background()

	warnings, err := config.Validate(cfg)
	for _, w := range warnings {
		logger.Warn(ctx, "insecure configuration", zap.String("warning", w))
	}
	if err != nil {
		logger.Error(ctx, "invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	db, err := database.Initialize(cfg.DatabaseURL, database.LogLevelFor(cfg.Environment))
	if err != nil {
		logger.Error(ctx, "failed to initialize database", zap.Error(err))
		os.Exit(1)
	}

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "failed to initialize session store", zap.Error(err))
		os.Exit(1)
	}

	signer, err := session.NewTokenSigner(cfg.SessionSecret)
	if err != nil {
		logger.Error(ctx, "failed to initialize session signer", zap.Error(err))
		os.Exit(1)
	}
	sessions := session.NewManager(store, signer, cfg.SessionTTL)

	auth := services.NewAuthService(db, sessions, services.AdminCredentials{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	h := handlers.NewHandlers(auth, services.NewAccountService(db), services.NewTransactionService(db), cfg)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(h, auth, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("session_backend", cfg.SessionBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", zap.Error(err))
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewMemoryStore(), nil
	}

	client, err := session.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	store, err := session.NewRedisStore(client, cfg.SessionEncryptionKey)
	if err != nil {
		return nil, err
	}
	return store, nil
}
