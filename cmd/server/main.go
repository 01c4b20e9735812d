package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/techvault/identity-service/internal/config"
	"github.com/techvault/identity-service/internal/controller"
	"github.com/techvault/identity-service/internal/federation"
	"github.com/techvault/identity-service/internal/repository"
	"github.com/techvault/identity-service/internal/service"
	"github.com/techvault/identity-service/internal/token"
	"github.com/techvault/identity-service/internal/utils"
	"github.com/techvault/identity-service/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	zap.L().Info("starting identity service", zap.String("environment", cfg.Environment))

	// Initialize database
	db, err := utils.InitDB(cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := utils.CloseDB(db); err != nil {
			zap.L().Error("error closing database", zap.Error(err))
		}
	}()

	// Initialize repository
	accountRepo := repository.NewAccountRepository(db)

	// Initialize email provider
	var emailProvider worker.EmailProvider
	if cfg.Environment == "production" {
		emailProvider = worker.NewSMTPEmailProvider(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.EmailFrom,
		)
	} else {
		emailProvider = worker.NewMockEmailProvider()
	}

	// Initialize email worker pool and mailer
	emailPool := worker.NewEmailWorkerPool(
		cfg.EmailWorkerPoolSize,
		cfg.EmailTaskQueueSize,
		emailProvider,
	)
	defer emailPool.Stop()
	mailer := worker.NewMailer(emailPool)

	// Initialize hasher and token issuer
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenTTL,
		ResetSecret:   cfg.ResetTokenSecret,
		ResetTTL:      cfg.ResetTokenTTL,
	})
	if err != nil {
		zap.L().Fatal("failed to initialize token issuer", zap.Error(err))
	}

	// Initialize federated identity verifier
	var verifier federation.IVerifier
	if cfg.GoogleClientID != "" {
		verifier = federation.NewGoogleVerifier(cfg.GoogleClientID)
	}

	// Initialize identity service
	identityService := service.NewIdentityService(
		accountRepo,
		hasher,
		issuer,
		mailer,
		verifier,
		service.IdentityServiceConfig{
			OTPExpiry:    cfg.OTPExpiry,
			ResetURLBase: cfg.ResetURLBase,
		},
	)

	// Initialize cleanup worker
	cleanupWorker := worker.NewCleanupWorker(accountRepo, cfg.CleanupInterval)
	cleanupWorker.Start()
	defer cleanupWorker.Stop()

	// Initialize HTTP server
	handler := controller.NewHandler(identityService, utils.NewValidator(), issuer)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.HTTPHost, cfg.HTTPPort),
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zap.L().Info("starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("http server error", zap.Error(err))
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	zap.L().Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("http server shutdown error", zap.Error(err))
	}
	zap.L().Info("http server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
