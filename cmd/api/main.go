package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glamgo/internal/auth"
	"glamgo/internal/config"
	"glamgo/internal/database"
	"glamgo/internal/handler"
	"glamgo/internal/metrics"
	"glamgo/internal/notifier"
	"glamgo/internal/repository"
	"glamgo/internal/router"
	"glamgo/internal/service"
	"glamgo/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting glamgo API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	photos := newPhotoStore(ctx, cfg.Storage, logger)
	orderNotifier := newOrderNotifier(ctx, cfg.Notifier, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	var google auth.GoogleVerifier
	if cfg.Auth.GoogleClientID != "" {
		google = auth.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientID)
	} else {
		logger.Info().Msg("Google sign-in disabled (no client ID configured)")
	}

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, m, logger)
	addressService := service.NewAddressService(addressRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, addressRepo, productRepo, orderNotifier, m, logger)
	authService := service.NewAuthService(userRepo, tokens, auth.NewPasswordHasher(0), google, photos, logger)

	// Initialize HTTP handlers and router
	handlers := router.Handlers{
		Health:  handler.NewHealthHandler(pool, logger),
		Auth:    handler.NewAuthHandler(authService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Address: handler.NewAddressHandler(addressService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}
	mux := router.New(handlers, router.Options{
		Tokens:      tokens,
		Metrics:     m,
		UploadsDir:  cfg.Storage.LocalDir,
		UploadsPath: cfg.Storage.PublicBaseURL,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newPhotoStore prefers S3 and keeps the local directory as fallback.
func newPhotoStore(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) storage.ObjectStore {
	local := storage.NewFileStore(cfg.LocalDir, cfg.PublicBaseURL, logger)
	if !cfg.S3Enabled {
		logger.Info().Str("dir", cfg.LocalDir).Msg("using local file system for profile photos (S3 disabled)")
		return local
	}

	s3Store, err := storage.NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Prefix, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 store, falling back to local file system only")
		return local
	}

	return storage.NewFallbackStore(s3Store, local, logger)
}

// newOrderNotifier uses SES when enabled and logs confirmations otherwise.
func newOrderNotifier(ctx context.Context, cfg config.NotifierConfig, logger zerolog.Logger) notifier.Notifier {
	if !cfg.SESEnabled {
		return notifier.NewLogNotifier(logger)
	}

	n, err := notifier.NewSESNotifier(ctx, cfg.Region, cfg.Sender, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise SES notifier, logging confirmations instead")
		return notifier.NewLogNotifier(logger)
	}
	return n
}
