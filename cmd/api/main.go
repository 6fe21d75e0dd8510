package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloomkart/internal/config"
	"bloomkart/internal/database"
	"bloomkart/internal/events"
	"bloomkart/internal/geocode"
	"bloomkart/internal/handler"
	"bloomkart/internal/match"
	"bloomkart/internal/payment"
	"bloomkart/internal/pricing"
	"bloomkart/internal/promo"
	"bloomkart/internal/redisx"
	"bloomkart/internal/repository"
	"bloomkart/internal/router"
	"bloomkart/internal/service"
	"bloomkart/internal/settlement"
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
	logger.Info().Msg("starting bloomkart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	floristRepo := repository.NewFloristRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize promo code loader with S3 and local fallback
	fileLoader := promo.NewFileLoader(logger)
	var promoLoader promo.Loader

	if cfg.S3.Enabled {
		// Create S3 loader
		s3Loader, err := promo.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			promoLoader = fileLoader
		} else {
			promoLoader = s3Loader
		}
	} else {
		// S3 disabled, use local file system only
		promoLoader = fileLoader
		logger.Info().Msg("using local file system for promo code files (S3 disabled)")
	}

	// Initialize promo code catalog
	catalogConfig := promo.DefaultCatalogConfig()
	catalog, err := promo.NewCatalog(ctx, catalogConfig, promoLoader, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo catalog: %w", err)
	}
	defer catalog.Close()

	// Initialize optional redis settlement plumbing
	var notifier settlement.Notifier
	var deduper settlement.Deduper
	if cfg.Redis.Enabled {
		redisClient, err := redisx.New(ctx, cfg.Redis.Addr, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, settlement watcher degrades to polling")
		} else {
			defer redisClient.Close()
			notifier = redisx.NewSettlementNotifier(redisClient, logger)
			deduper = redisx.NewSettlementDeduper(redisClient)
		}
	}

	// Initialize optional kafka event producer
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, "bloomkart-api", 256, logger)
		defer producer.Close()
		publisher = producer
	}

	// Initialize optional geocoder
	var geocoder geocode.Geocoder = geocode.Disabled{}
	if cfg.Geocode.Enabled {
		geocoder, err = geocode.NewHTTPGeocoder(geocode.Config{
			BaseURL: cfg.Geocode.BaseURL,
			APIKey:  cfg.Geocode.APIKey,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize geocoder: %w", err)
		}
	}

	// Initialize the checkout pipeline
	matcher := match.NewMatcher(floristRepo, match.Config{
		NearestAnyFallback: cfg.Matching.NearestAnyFallback,
	}, logger)

	engine, err := pricing.NewEngine(catalog, pricing.DefaultFeePolicy(), cfg.Payment.Currency, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pricing engine: %w", err)
	}

	providerClient, err := payment.NewClient(payment.ClientConfig{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   cfg.Payment.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize payment client: %w", err)
	}

	broker, err := payment.NewBroker(providerClient, payment.BrokerConfig{
		MethodSets: cfg.Payment.MethodSets,
		Currency:   cfg.Payment.Currency,
		SuccessURL: cfg.Payment.SuccessURL,
		CancelURL:  cfg.Payment.CancelURL,
		Locale:     cfg.Payment.Locale,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize checkout broker: %w", err)
	}

	watcher := settlement.NewWatcher(orderRepo, notifier, deduper, settlement.Config{
		PollInterval: cfg.Settlement.PollInterval,
		Timeout:      cfg.Settlement.Timeout,
	}, func(sessionID, orderID string) {
		publisher.Publish(events.EventSettlementConfirmed, sessionID, events.SettlementConfirmedPayload{
			SessionID: sessionID,
			OrderID:   orderID,
		})
	}, logger)

	// Initialize services
	floristService := service.NewFloristService(floristRepo, logger)
	checkoutService := service.NewCheckoutService(matcher, engine, broker, watcher, geocoder, publisher, logger)

	// Initialize HTTP handlers
	floristHandler := handler.NewFloristHandler(floristService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)

	// Initialize router
	mux := router.New(floristHandler, checkoutHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
