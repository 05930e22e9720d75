package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/catalog"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/events"
	"bistro/internal/handler"
	"bistro/internal/idempotency"
	"bistro/internal/pricing"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"

	"github.com/redis/go-redis/v9"
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
	logger.Info().Msg("starting bistro API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reservationRepo := repository.NewReservationRepository(pool, logger)

	if err := importCatalog(ctx, cfg, menuRepo, logger); err != nil {
		return fmt.Errorf("failed to import menu catalog: %w", err)
	}

	// Checkout idempotency keys
	var keys idempotency.Store = idempotency.NopStore{}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable, checkouts proceed without idempotency until it is")
		}
		keys = idempotency.NewRedisStore(client, cfg.Redis.IdempotencyTTL, logger)
	} else {
		logger.Info().Msg("redis disabled, checkout idempotency keys are ignored")
	}

	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	engine := pricing.NewEngine(pricing.Rules{
		FreeDeliveryThreshold: cfg.Pricing.FreeDeliveryThreshold,
		FlatDeliveryFee:       cfg.Pricing.FlatDeliveryFee,
		TaxRate:               cfg.Pricing.TaxRate,
	})
	reservationRules := service.ReservationRules{
		MinPartySize:       cfg.Reservation.MinPartySize,
		MaxPartySize:       cfg.Reservation.MaxPartySize,
		Horizon:            time.Duration(cfg.Reservation.HorizonDays) * 24 * time.Hour,
		CancellationWindow: cfg.Reservation.CancellationWindow,
	}

	// Initialize services
	menuService := service.NewMenuService(menuRepo, logger)
	orderService := service.NewOrderService(orderRepo, menuRepo, engine, keys, publisher, logger)
	reservationService := service.NewReservationService(reservationRepo, reservationRules, publisher, logger)

	// Initialize HTTP handlers and router
	mux := router.New(router.Handlers{
		Health:       handler.NewHealthHandler(pool, logger),
		Menu:         handler.NewMenuHandler(menuService, logger),
		Cart:         handler.NewCartHandler(orderService, logger),
		Orders:       handler.NewOrderHandler(orderService, service.NewQRGenerator(cfg.Server.PublicBaseURL), logger),
		Reservations: handler.NewReservationHandler(reservationService, logger),
	}, cfg.Auth.APIKey, cfg.Server.CORSAllowedOrigins, logger)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
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

// importCatalog upserts the configured catalog files, reading from S3 first
// when it is enabled.
func importCatalog(ctx context.Context, cfg *config.Config, store catalog.Store, logger zerolog.Logger) error {
	if len(cfg.Catalog.Files) == 0 {
		logger.Info().Msg("no catalog files configured, serving the menu already in the database")
		return nil
	}

	fileLoader := catalog.NewFileLoader(logger)

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		var err error
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for catalog files (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)

	count, err := catalog.NewImporter(loader, store, logger).Import(ctx, cfg.Catalog.Files)
	if err != nil {
		return err
	}

	logger.Info().Int("items", count).Int("files", len(cfg.Catalog.Files)).Msg("menu catalog imported")
	return nil
}

func newPublisher(cfg config.EventsConfig, logger zerolog.Logger) (events.Publisher, error) {
	switch cfg.Backend {
	case "kafka":
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing status events to kafka")
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil
	case "rabbitmq":
		logger.Info().Str("exchange", cfg.RabbitMQExchange).Msg("publishing status events to rabbitmq")
		return events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
	default:
		return events.NopPublisher{}, nil
	}
}
