package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/reservenow/backend/internal/adapters/cache"
	"github.com/reservenow/backend/internal/adapters/catalog"
	"github.com/reservenow/backend/internal/adapters/database"
	"github.com/reservenow/backend/internal/adapters/events"
	"github.com/reservenow/backend/internal/adapters/sinks"
	"github.com/reservenow/backend/internal/adapters/storage"
	"github.com/reservenow/backend/internal/api/handlers"
	"github.com/reservenow/backend/internal/api/middleware"
	"github.com/reservenow/backend/internal/api/routes"
	"github.com/reservenow/backend/internal/application/services"
	"github.com/reservenow/backend/internal/domain/providers"
	"github.com/reservenow/backend/internal/domain/repositories"
	"github.com/reservenow/backend/internal/infrastructure/clients/postgres"
	"github.com/reservenow/backend/internal/infrastructure/clients/rabbitmq"
	"github.com/reservenow/backend/internal/infrastructure/clients/redis"
	"github.com/reservenow/backend/internal/infrastructure/notifications"
	"github.com/reservenow/backend/internal/infrastructure/observability"
	"github.com/reservenow/backend/pkg/config"
	"github.com/reservenow/backend/pkg/secrets"
	"github.com/reservenow/backend/pkg/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Secrets from Vault land in the environment before config is read
	vaultResult, vaultErr := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv(""))

	cfg, err := config.Load()
	if err != nil {
		observability.InitLogger("reservenow-api", "development")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	if vaultErr != nil {
		log.Fatal().Err(vaultErr).Str("path", vaultResult.Path).Msg("failed to load secrets from Vault")
	}
	if vaultResult.Enabled {
		log.Info().Str("path", vaultResult.Path).Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("secrets loaded from Vault")
	}

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Catalog
	var source repositories.CatalogSource
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		source = database.NewRestaurantAdapter(pgClient, metrics)
	default:
		source = catalog.NewJSONSource(cfg.Catalog.Path)
	}

	catalogService, err := services.NewCatalogService(ctx, source)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("failed to load restaurant catalog")
	}
	log.Info().Int("restaurants", len(catalogService.All())).Str("source", cfg.Catalog.Source).Msg("catalog loaded")

	// Cache
	var cacheProvider providers.CacheProvider
	var rateCounter providers.RateCounter
	var redisClient *redis.Client
	var sinkList []providers.SubmissionSink
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Redis client")
		}
		defer redisClient.Close()
		redisAdapter := cache.NewRedisAdapter(redisClient)
		cacheProvider = redisAdapter
		rateCounter = redisAdapter
		if cfg.Redis.EventsChannel != "" {
			sinkList = append(sinkList, sinks.NewQueueSink(events.NewRedisPublisher(redisClient.Client()), cfg.Redis.EventsChannel))
		}
	} else {
		log.Info().Msg("Redis disabled, response cache off and rate limits kept in process")
	}

	// Favorites
	var slot repositories.FavoritesStorage
	switch cfg.Favorites.Backend {
	case config.FavoritesBackendRedis:
		slot = storage.NewRedisSlot(redisClient.Client(), "favorites:"+cfg.Favorites.Slot)
	case config.FavoritesBackendMemory:
		slot = storage.NewMemorySlot()
	default:
		fileSlot, err := storage.NewFileSlot(cfg.Favorites.Dir, cfg.Favorites.Slot)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open favorites slot")
		}
		slot = fileSlot
	}
	favoritesService := services.NewFavoritesService(ctx, slot)

	// Reservation log sinks
	if cfg.Reservation.WebhookURL != "" {
		sinkList = append(sinkList, sinks.NewWebhookSink(cfg.Reservation.WebhookURL, cfg.Reservation.WebhookTimeout))
	}
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		sinkList = append(sinkList, sinks.NewQueueSink(mqClient, cfg.RabbitMQ.Queue))
	}

	phoneRules := utils.MalaysianMobile
	phoneRules.CountryCode = cfg.Reservation.CountryCode
	phoneRules.TrunkPrefix = cfg.Reservation.TrunkPrefix
	location := cfg.Reservation.Location()

	opts := []services.ReservationServiceOption{services.WithMetrics(metrics)}
	if sink := sinks.Combine(sinkList...); sink != nil {
		opts = append(opts, services.WithSink(sink, cfg.Reservation.WebhookTimeout))
	} else {
		log.Info().Msg("no reservation log sink configured")
	}

	reservationService := services.NewReservationService(
		catalogService,
		services.NewReservationValidator(phoneRules, location, cfg.Reservation.MaxAdvanceDays),
		services.NewMessageBuilder(cfg.Reservation.BrandFooter),
		notifications.NewWhatsAppLinkBuilder(cfg.Reservation.DeepLinkBase, phoneRules),
		opts...,
	)

	// Handlers
	restaurantHandler := handlers.NewRestaurantHandler(catalogService, favoritesService, location)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesService, catalogService)
	reservationHandler := handlers.NewReservationHandler(reservationService, rateCounter, location, metrics)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	router := routes.NewRouter(
		restaurantHandler,
		favoritesHandler,
		reservationHandler,
		cacheMiddleware,
		metrics,
		cfg.Server.AllowedOrigins,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
