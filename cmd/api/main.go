package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/dentisalud-funnel/internal/adapters/cache"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/database"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/events"
	"github.com/zatekoja/dentisalud-funnel/internal/adapters/search"
	"github.com/zatekoja/dentisalud-funnel/internal/api/handlers"
	"github.com/zatekoja/dentisalud-funnel/internal/api/middleware"
	"github.com/zatekoja/dentisalud-funnel/internal/api/routes"
	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/repositories"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/redis"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/notifications"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
	"github.com/zatekoja/dentisalud-funnel/pkg/config"
)

const (
	memoryCacheSize   = 10000
	memoryCacheMaxTTL = 24 * time.Hour
	cacheWarmInterval = 10 * time.Minute
)

func locatorSettings(cfg config.LocatorConfig) locator.Settings {
	return locator.Settings{
		Debounce:              cfg.Debounce,
		NearMeRadiusMeters:    cfg.NearMeRadiusMeters,
		UnboundedRadiusMeters: cfg.UnboundedRadiusMeters,
		ResultLimit:           cfg.ResultLimit,
		MinQueryLength:        cfg.MinQueryLength,
		DefaultCenter: locator.Coordinates{
			Latitude:  cfg.DefaultLatitude,
			Longitude: cfg.DefaultLongitude,
		},
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.App.Env, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis backs the cache and the lead bus; without it both fall back to
	// in-process implementations.
	var cacheProvider providers.CacheProvider
	var leadBus providers.LeadEventBus
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache and lead bus")
		cacheProvider = cache.NewMemoryAdapter(memoryCacheSize, memoryCacheMaxTTL)
		leadBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		leadBus = events.NewRedisEventBus(redisClient)
	}
	defer func() {
		if err := leadBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing lead bus")
		}
	}()

	var treatmentIndex repositories.TreatmentSearchRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, treatment lookups use PostgreSQL")
		} else {
			index := search.NewTreatmentIndex(tsClient)
			if err := index.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			treatmentIndex = index
		}
	}

	// Adapters
	directoryAdapter := database.NewDirectoryAdapter(pgClient)
	cachedDirectory := database.NewCachedDirectoryAdapter(directoryAdapter, cacheProvider, metrics)
	leadAdapter := database.NewLeadAdapter(pgClient)
	quoteAdapter := database.NewQuoteAdapter(pgClient)
	treatmentAdapter := database.NewTreatmentAdapter(pgClient)

	// Services
	settings := locatorSettings(cfg.Locator)
	locatorService := services.NewLocatorService(cachedDirectory, settings, metrics)
	notifiers := notifications.NewLeadNotifiers(cfg.Notifications, observability.Component("notifications"))
	if len(notifiers) == 0 {
		log.Warn().Msg("no lead notification channel configured; leads are only stored")
	}
	leadService := services.NewLeadService(leadAdapter, notifiers, leadBus, metrics)
	quoteService := services.NewQuoteService(quoteAdapter)
	treatmentService := services.NewTreatmentService(treatmentAdapter, treatmentIndex)
	importService := services.NewDirectoryImportService(directoryAdapter, cachedDirectory, metrics)

	warmingService := services.NewCacheWarmingService(cachedDirectory)
	go warmingService.StartPeriodicWarming(ctx, cacheWarmInterval)

	hub := locator.NewHub(ctx, locatorService, settings, cfg.Locator.MaxSessions, cfg.Locator.SessionTTL,
		observability.Component("locator"), locator.WithObserver(locatorService.Observer()))
	defer hub.Close()

	// Handlers
	var adminHandler *handlers.AdminHandler
	if cfg.App.IsDevelopment() {
		adminHandler = handlers.NewAdminHandler(importService, leadService, true, cfg.Import.SeedFile, services.ImportOptions{
			BatchSize: cfg.Import.BatchSize,
			Workers:   cfg.Import.Workers,
		})
		log.Info().Msg("development endpoints enabled")
	}

	router := routes.NewRouter(
		handlers.NewLocatorHandler(locatorService),
		handlers.NewSessionHandler(hub),
		handlers.NewTreatmentHandler(treatmentService),
		handlers.NewCalculatorHandler(quoteService),
		handlers.NewContactHandler(leadService, cacheProvider),
		adminHandler,
		middleware.NewCacheMiddleware(cacheProvider, metrics),
		cfg.CORS.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	// No write timeout: locator sessions and the lead stream are long-lived
	// SSE responses. Request contexts derive from ctx so they end on shutdown.
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("env", cfg.App.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
