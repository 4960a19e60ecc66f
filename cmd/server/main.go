package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/iplocation/internal/config"
	"github.com/evyataryagoni/iplocation/internal/dictionary"
	"github.com/evyataryagoni/iplocation/internal/handler"
	"github.com/evyataryagoni/iplocation/internal/limiter"
	"github.com/evyataryagoni/iplocation/internal/logger"
	"github.com/evyataryagoni/iplocation/internal/metrics"
	"github.com/evyataryagoni/iplocation/internal/router"
	"github.com/evyataryagoni/iplocation/internal/service"
	"github.com/evyataryagoni/iplocation/internal/store"
)

// @title           IP Location API
// @version         1.0
// @description     IP to country, province and city lookups over a compiled range database

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	appConfig, err := config.Load()
	if err == nil {
		err = appConfig.Validate()
	}
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := setupLogger(appConfig)
	metricsCollector := metrics.New()

	dataStore, health := setupDataStore(appConfig, metricsCollector, appLogger)
	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	ipService := service.NewIPService(dataStore, metricsCollector, appLogger)
	defer ipService.Close()

	appRouter := router.SetupRouter(router.Options{
		Handler: handler.NewIPHandler(ipService),
		Limiter: rateLimiter,
		Metrics: metricsCollector,
		Logger:  appLogger,
		Health:  health,
	})

	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting IP location server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Dur("rate_limit_window", appConfig.RateLimitWindow).
		Str("datastore_type", appConfig.DatastoreType).
		Str("ipdb_path", appConfig.IPDBPath).
		Str("dict_path", appConfig.DictPath).
		Str("cache_type", appConfig.CacheType).
		Msg("Configuration loaded")

	return appLogger
}

// setupDataStore opens the configured backend, wrapped in the Redis cache
// when enabled, and returns a health check for it
func setupDataStore(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) (store.Store, router.HealthFunc) {
	var dataStore store.Store
	var health router.HealthFunc

	switch appConfig.DatastoreType {
	case "blob":
		blobStore, err := store.NewBlobStore(appConfig.IPDBPath, appConfig.DictPath, m)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize blob store")
		}
		stats := blobStore.Stats()
		if err := blobStore.Err(); err != nil {
			log.Error().Err(err).Msg("Database failed validation, affected zones answer no queries")
		}
		log.Info().
			Int("v4_records", stats.V4Records).
			Int("v6_records", stats.V6Records).
			Msg("Blob store initialized")
		dataStore, health = blobStore, blobStore.Err

	case "mysql":
		dicts, err := dictionary.LoadSet(appConfig.DictPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load dictionaries")
		}
		mysqlStore, err := store.NewMySQLStore(appConfig.MySQLDSN, dicts, m)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MySQL store")
		}
		log.Info().Msg("MySQL store initialized")
		dataStore = mysqlStore

	default:
		log.Fatal().Str("type", appConfig.DatastoreType).Msg("Unknown datastore type")
	}

	if appConfig.CacheType == "redis" {
		cached, err := store.NewCachedStore(dataStore, appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB, appConfig.CacheTTL, m)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis cache")
		}
		// entries may come from a previous database
		removed, err := cached.Purge()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to purge lookup cache")
		}
		log.Info().Int("purged", removed).Dur("ttl", appConfig.CacheTTL).Msg("Redis cache initialized")
		dataStore = cached
	}

	return dataStore, health
}

// setupRateLimiter initializes the rate limiter
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:          appConfig.RateLimitType,
		Requests:      appConfig.RateLimit,
		Window:        appConfig.RateLimitWindow,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		Logger:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("requests", appConfig.RateLimit).
		Dur("window", appConfig.RateLimitWindow).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// startServer serves until SIGINT or SIGTERM, then drains open requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/lookup?ip=<ip>").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Msg("Server is running")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
