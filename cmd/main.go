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

	"adt-service/internal/config"
	"adt-service/internal/delivery/router"
	"adt-service/internal/infrastructure/cache"
	"adt-service/internal/infrastructure/metrics"
	"adt-service/internal/repository"
	"adt-service/internal/service"
	"adt-service/pkg/database"
	"adt-service/pkg/logger"
	"adt-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	cfg := config.MustLoadConfig()

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	loggers.InfoLogger.Info("Logger initialized", "level", cfg.Logger.Level)

	db, cleanupDB := setupDatabase(cfg, loggers)
	defer cleanupDB()

	adtCache, cleanupCache := setupCache(cfg, loggers)
	defer cleanupCache()

	tracerProvider := setupTracer(cfg, loggers)
	defer shutdownTracer(tracerProvider, loggers)

	handlerMetrics := metrics.NewHandlerMetrics(prometheus.DefaultRegisterer)
	serviceMetrics := metrics.NewServiceMetrics(prometheus.DefaultRegisterer)
	repositoryMetrics := metrics.NewRepositoryMetrics(prometheus.DefaultRegisterer)
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	adtRepo := repository.NewSQLAdvertisementRepository(db, adtCache, cfg.Cache.TTL, repositoryMetrics)
	adtService := service.NewAdvertisementService(adtRepo, serviceMetrics)
	loggers.InfoLogger.Info("Service and repository layers initialized")

	r := chi.NewRouter()
	router.SetupMiddleware(r, loggers)
	router.SetupAdvertisementRoutes(r, adtService, loggers, handlerMetrics)
	router.SetupSystemRoutes(r, adtRepo, loggers, handlerMetrics)
	loggers.InfoLogger.Info("Router and routes initialized")

	server := startServer(cfg, r, loggers)

	waitForShutdown(server, loggers)
}

func setupDatabase(cfg *config.Config, loggers *logger.Loggers) (*database.DB, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		Path:            cfg.Database.Path,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, loggers.InfoLogger)
	if err != nil {
		loggers.ErrorLogger.Error("Failed to connect to database", utils.Err(err), "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Connected to database", "driver", cfg.Database.Driver)

	if err := repository.EnsureSchema(ctx, db); err != nil {
		loggers.ErrorLogger.Error("Failed to prepare database schema", utils.Err(err))
		_ = db.Close()
		os.Exit(1)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			loggers.ErrorLogger.Error("Failed to close database connection", utils.Err(err))
		}
	}

	return db, cleanup
}

func setupCache(cfg *config.Config, loggers *logger.Loggers) (cache.Cache, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, closeCache, err := cache.New(ctx, cache.Config{
		Driver:        cfg.Cache.Driver,
		Size:          cfg.Cache.Size,
		TTL:           cfg.Cache.TTL,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	if err != nil {
		loggers.ErrorLogger.Error("Failed to set up cache", utils.Err(err), "driver", cfg.Cache.Driver)
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Cache initialized", "driver", cfg.Cache.Driver)

	cleanup := func() {
		if err := closeCache(); err != nil {
			loggers.ErrorLogger.Error("Failed to close cache", utils.Err(err))
		}
	}

	return c, cleanup
}

func setupTracer(cfg *config.Config, loggers *logger.Loggers) *sdktrace.TracerProvider {
	tracerProvider, err := metrics.InitTracer(context.Background(), metrics.TracingOptions{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Version:     cfg.Tracing.Version,
	})
	if err != nil {
		loggers.ErrorLogger.Error("Failed to initialize tracer", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("OpenTelemetry Tracer initialized", "export", cfg.Tracing.Enabled)
	return tracerProvider
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Failed to shut down tracer provider", utils.Err(err))
	}
}

func startServer(cfg *config.Config, handler http.Handler, loggers *logger.Loggers) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}

	go func() {
		loggers.InfoLogger.Info("Starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggers.ErrorLogger.Error("Failed to start server", utils.Err(err))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, loggers *logger.Loggers) {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	<-shutdownCh
	loggers.InfoLogger.Info("Shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Server forced to shutdown", utils.Err(err))
	} else {
		loggers.InfoLogger.Info("Server shutdown gracefully")
	}
}
