// Package main is the entry point for the FloodRoute API server.
//
// It loads configuration, connects the database pool and external providers
// (MET Malaysia warnings, Google routing and geocoding, SQS, Kafka), builds
// the HTTP server with the core chassis (middleware, routing, health checks),
// and listens until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"floodroute/internal/api/handlers"
	"floodroute/internal/assessment"
	"floodroute/internal/config"
	"floodroute/internal/core"
	"floodroute/internal/db"
	"floodroute/internal/events"
	"floodroute/internal/external"
	"floodroute/internal/hazard"
	"floodroute/internal/observability"
	"floodroute/internal/queue"
	"floodroute/internal/saferoute"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("floodroute API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	assessmentRepo := db.NewAssessmentRepository(pool)
	townRepo := db.NewTownRepository(pool)

	metClient := external.NewMetClient(
		&http.Client{Timeout: cfg.Met.Timeout},
		external.MetClientConfig{
			Token:   cfg.Met.APIKey.Unmask(),
			BaseURL: cfg.Met.BaseURL,
			Logger:  logger,
		},
	)
	routesClient := external.NewGoogleRoutesClient(
		&http.Client{Timeout: cfg.Routing.Timeout},
		external.RoutesClientConfig{
			APIKey:    cfg.Routing.APIKey.Unmask(),
			RoutesURL: cfg.Routing.RoutesURL,
			Logger:    logger,
		},
	)
	geocoder := external.NewGoogleGeocoder(
		&http.Client{Timeout: cfg.Routing.Timeout},
		external.GeocodeClientConfig{
			APIKey:     cfg.Routing.APIKey.Unmask(),
			GeocodeURL: cfg.Routing.GeocodeURL,
			Region:     cfg.Routing.Region,
			Logger:     logger,
		},
	)

	radiusModel := hazard.NewModel(hazard.RadiusConfig{
		LowM:      cfg.Hazard.RadiusLowM,
		ModerateM: cfg.Hazard.RadiusModerateM,
		HighM:     cfg.Hazard.RadiusHighM,
		CriticalM: cfg.Hazard.RadiusCriticalM,
	})

	metrics := observability.NewMetrics()

	// Kafka publishing is optional; without brokers assessments are still
	// scored and persisted, just not streamed.
	var publisher assessment.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewAssessmentPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("no Kafka brokers configured, assessment events disabled")
	}

	assessSvc := assessment.NewService(townRepo, metClient, assessmentRepo, publisher, metrics, logger)
	routeSvc := saferoute.NewService(
		assessmentRepo,
		routesClient,
		geocoder,
		radiusModel,
		cfg.Hazard.RecentWindow,
		metrics,
		logger,
	)

	sqsClient, err := queue.NewSQSClient(ctx, cfg.Queue)
	if err != nil {
		return fmt.Errorf("creating SQS client: %w", err)
	}
	reportProducer := queue.NewReportProducer(sqsClient, cfg.Queue, logger)

	srv, err := core.NewServer(cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	assessmentHandler := handlers.NewAssessmentHandler(assessSvc, assessmentRepo, srv.Validator, logger)
	safeRouteHandler := handlers.NewSafeRouteHandler(routeSvc, logger)
	hazardHandler := handlers.NewHazardHandler(assessmentRepo, radiusModel, cfg.Hazard.RecentWindow, logger)
	reportHandler := handlers.NewReportHandler(reportProducer, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { assessmentHandler.RegisterRoutes(r, srv.AdminAuthMiddleware) },
		safeRouteHandler.RegisterRoutes,
		hazardHandler.RegisterRoutes,
		reportHandler.RegisterRoutes,
	)

	srv.HealthProbes = append(srv.HealthProbes, dbProbe{pool: pool})

	srv.MountRoutes()

	return serveHTTP(srv, cfg, logger)
}

// serveHTTP runs the HTTP server until a signal or listen error, then shuts
// down gracefully within the configured deadline.
func serveHTTP(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// dbProbe reports the database pool's health for GET /health.
type dbProbe struct {
	pool *pgxpool.Pool
}

func (p dbProbe) Name() string { return "database" }

func (p dbProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
