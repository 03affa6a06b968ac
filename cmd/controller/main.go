// Package main is the entry point for the layerplane controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"layerplane/internal/auth"
	"layerplane/internal/config"
	"layerplane/internal/controller"
	"layerplane/internal/controller/handlers"
	"layerplane/internal/jobstate"
	"layerplane/internal/logger"
	"layerplane/internal/metadata"
	"layerplane/internal/observability"
	"layerplane/internal/publishstatus"
	"layerplane/internal/resource"
	"layerplane/internal/store/postgres"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Set at build time with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: layerplane.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	slog.SetDefault(appLogger)

	if err := run(cfg, *migrateFlag, appLogger); err != nil {
		appLogger.Error("controller stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrateFirst bool, appLogger *slog.Logger) error {
	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer db.Close()

	if migrateFirst {
		appLogger.Info("running database migrations")
		version, err := postgres.Migrate(db.DB())
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		appLogger.Info("migrations completed", "version", version)
	}

	shutdownTracer, err := observability.InitTracer(ctx, observability.TraceConfig{
		ServiceName:    "layerplane-controller",
		ServiceVersion: buildVersion,
		CollectorAddr:  cfg.OTELEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}

	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		_ = shutdownTracer(ctx)
		return fmt.Errorf("failed to init metrics: %w", err)
	}

	// Observed on scrape only.
	meter := otel.Meter("layerplane-controller")
	_, err = meter.Int64ObservableGauge("layerplane.jobs.inflight",
		metric.WithDescription("Jobs that have not finished"),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := db.CountInFlightJobs(ctx)
			if err != nil {
				appLogger.Warn("failed to count in-flight jobs", "error", err)
				return nil
			}
			obs.Observe(count)
			return nil
		}),
	)
	if err != nil {
		appLogger.Warn("failed to register in-flight jobs metric", "error", err)
	}

	resolver := resource.NewResolver(db, db)
	stateMachine := resource.NewStateMachine(db, metadata.NewFileExporter(cfg.MetadataRepo))
	pusher := metadata.NewCommandPusher(cfg.MetadataRepo, cfg.PushCommand, cfg.PushTimeout)

	services := handlers.Services{
		Store:    db,
		Jobs:     jobstate.New(db, appLogger),
		Metadata: metadata.NewService(resolver, stateMachine, db, pusher, appLogger),
		Status:   publishstatus.NewReporter(db),
		Logger:   appLogger,
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, services, controller.Options{
		Credentials:    auth.NewCredentials(cfg.APIUser, cfg.APIPassword),
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		MetricsHandler: metricsHandler,
		PushTimeout:    cfg.PushTimeout,
	})

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("layerplane controller starting", "addr", addr)
		serverErr <- srv.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErr:
	case <-quit:
		appLogger.Info("shutting down controller")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The server stops before the providers it reports to.
	if err := observability.Shutdown(shutdownCtx, srv.Shutdown, shutdownMetrics, shutdownTracer); err != nil {
		appLogger.Warn("shutdown incomplete", "error", err)
	}
	if runErr != nil {
		return runErr
	}
	appLogger.Info("server exited properly")
	return nil
}
