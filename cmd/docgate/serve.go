package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docgate/internal/config"
	"docgate/internal/database"
	"docgate/internal/gateway"
	handlers "docgate/internal/http/handler"
	"docgate/internal/http/middleware"
	"docgate/internal/logging"
	tracing "docgate/internal/otel"
	"docgate/internal/repository"
	"docgate/internal/repository/mongodb"
	"docgate/internal/repository/postgres"
	"docgate/internal/schema"
	"docgate/internal/service"
	"docgate/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), config.Load())
		},
	}
}

func serve(parent context.Context, cfg *config.AppConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shutdownTracing, err := tracing.Init(ctx, logger.Named("otel"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	engine, closeEngine, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	backend, err := openSchemaBackend(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	gwMetrics, err := gateway.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register gateway metrics: %w", err)
	}

	store := schema.NewStore(backend, schema.NewCache(), logger.Named("schema"))
	gw := gateway.New(cfg.Schema.DataValidation, store, logger.Named("gateway"), gateway.WithMetrics(gwMetrics))

	app := fiber.New(fiber.Config{
		AppName:               "docgate",
		ErrorHandler:          handlers.ErrorHandler(),
		JSONDecoder:           handlers.DecodeJSON,
		DisableStartupMessage: !cfg.IsDevelopment(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger.Named("http")))
	app.Use(httpMetrics.Handler())
	app.Use(cors.New(cors.Config{AllowOrigins: strings.Join(cfg.CORSOrigins, ",")}))

	handlers.RegisterRoutes(app, handlers.Deps{
		Engine:    engine,
		Databases: service.NewDatabaseService(engine),
		Documents: service.NewDocumentService(engine, gw),
		Schemas:   service.NewSchemaService(store),
		Gatherer:  reg,
	})

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("schema_backend", cfg.Schema.Backend),
		zap.Bool("data_validation", gw.Enabled()),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(":" + cfg.Port) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openEngine connects the document engine selected by STORE_DRIVER.
func openEngine(ctx context.Context, cfg *config.AppConfig) (repository.DocumentRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		return mongodb.NewDocumentMongo(client), func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}, nil
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewDocumentPostgres(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

var errUnknownBackend = errors.New("unknown SCHEMA_BACKEND")

// openSchemaBackend returns where schema files are persisted.
func openSchemaBackend(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Schema.Backend {
	case config.SchemaBackendFS:
		s, err := storage.NewFS(cfg.Schema.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open schema directory: %w", err)
		}
		return s, nil
	case config.SchemaBackendMinIO:
		s, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownBackend, cfg.Schema.Backend)
	}
}
