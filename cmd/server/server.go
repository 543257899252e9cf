package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/domain/pipeline"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/infrastructure/database"
	"vidvault/internal/infrastructure/inference"
	"vidvault/internal/infrastructure/logger"
	"vidvault/internal/infrastructure/media"
	"vidvault/internal/infrastructure/observability"
	assetrepo "vidvault/internal/infrastructure/repository/asset"
	"vidvault/internal/infrastructure/storage"
	"vidvault/internal/interfaces/httpserver"
	"vidvault/internal/interfaces/ws"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	storageClient, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	repository := assetrepo.NewRepository(db)
	hub := ws.NewHub(log)
	toolkit := media.NewToolkit(cfg, log)
	inferenceClient := inference.NewClient(cfg, log)

	orchestrator := pipeline.NewOrchestrator(
		cfg,
		repository,
		toolkit,
		inferenceClient,
		inferenceClient,
		inferenceClient,
		hub,
		storageClient,
		log,
	)

	assetService := asset.NewService(cfg, repository, storageClient, toolkit, orchestrator, log)
	authValidator := auth.NewValidator(cfg, log)

	httpServer := httpserver.New(cfg, log, assetService, hub, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newStorage selects the artifact storage backend from configuration.
func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (asset.Storage, error) {
	if cfg.IsS3Storage() {
		return storage.NewS3Storage(ctx, cfg, log)
	}
	return storage.NewLocalStorage(cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
