package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/config"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/delivery/httpd"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/repository"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service/detector"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service/digest"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/worker"
	"github.com/mohammed-arif-23/it-panel-detection-service/pkg/hash"
)

type App struct {
	server     *http.Server
	logger     zerolog.Logger
	config     *config.Config
	db         *sql.DB
	workerPool *worker.WorkerPool
	publisher  repository.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	submissionRepo := repository.NewSubmissionRepository(db, log)

	// The broker only carries best-effort lifecycle events; a dead broker
	// must not keep detection from running.
	publisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, lifecycle events disabled")
		publisher = nil
	}

	objectStore, err := repository.NewMinIOStore(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
		cfg.Storage.ConnectTimeout,
		log,
	)
	if err != nil {
		return nil, err
	}

	digester := hash.NewDigester(hash.Algorithm(cfg.Detection.HashAlgorithm))
	digestService := digest.NewService(objectStore, digester, digest.Config{
		Timeout:    cfg.Detection.DigestTimeout,
		RetryCount: cfg.Detection.FetchRetryCount,
		RetryDelay: cfg.Detection.FetchRetryDelay,
	}, log)

	workerPool := worker.NewWorkerPool(cfg.Detection.MaxWorkers, log)

	backfillService := service.NewBackfillService(
		submissionRepo,
		digestService,
		workerPool,
		publisher,
		log,
	)

	engine := detector.NewEngine(detector.Config{
		MetadataWindow: cfg.Detection.MetadataWindow,
		TightWindow:    cfg.Detection.TightWindow,
	})

	detectionService := service.NewDetectionService(
		submissionRepo,
		engine,
		publisher,
		log,
		service.DetectionConfig{
			DefaultMinConfidence: cfg.Detection.MinConfidence,
		},
	)

	exportService := service.NewExportService(log)

	handler := httpd.NewHandler(
		detectionService,
		backfillService,
		exportService,
		repository.NewPostgresRepository(db, log),
		publisher,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:     server,
		logger:     log,
		config:     cfg,
		db:         db,
		workerPool: workerPool,
		publisher:  publisher,
	}, nil
}

func (a *App) Run() error {
	a.workerPool.Start()

	a.logger.Info().Msgf("Starting detection service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down detection service...")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.workerPool.Stop()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	a.logger.Info().Msg("Detection service stopped")
	return nil
}
