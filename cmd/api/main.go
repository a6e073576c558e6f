package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/cache"
	"github.com/fhuszti/music-delivery-ms-go/internal/cdn"
	"github.com/fhuszti/music-delivery-ms-go/internal/config"
	"github.com/fhuszti/music-delivery-ms-go/internal/db"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/metrics"
	cMiddleware "github.com/fhuszti/music-delivery-ms-go/internal/middleware"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/music-delivery-ms-go/internal/storage"
	"github.com/fhuszti/music-delivery-ms-go/internal/task"
	"github.com/fhuszti/music-delivery-ms-go/internal/transcoder"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database := initDb(ctx, cfg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewPrometheusObserver(metrics.DefaultNamespace, reg)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to register metrics: %v", err)
		os.Exit(1)
	}

	svc := initDelivery(ctx, cfg, observer)

	assetRepo := mariadb.NewAssetRepository(database.DB)
	pendingRepo := mariadb.NewPendingUploadRepository(database.DB)
	var ca port.VariantCache
	var dispatcher port.TaskDispatcher
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.VariantsCacheTTL)
		d := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
		defer func() {
			if err := d.Close(); err != nil {
				logger.Warnf(ctx, "dispatcher close error: %v", err)
			}
		}()
		dispatcher = d
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		logger.Warn(ctx, "⚠️  Redis not configured, caching and deferred CDN invalidation are disabled")
	}

	r := initRouter(ctx)
	r.Get("/health", api.HealthHandler(svc.IsAvailable))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithDSTAuth(cfg.JWTPublicKey))
		publishers := cMiddleware.WithRoles(cfg.JWTPublicKey, cfg.PublisherRoles...)

		uploadLinkSvc := track.NewUploadLinkGenerator(svc, assetRepo, pendingRepo, uuid.NewString)
		r.With(publishers).
			Post("/tracks/upload_link", api.GenerateUploadLinkHandler(uploadLinkSvc))

		finaliserSvc := track.NewUploadFinaliser(svc, assetRepo, pendingRepo, ca, dispatcher)
		r.With(publishers, cMiddleware.WithAssetID()).
			Post("/tracks/{id}/finalise", api.FinaliseUploadHandler(finaliserSvc))

		uploaderSvc := track.NewTrackUploader(svc, assetRepo, ca, dispatcher)
		r.With(publishers, cMiddleware.WithAssetID(), cMiddleware.WithUploadGate(delivery.MaxFileSize)).
			Post("/tracks/{id}/audio", api.UploadAudioHandler(uploaderSvc))

		streamSvc := track.NewStreamResolver(svc, assetRepo, ca)
		r.With(cMiddleware.WithAssetID()).
			Get("/tracks/{id}/stream", api.StreamHandler(streamSvc))

		deleterSvc := track.NewTrackDeleter(svc, assetRepo, pendingRepo, ca, dispatcher)
		r.With(publishers, cMiddleware.WithAssetID()).
			Delete("/tracks/{id}", api.DeleteTrackHandler(deleterSvc))
	})

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

// initDelivery builds the delivery service. Without storage credentials it
// still starts and reports itself unavailable.
func initDelivery(ctx context.Context, cfg *config.Settings, observer port.DeliveryObserver) *delivery.Service {
	var store port.ObjectStore
	if cfg.StorageConfigured() {
		strg, err := storage.NewStorage(cfg.S3Endpoint, cfg.AccessKeyID, cfg.SecretKey, cfg.Region, cfg.S3UseSSL)
		if err != nil {
			logger.Errorf(ctx, "❌  Failed to initialize S3 client: %v", err)
			os.Exit(1)
		}
		if err := strg.EnsureBucket(ctx, cfg.BucketName); err != nil {
			logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.BucketName, err)
			os.Exit(1)
		}
		store = strg
	} else {
		logger.Warn(ctx, "⚠️  Storage credentials or bucket missing, uploads are disabled")
	}

	var edge port.CDN = cdn.NewNoop()
	if cfg.DistributionID != "" {
		edge = cdn.NewCloudFront(cfg.DistributionID, cfg.Region, cfg.AccessKeyID, cfg.SecretKey)
	}

	var tc port.Transcoder = transcoder.NewPassthrough()
	if cfg.FFmpegBinary != "" {
		tc = transcoder.NewFFmpeg(cfg.FFmpegBinary)
	}

	return delivery.New(delivery.Options{
		Store:          store,
		CDN:            edge,
		Transcoder:     tc,
		Observer:       observer,
		BucketName:     cfg.BucketName,
		DistributionID: cfg.DistributionID,
		Region:         cfg.Region,
		Bitrates:       cfg.Bitrates,
		MaxRetries:     cfg.UploadMaxRetries,
		CallTimeout:    cfg.StorageCallTimeout,
	})
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
