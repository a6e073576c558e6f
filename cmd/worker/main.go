package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/cdn"
	"github.com/fhuszti/music-delivery-ms-go/internal/config"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	workerHandler "github.com/fhuszti/music-delivery-ms-go/internal/handler/worker"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/storage"
	"github.com/fhuszti/music-delivery-ms-go/internal/task"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
	"github.com/hibiken/asynq"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	logger.Init()

	invalidatorSvc := track.NewCDNInvalidator(initDelivery(ctx, cfg))

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeInvalidateCDN, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseInvalidateCDNPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.InvalidateCDNHandler(ctx, p, invalidatorSvc)
	})

	runWorker(ctx, mux, cfg)
}

// initDelivery builds the delivery service used to replay CDN invalidations.
func initDelivery(ctx context.Context, cfg *config.Settings) *delivery.Service {
	var store port.ObjectStore
	if cfg.StorageConfigured() {
		strg, err := storage.NewStorage(cfg.S3Endpoint, cfg.AccessKeyID, cfg.SecretKey, cfg.Region, cfg.S3UseSSL)
		if err != nil {
			logger.Errorf(ctx, "❌  Failed to initialize S3 client: %v", err)
			os.Exit(1)
		}
		store = strg
	} else {
		logger.Warn(ctx, "⚠️  Storage credentials or bucket missing, invalidation tasks will be dropped")
	}

	var edge port.CDN = cdn.NewNoop()
	if cfg.DistributionID != "" {
		edge = cdn.NewCloudFront(cfg.DistributionID, cfg.Region, cfg.AccessKeyID, cfg.SecretKey)
	} else {
		logger.Warn(ctx, "⚠️  AWS_CLOUDFRONT_DISTRIBUTION_ID not set, invalidation tasks will be no-ops")
	}

	return delivery.New(delivery.Options{
		Store:          store,
		CDN:            edge,
		BucketName:     cfg.BucketName,
		DistributionID: cfg.DistributionID,
		Region:         cfg.Region,
		Bitrates:       cfg.Bitrates,
		CallTimeout:    cfg.StorageCallTimeout,
	})
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings) {
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{Concurrency: 10, Queues: task.Queues})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// Give Asynq up to 30 sec to finish tasks
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		srv.Shutdown() // stop accepting new tasks, finish in-flight
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn(ctx, "⚠️  Worker shutdown timed out")
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}
