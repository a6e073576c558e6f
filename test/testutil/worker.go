package testutil

import (
	"context"

	workerHandler "github.com/fhuszti/music-delivery-ms-go/internal/handler/worker"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/task"
	"github.com/hibiken/asynq"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

// StartWorker starts an asynq worker processing CDN invalidation tasks.
// It returns a function to gracefully shut down the worker.
func StartWorker(redisAddr string, svc port.CDNInvalidator) func() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeInvalidateCDN, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseInvalidateCDNPayload(t)
		if err != nil {
			return err
		}
		return workerHandler.InvalidateCDNHandler(ctx, p, svc)
	})

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 2, Queues: task.Queues})
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "worker stopped: %v", err)
		}
	}()

	return func() {
		srv.Shutdown()
	}
}
