package task

import (
	"context"
	"fmt"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/hibiken/asynq"
)

// enqueuer is the part of *asynq.Client the dispatcher uses.
type enqueuer interface {
	EnqueueContext(ctx context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Dispatcher hands failed CDN invalidations to the worker through Redis.
type Dispatcher struct {
	client enqueuer
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

func NewDispatcher(addr, password string) *Dispatcher {
	return &Dispatcher{client: asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})}
}

func (d *Dispatcher) EnqueueInvalidation(ctx context.Context, assetID string, paths []string) error {
	t, err := NewInvalidateCDNTask(assetID, paths)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, t)
	if err != nil {
		return fmt.Errorf("enqueue %s for %q: %w", TypeInvalidateCDN, assetID, err)
	}
	logger.Debugf(ctx, "queued %s task %s on %q", TypeInvalidateCDN, info.ID, info.Queue)
	return nil
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}
