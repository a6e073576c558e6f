package task

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// NoopDispatcher stands in when Redis is not configured. A failed CDN
// invalidation is then only logged and the edge serves stale copies until TTL.
type NoopDispatcher struct{}

var _ port.TaskDispatcher = NoopDispatcher{}

func NewNoopDispatcher() NoopDispatcher { return NoopDispatcher{} }

func (NoopDispatcher) EnqueueInvalidation(ctx context.Context, assetID string, paths []string) error {
	logger.Warnf(ctx, "⚠️  No task queue, dropping CDN invalidation of %d path(s) for %q", len(paths), assetID)
	return nil
}
