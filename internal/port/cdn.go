package port

import "context"

// CDN invalidates cached copies of paths at the edge.
type CDN interface {
	// Invalidate submits one invalidation batch. callerReference must be unique per batch.
	Invalidate(ctx context.Context, callerReference string, paths []string) error
}
