package port

import "context"

// TaskDispatcher enqueues asynchronous tasks related to audio delivery.
type TaskDispatcher interface {
	EnqueueInvalidation(ctx context.Context, assetID string, paths []string) error
}
