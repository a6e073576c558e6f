package port

import (
	"context"
	"io"
	"time"
)

// SaveOptions carries the headers attached to an object on write.
type SaveOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports about an existing object.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ObjectStore defines the object storage operations used for audio files.
// Bucket provisioning happens at startup and is not part of it.
type ObjectStore interface {
	SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts SaveOptions) error
	RemoveFile(ctx context.Context, bucket, fileKey string) error
	StatFile(ctx context.Context, bucket, fileKey string) (ObjectInfo, error)
	GeneratePresignedUploadURL(ctx context.Context, bucket, fileKey string, expiry time.Duration) (string, error)
}
