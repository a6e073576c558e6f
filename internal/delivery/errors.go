package delivery

import (
	"errors"
	"fmt"
)

var (
	ErrStorageUnavailable  = errors.New("delivery: storage is not configured")
	ErrNoVariantsAvailable = errors.New("delivery: no variants available")
	ErrUnsupportedFormat   = errors.New("delivery: unsupported audio format")
	ErrInvalidBitrate      = errors.New("delivery: invalid bitrate")
	ErrUploadRejected      = errors.New("delivery: uploaded object rejected")

	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
)

// UploadFailedError reports the variant that made an upload fail.
type UploadFailedError struct {
	Bitrate int
	Err     error
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload of %dkbps variant failed: %v", e.Bitrate, e.Err)
}

func (e *UploadFailedError) Unwrap() error { return e.Err }

// DeleteFailedError reports a variant that could not be removed.
type DeleteFailedError struct {
	Bitrate int
	Err     error
}

func (e *DeleteFailedError) Error() string {
	return fmt.Sprintf("delete of %dkbps variant failed: %v", e.Bitrate, e.Err)
}

func (e *DeleteFailedError) Unwrap() error { return e.Err }

// InvalidationFailedError carries what is needed to retry a CDN invalidation later.
type InvalidationFailedError struct {
	AssetID string
	Paths   []string
	Err     error
}

func (e *InvalidationFailedError) Error() string {
	return fmt.Sprintf("cdn invalidation for asset %q failed: %v", e.AssetID, e.Err)
}

func (e *InvalidationFailedError) Unwrap() error { return e.Err }
