package port

import "time"

// DeliveryObserver captures telemetry for object store and CDN operations.
type DeliveryObserver interface {
	RecordUpload(bitrate int, duration time.Duration, sizeBytes int, err error)
	RecordDelete(bitrate int, duration time.Duration, err error)
	RecordInvalidation(duration time.Duration, err error)
}
