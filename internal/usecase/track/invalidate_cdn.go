package track

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

const invalidationAttempts = 3

type cdnInvalidatorSrv struct {
	delivery   port.MediaDelivery
	newBackOff func() backoff.BackOff
}

// compile-time check: *cdnInvalidatorSrv must satisfy port.CDNInvalidator
var _ port.CDNInvalidator = (*cdnInvalidatorSrv)(nil)

func NewCDNInvalidator(d port.MediaDelivery) port.CDNInvalidator {
	return &cdnInvalidatorSrv{
		delivery: d,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// InvalidateCDN retries in process a few times; the task queue retries after that.
func (s *cdnInvalidatorSrv) InvalidateCDN(ctx context.Context, assetID string, paths []string) error {
	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), invalidationAttempts-1), ctx)
	return backoff.RetryNotify(func() error {
		err := s.delivery.InvalidateAsset(ctx, assetID, paths)
		if errors.Is(err, delivery.ErrStorageUnavailable) || errors.Is(err, delivery.ErrUnauthorized) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, next time.Duration) {
		logger.Warnf(ctx, "cdn invalidation for %q failed, retrying in %s: %v", assetID, next, err)
	})
}
