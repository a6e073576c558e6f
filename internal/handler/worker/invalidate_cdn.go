package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/task"
	"github.com/fhuszti/music-delivery-ms-go/internal/validation"
	"github.com/hibiken/asynq"
)

// InvalidateCDNHandler handles a cdn:invalidate task queued after a track
// deletion could not purge the CDN inline.
// Errors that another attempt cannot fix are returned wrapping asynq.SkipRetry.
func InvalidateCDNHandler(ctx context.Context, p task.InvalidateCDNPayload, svc port.CDNInvalidator) error {
	if !validation.IsValidAssetID(p.AssetID) {
		logger.Errorf(ctx, "❌  Invalid asset ID %q", p.AssetID)
		return fmt.Errorf("invalid asset id %q: %w", p.AssetID, asynq.SkipRetry)
	}

	if err := svc.InvalidateCDN(ctx, p.AssetID, p.Paths); err != nil {
		logger.Errorf(ctx, "❌  Failed to invalidate CDN for track #%s: %v", p.AssetID, err)
		if errors.Is(err, delivery.ErrStorageUnavailable) || errors.Is(err, delivery.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Infof(ctx, "✅  Successfully invalidated CDN for track #%s", p.AssetID)
	return nil
}
