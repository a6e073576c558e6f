package track

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type uploadFinaliserSrv struct {
	delivery   port.MediaDelivery
	assets     port.AssetRepository
	pending    port.PendingUploadRepository
	cache      port.VariantCache
	dispatcher port.TaskDispatcher
	now        func() time.Time
}

// compile-time check: *uploadFinaliserSrv must satisfy port.UploadFinaliser
var _ port.UploadFinaliser = (*uploadFinaliserSrv)(nil)

func NewUploadFinaliser(d port.MediaDelivery, assets port.AssetRepository, pending port.PendingUploadRepository, cache port.VariantCache, dispatcher port.TaskDispatcher) port.UploadFinaliser {
	return &uploadFinaliserSrv{delivery: d, assets: assets, pending: pending, cache: cache, dispatcher: dispatcher, now: time.Now}
}

// FinaliseUpload checks the object written through a presigned link and adds it
// to the track's variants, creating the track on its first variant. Finalising a
// variant that is recorded and no longer pending returns the track unchanged.
func (s *uploadFinaliserSrv) FinaliseUpload(ctx context.Context, in port.FinaliseUploadInput) (*model.Asset, error) {
	if !s.delivery.IsAvailable() {
		return nil, delivery.ErrStorageUnavailable
	}

	p, err := s.pending.Get(ctx, in.AssetID, in.Bitrate)
	if errors.Is(err, sql.ErrNoRows) {
		return s.alreadyFinalised(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.GetByID(ctx, p.AssetID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if asset != nil && asset.Extension != p.Extension {
		// re-uploaded in another format after the link was issued
		s.discard(ctx, p)
		return nil, fmt.Errorf("%w: %q is now stored as %s", ErrFormatConflict, p.AssetID, asset.Extension)
	}

	variant, err := s.delivery.VerifyUploadedVariant(ctx, p.AssetID, p.Extension, p.Bitrate)
	if err != nil {
		if errors.Is(err, delivery.ErrUploadRejected) {
			s.clearPending(ctx, p)
		}
		return nil, err
	}

	now := s.now().UTC()
	replaced := false
	if asset == nil {
		asset = &model.Asset{
			ID:               p.AssetID,
			Extension:        p.Extension,
			MimeType:         variant.ContentType,
			OriginalFilename: p.OriginalFilename,
			CreatedAt:        now,
		}
	} else {
		_, replaced = asset.Variants[p.Bitrate]
	}
	if asset.Variants == nil {
		asset.Variants = model.Variants{}
	}
	asset.Variants[p.Bitrate] = variant.URL
	asset.UpdatedAt = now

	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, err
	}
	s.clearPending(ctx, p)
	s.cache.SetVariants(ctx, asset.ID, asset.Variants)

	if replaced {
		err := s.delivery.InvalidateAsset(ctx, asset.ID, delivery.InvalidationPaths(asset.ID, []int{p.Bitrate}))
		var invErr *delivery.InvalidationFailedError
		switch {
		case errors.As(err, &invErr):
			queueInvalidation(ctx, s.dispatcher, invErr)
		case err != nil:
			logger.Warnf(ctx, "could not invalidate the replaced %d kbps variant of %q: %v", p.Bitrate, asset.ID, err)
		}
	}

	return asset, nil
}

func (s *uploadFinaliserSrv) alreadyFinalised(ctx context.Context, in port.FinaliseUploadInput) (*model.Asset, error) {
	asset, err := s.assets.GetByID(ctx, in.AssetID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if asset != nil {
		if _, ok := asset.Variants[in.Bitrate]; ok {
			return asset, nil
		}
	}
	return nil, ErrUploadNotFound
}

// discard drops a pending upload together with whatever object it produced.
func (s *uploadFinaliserSrv) discard(ctx context.Context, p *model.PendingUpload) {
	if err := s.delivery.DeleteMusicFile(ctx, p.AssetID, p.Extension, p.Bitrate); err != nil {
		logger.Warnf(ctx, "could not remove discarded upload of %q at %d kbps: %v", p.AssetID, p.Bitrate, err)
	}
	s.clearPending(ctx, p)
}

// clearPending is best-effort, finalising the same variant twice is harmless.
func (s *uploadFinaliserSrv) clearPending(ctx context.Context, p *model.PendingUpload) {
	if err := s.pending.Delete(ctx, p.AssetID, p.Bitrate); err != nil {
		logger.Warnf(ctx, "could not clear pending upload of %q at %d kbps: %v", p.AssetID, p.Bitrate, err)
	}
}
