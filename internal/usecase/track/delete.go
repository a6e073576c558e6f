package track

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type trackDeleterSrv struct {
	delivery   port.MediaDelivery
	repo       port.AssetRepository
	pending    port.PendingUploadRepository
	cache      port.VariantCache
	dispatcher port.TaskDispatcher
}

// compile-time check: *trackDeleterSrv must satisfy port.TrackDeleter
var _ port.TrackDeleter = (*trackDeleterSrv)(nil)

func NewTrackDeleter(d port.MediaDelivery, repo port.AssetRepository, pending port.PendingUploadRepository, cache port.VariantCache, dispatcher port.TaskDispatcher) port.TrackDeleter {
	return &trackDeleterSrv{delivery: d, repo: repo, pending: pending, cache: cache, dispatcher: dispatcher}
}

// DeleteTrack removes the variants, the record, the unfinished uploads and the
// cached map. Every configured bitrate is removed, not only the recorded ones,
// so objects left over by an earlier upload go too. Variants that could not be
// removed are reported as warnings; a failed CDN invalidation is queued for the worker.
func (s *trackDeleterSrv) DeleteTrack(ctx context.Context, assetID string) (port.DeleteTrackOutput, error) {
	var out port.DeleteTrackOutput

	if !s.delivery.IsAvailable() {
		return out, delivery.ErrStorageUnavailable
	}

	asset, err := s.repo.GetByID(ctx, assetID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return out, err
	}
	pending, err := s.pending.ListByAsset(ctx, assetID)
	if err != nil {
		return out, err
	}
	if asset == nil && len(pending) == 0 {
		return out, ErrAssetNotFound
	}

	targets := s.deletionTargets(asset, pending)
	extensions := make([]string, 0, len(targets))
	for ext := range targets {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)

	for _, ext := range extensions {
		err := s.delivery.DeleteMusicFile(ctx, assetID, ext, targets[ext]...)
		for _, e := range flatten(err) {
			var delErr *delivery.DeleteFailedError
			var invErr *delivery.InvalidationFailedError
			switch {
			case errors.As(e, &delErr):
				out.Warnings = append(out.Warnings, delErr.Error())
			case errors.As(e, &invErr):
				if !queueInvalidation(ctx, s.dispatcher, invErr) {
					out.Warnings = append(out.Warnings, invErr.Error())
				}
			default:
				return port.DeleteTrackOutput{}, e
			}
		}
	}

	if len(pending) > 0 {
		if err := s.pending.DeleteByAsset(ctx, assetID); err != nil {
			return port.DeleteTrackOutput{}, err
		}
	}
	if asset != nil {
		if err := s.repo.Delete(ctx, assetID); err != nil {
			return port.DeleteTrackOutput{}, err
		}
	}

	if err := s.cache.DeleteVariants(ctx, assetID); err != nil {
		logger.Warnf(ctx, "failed deleting cached variants for %q: %v", assetID, err)
	}

	return out, nil
}

// deletionTargets groups the bitrates to remove by extension.
func (s *trackDeleterSrv) deletionTargets(asset *model.Asset, pending []model.PendingUpload) map[string][]int {
	targets := map[string][]int{}
	if asset != nil {
		targets[asset.Extension] = mergeBitrates(s.delivery.Bitrates(), asset.Variants.Bitrates())
	}
	for _, p := range pending {
		targets[p.Extension] = mergeBitrates(targets[p.Extension], []int{p.Bitrate})
	}
	return targets
}
