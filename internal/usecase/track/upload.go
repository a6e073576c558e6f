package track

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type trackUploaderSrv struct {
	delivery   port.MediaDelivery
	repo       port.AssetRepository
	cache      port.VariantCache
	dispatcher port.TaskDispatcher
	now        func() time.Time
}

// compile-time check: *trackUploaderSrv must satisfy port.TrackUploader
var _ port.TrackUploader = (*trackUploaderSrv)(nil)

func NewTrackUploader(d port.MediaDelivery, repo port.AssetRepository, cache port.VariantCache, dispatcher port.TaskDispatcher) port.TrackUploader {
	return &trackUploaderSrv{delivery: d, repo: repo, cache: cache, dispatcher: dispatcher, now: time.Now}
}

// UploadTrack writes every variant, then records the asset. The record is only
// touched once the whole variant map exists. Objects of the previous upload that
// the new map no longer points at are removed afterwards.
func (s *trackUploaderSrv) UploadTrack(ctx context.Context, in port.UploadTrackInput) (*model.Asset, error) {
	if !s.delivery.IsAvailable() {
		return nil, delivery.ErrStorageUnavailable
	}

	ext, err := delivery.FileExtension(in.Filename, in.MimeType)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.GetByID(ctx, in.AssetID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	variants, err := s.delivery.UploadMusicFile(ctx, in.Data, in.MimeType, in.Filename, in.AssetID, in.Bitrates...)
	if err != nil {
		var upErr *delivery.UploadFailedError
		if previous != nil && errors.As(err, &upErr) {
			s.settleFailedReupload(ctx, previous, ext, in.Bitrates)
		}
		return nil, err
	}

	now := s.now().UTC()
	asset := &model.Asset{
		ID:               in.AssetID,
		Extension:        ext,
		MimeType:         in.MimeType,
		OriginalFilename: in.Filename,
		Variants:         variants,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if previous != nil {
		asset.CreatedAt = previous.CreatedAt
	}
	if err := s.repo.Save(ctx, asset); err != nil {
		return nil, err
	}

	s.cache.SetVariants(ctx, asset.ID, asset.Variants)

	if previous != nil {
		s.removeStale(ctx, previous, asset)
	}

	return asset, nil
}

// removeStale deletes what the previous upload left behind: everything when the
// format changed, otherwise the bitrates the new upload did not produce.
func (s *trackUploaderSrv) removeStale(ctx context.Context, previous, current *model.Asset) {
	prevExt := previous.Extension
	if prevExt == "" {
		prevExt = delivery.DefaultExtension
	}

	stale := previous.Variants.Bitrates()
	if prevExt == current.Extension {
		stale = droppedBitrates(previous.Variants, current.Variants)
	}
	if len(stale) == 0 {
		return
	}

	err := s.delivery.DeleteMusicFile(ctx, previous.ID, prevExt, stale...)
	for _, e := range flatten(err) {
		var invErr *delivery.InvalidationFailedError
		if errors.As(e, &invErr) {
			queueInvalidation(ctx, s.dispatcher, invErr)
			continue
		}
		logger.Warnf(ctx, "could not remove %s variants %v of %q: %v", prevExt, stale, previous.ID, e)
	}
}

// settleFailedReupload runs when a re-upload in the same format stopped halfway.
// The record still lists the previous variants but some of their objects may
// already hold the new audio, so the cached map is dropped and the CDN is told
// to fetch those paths again.
func (s *trackUploaderSrv) settleFailedReupload(ctx context.Context, previous *model.Asset, ext string, requested []int) {
	if previous.Extension != ext {
		return
	}
	touched := sharedBitrates(previous.Variants, requested, s.delivery.Bitrates())
	if len(touched) == 0 {
		return
	}

	// the request context may be the reason the upload failed
	ctx = context.WithoutCancel(ctx)
	logger.Errorf(ctx, "❌  re-upload of %q failed, variants %v may mix the old and the new audio until it is uploaded again", previous.ID, touched)

	if err := s.cache.DeleteVariants(ctx, previous.ID); err != nil {
		logger.Warnf(ctx, "failed deleting cached variants for %q: %v", previous.ID, err)
	}

	err := s.delivery.InvalidateAsset(ctx, previous.ID, delivery.InvalidationPaths(previous.ID, touched))
	var invErr *delivery.InvalidationFailedError
	switch {
	case errors.As(err, &invErr):
		queueInvalidation(ctx, s.dispatcher, invErr)
	case err != nil:
		logger.Warnf(ctx, "could not invalidate %q after a failed re-upload: %v", previous.ID, err)
	}
}
