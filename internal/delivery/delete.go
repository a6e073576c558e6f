package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

// DeleteMusicFile removes every variant of an asset, then invalidates the CDN once.
// Deletes are best-effort: every variant is attempted and failures are returned
// joined as *DeleteFailedError values, possibly with an *InvalidationFailedError.
func (s *Service) DeleteMusicFile(ctx context.Context, assetID, extension string, bitrates ...int) error {
	if !s.IsAvailable() {
		return ErrStorageUnavailable
	}

	targets, err := s.deletableBitrates(bitrates)
	if err != nil {
		return err
	}
	ext := normalizeExtension(extension)

	errs := make([]error, len(targets))
	var g errgroup.Group
	for i, b := range targets {
		g.Go(func() error {
			if err := s.deleteVariant(ctx, assetID, ext, b); err != nil {
				errs[i] = &DeleteFailedError{Bitrate: b, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			logger.Warnf(ctx, "asset %q: %v", assetID, err)
		}
	}

	if err := s.invalidate(ctx, assetID, InvalidationPaths(assetID, targets)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// InvalidateAsset submits a fresh invalidation for paths, or for every configured
// bitrate directory of the asset when paths is empty.
func (s *Service) InvalidateAsset(ctx context.Context, assetID string, paths []string) error {
	if !s.IsAvailable() {
		return ErrStorageUnavailable
	}
	if len(paths) == 0 {
		paths = InvalidationPaths(assetID, s.bitrates)
	}
	return s.invalidate(ctx, assetID, paths)
}

// InvalidationPaths returns one wildcard path per bitrate directory of the asset.
func InvalidationPaths(assetID string, bitrates []int) []string {
	paths := make([]string, 0, len(bitrates))
	for _, b := range bitrates {
		paths = append(paths, fmt.Sprintf("/music/%dkbps/%s.*", b, assetID))
	}
	return paths
}

func (s *Service) deleteVariant(ctx context.Context, assetID, ext string, bitrate int) error {
	key := ObjectKey(bitrate, assetID, ext)
	logger.Debugf(ctx, "removing variant %q from bucket %q...", key, s.bucketName)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.RemoveFile(callCtx, s.bucketName, key)
	if errors.Is(err, ErrObjectNotFound) {
		err = nil
	}
	s.observer.RecordDelete(bitrate, time.Since(start), err)
	return err
}

func (s *Service) invalidate(ctx context.Context, assetID string, paths []string) error {
	if s.distributionID == "" || s.cdn == nil {
		return nil
	}

	// unique per batch, otherwise the CDN treats a second call as a replay of the first
	ref := fmt.Sprintf("%s-%d", assetID, s.now().UnixNano())

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	err := s.cdn.Invalidate(callCtx, ref, paths)
	s.observer.RecordInvalidation(time.Since(start), err)
	if err != nil {
		return &InvalidationFailedError{AssetID: assetID, Paths: paths, Err: err}
	}

	logger.Infof(ctx, "requested cdn invalidation %q for %d paths", ref, len(paths))
	return nil
}
