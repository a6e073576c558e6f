package delivery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// UploadMusicFile writes one object per requested bitrate and returns their URLs.
// The map is only returned once every variant has been written.
func (s *Service) UploadMusicFile(ctx context.Context, data []byte, mimeType, originalFilename, assetID string, bitrates ...int) (model.Variants, error) {
	if !s.IsAvailable() {
		return nil, ErrStorageUnavailable
	}

	targets, err := s.requestedBitrates(bitrates)
	if err != nil {
		return nil, err
	}
	ext, err := FileExtension(originalFilename, mimeType)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range targets {
		g.Go(func() error {
			u, err := s.uploadVariant(gctx, data, mimeType, originalFilename, assetID, ext, b)
			if err != nil {
				return &UploadFailedError{Bitrate: b, Err: err}
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Errorf(ctx, "upload of asset %q failed: %v", assetID, err)
		return nil, err
	}

	variants := make(model.Variants, len(targets))
	for i, b := range targets {
		variants[b] = urls[i]
	}
	logger.Infof(ctx, "uploaded asset %q in %d variants", assetID, len(variants))

	return variants, nil
}

func (s *Service) uploadVariant(ctx context.Context, data []byte, mimeType, originalFilename, assetID, ext string, bitrate int) (string, error) {
	payload := data
	if s.transcoder != nil {
		out, err := s.transcoder.Transcode(ctx, data, mimeType, bitrate)
		if err != nil {
			return "", fmt.Errorf("transcode: %w", err)
		}
		payload = out
	}

	key := ObjectKey(bitrate, assetID, ext)
	opts := port.SaveOptions{
		ContentType: mimeType,
		Metadata: map[string]string{
			"assetId": assetID,
			"bitrate": strconv.Itoa(bitrate),
			// user metadata travels as an HTTP header, readers decode it with url.PathUnescape
			"originalName": url.PathEscape(originalFilename),
		},
	}

	logger.Debugf(ctx, "writing variant %q into bucket %q...", key, s.bucketName)
	start := time.Now()
	err := s.retry(ctx, func(callCtx context.Context) error {
		return s.store.SaveFile(callCtx, s.bucketName, key, bytes.NewReader(payload), int64(len(payload)), opts)
	})
	s.observer.RecordUpload(bitrate, time.Since(start), len(payload), err)
	if err != nil {
		return "", err
	}

	return s.publicURL(key), nil
}
