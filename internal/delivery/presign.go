package delivery

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

// GetPresignedUploadURL returns a time-limited URL a client can PUT one variant to.
func (s *Service) GetPresignedUploadURL(ctx context.Context, assetID, filename string, bitrate int) (string, error) {
	if !s.IsAvailable() {
		return "", ErrStorageUnavailable
	}
	if _, err := s.requestedBitrates([]int{bitrate}); err != nil {
		return "", err
	}
	ext, err := FileExtension(filename, "")
	if err != nil {
		return "", err
	}

	key := ObjectKey(bitrate, assetID, ext)
	logger.Debugf(ctx, "generating a presigned upload link for %q in bucket %q...", key, s.bucketName)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	return s.store.GeneratePresignedUploadURL(callCtx, s.bucketName, key, PresignedUploadExpiry)
}
