package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// VerifyUploadedVariant inspects the object a client wrote through a presigned link.
// A missing object yields ErrObjectNotFound and is left for the client to retry.
// An empty, oversized or non-audio object is removed and ErrUploadRejected returned.
func (s *Service) VerifyUploadedVariant(ctx context.Context, assetID, extension string, bitrate int) (port.UploadedVariant, error) {
	if !s.IsAvailable() {
		return port.UploadedVariant{}, ErrStorageUnavailable
	}
	if _, err := s.requestedBitrates([]int{bitrate}); err != nil {
		return port.UploadedVariant{}, err
	}

	ext := normalizeExtension(extension)
	key := ObjectKey(bitrate, assetID, ext)
	logger.Debugf(ctx, "checking uploaded variant %q in bucket %q...", key, s.bucketName)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	info, err := s.store.StatFile(callCtx, s.bucketName, key)
	cancel()
	if err != nil {
		return port.UploadedVariant{}, err
	}

	contentType := strings.ToLower(strings.TrimSpace(info.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, _ = ExtensionToMimeType(ext)
	}

	var reason string
	switch {
	case info.Size <= 0:
		reason = "object is empty"
	case info.Size > MaxFileSize:
		reason = fmt.Sprintf("object is %d bytes, the limit is %d", info.Size, MaxFileSize)
	case contentType == "":
		reason = fmt.Sprintf("no audio type known for extension %q", ext)
	default:
		if _, err := MimeTypeToExtension(contentType); err != nil {
			reason = fmt.Sprintf("content type %q is not audio", contentType)
		}
	}
	if reason != "" {
		logger.Warnf(ctx, "rejecting uploaded variant %q: %s", key, reason)
		if err := s.deleteVariant(ctx, assetID, ext, bitrate); err != nil {
			logger.Errorf(ctx, "could not remove rejected variant %q: %v", key, err)
		}
		return port.UploadedVariant{}, fmt.Errorf("%w: %s", ErrUploadRejected, reason)
	}

	return port.UploadedVariant{URL: s.publicURL(key), ContentType: contentType, Size: info.Size}, nil
}
