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

type uploadLinkGeneratorSrv struct {
	delivery port.MediaDelivery
	assets   port.AssetRepository
	pending  port.PendingUploadRepository
	newID    func() string
	now      func() time.Time
}

// compile-time check: *uploadLinkGeneratorSrv must satisfy port.UploadLinkGenerator
var _ port.UploadLinkGenerator = (*uploadLinkGeneratorSrv)(nil)

// NewUploadLinkGenerator builds the generator. newID supplies ids for callers that do not bring one.
func NewUploadLinkGenerator(d port.MediaDelivery, assets port.AssetRepository, pending port.PendingUploadRepository, newID func() string) port.UploadLinkGenerator {
	return &uploadLinkGeneratorSrv{delivery: d, assets: assets, pending: pending, newID: newID, now: time.Now}
}

// GenerateUploadLink presigns a PUT for one variant and records it as pending
// until FinaliseUpload is called for it.
func (s *uploadLinkGeneratorSrv) GenerateUploadLink(ctx context.Context, in port.GenerateUploadLinkInput) (port.GenerateUploadLinkOutput, error) {
	if !s.delivery.IsAvailable() {
		return port.GenerateUploadLinkOutput{}, delivery.ErrStorageUnavailable
	}

	ext, err := delivery.FileExtension(in.Filename, "")
	if err != nil {
		return port.GenerateUploadLinkOutput{}, err
	}

	id := in.AssetID
	if id == "" {
		id = s.newID()
	} else if err := s.checkFormat(ctx, id, ext, in.Bitrate); err != nil {
		return port.GenerateUploadLinkOutput{}, err
	}

	url, err := s.delivery.GetPresignedUploadURL(ctx, id, in.Filename, in.Bitrate)
	if err != nil {
		return port.GenerateUploadLinkOutput{}, err
	}

	p := &model.PendingUpload{
		AssetID:          id,
		Bitrate:          in.Bitrate,
		Extension:        ext,
		OriginalFilename: in.Filename,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.pending.Save(ctx, p); err != nil {
		return port.GenerateUploadLinkOutput{}, err
	}
	logger.Debugf(ctx, "pending upload of %q at %d kbps recorded", id, in.Bitrate)

	return port.GenerateUploadLinkOutput{ID: id, URL: url}, nil
}

// checkFormat refuses a link whose extension differs from the one the track is
// stored or being uploaded in, a track only ever has one.
func (s *uploadLinkGeneratorSrv) checkFormat(ctx context.Context, id, ext string, bitrate int) error {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if asset != nil && asset.Extension != ext {
		return fmt.Errorf("%w: %q is stored as %s, not %s", ErrFormatConflict, id, asset.Extension, ext)
	}

	pending, err := s.pending.ListByAsset(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range pending {
		if p.Bitrate != bitrate && p.Extension != ext {
			return fmt.Errorf("%w: %q has a pending %s upload at %d kbps", ErrFormatConflict, id, p.Extension, p.Bitrate)
		}
	}
	return nil
}
