package port

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// PendingUploadRepository tracks presigned upload links that have not been finalised yet.
type PendingUploadRepository interface {
	Save(ctx context.Context, p *model.PendingUpload) error
	// Get returns sql.ErrNoRows when no link was handed out for that variant.
	Get(ctx context.Context, assetID string, bitrate int) (*model.PendingUpload, error)
	ListByAsset(ctx context.Context, assetID string) ([]model.PendingUpload, error)
	Delete(ctx context.Context, assetID string, bitrate int) error
	DeleteByAsset(ctx context.Context, assetID string) error
}
