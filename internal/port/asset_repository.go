package port

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// AssetRepository defines persistence operations for audio assets.
type AssetRepository interface {
	Save(ctx context.Context, asset *model.Asset) error
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	Delete(ctx context.Context, id string) error
}
