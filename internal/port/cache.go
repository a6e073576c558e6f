package port

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// VariantCache caches the variant map of an asset.
type VariantCache interface {
	// GetVariants returns nil, nil on a cache miss.
	GetVariants(ctx context.Context, assetID string) (model.Variants, error)
	SetVariants(ctx context.Context, assetID string, variants model.Variants)
	DeleteVariants(ctx context.Context, assetID string) error
}
