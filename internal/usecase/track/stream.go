package track

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type streamResolverSrv struct {
	delivery port.MediaDelivery
	repo     port.AssetRepository
	cache    port.VariantCache
}

// compile-time check: *streamResolverSrv must satisfy port.StreamResolver
var _ port.StreamResolver = (*streamResolverSrv)(nil)

func NewStreamResolver(d port.MediaDelivery, repo port.AssetRepository, cache port.VariantCache) port.StreamResolver {
	return &streamResolverSrv{delivery: d, repo: repo, cache: cache}
}

func (s *streamResolverSrv) ResolveStream(ctx context.Context, in port.ResolveStreamInput) (port.ResolveStreamOutput, error) {
	variants, err := s.variants(ctx, in.AssetID)
	if err != nil {
		return port.ResolveStreamOutput{}, err
	}

	url, err := s.delivery.GetStreamingURL(variants, in.Tier)
	if err != nil {
		return port.ResolveStreamOutput{}, err
	}

	return port.ResolveStreamOutput{URL: url, Tier: delivery.LookupTier(in.Tier).Name}, nil
}

func (s *streamResolverSrv) variants(ctx context.Context, id string) (model.Variants, error) {
	cached, err := s.cache.GetVariants(ctx, id)
	if err != nil {
		logger.Warnf(ctx, "variants cache read failed for %q: %v", id, err)
	}
	if len(cached) > 0 {
		return cached, nil
	}

	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	if len(asset.Variants) > 0 {
		s.cache.SetVariants(ctx, id, asset.Variants)
	}
	return asset.Variants, nil
}
