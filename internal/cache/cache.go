// Package cache keeps the bitrate→URL map of recently streamed tracks in
// Redis so stream lookups skip the database.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "music:variants:"

// Cache stores each asset as one Redis hash, field = bitrate, value = URL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// compile-time check
var _ port.VariantCache = (*Cache)(nil)

func NewCache(addr, password string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl:    ttl,
	}
}

// GetVariants returns nil, nil on a miss.
func (c *Cache) GetVariants(ctx context.Context, assetID string) (model.Variants, error) {
	fields, err := c.client.HGetAll(ctx, keyFor(assetID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %q: %w", assetID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	v := make(model.Variants, len(fields))
	for field, url := range fields {
		bitrate, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("cached variants of %q: bad bitrate field %q", assetID, field)
		}
		v[bitrate] = url
	}
	return v, nil
}

// SetVariants replaces the cached map. Failures are logged only: the next
// stream request falls back to the database.
func (c *Cache) SetVariants(ctx context.Context, assetID string, variants model.Variants) {
	if len(variants) == 0 {
		return
	}
	key := keyFor(assetID)
	values := make(map[string]any, len(variants))
	for bitrate, url := range variants {
		values[strconv.Itoa(bitrate)] = url
	}

	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, values)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		logger.Warnf(ctx, "⚠️  Could not cache variants of %q: %v", assetID, err)
		return
	}
	logger.Debugf(ctx, "cached %d variant(s) of %q for %s", len(variants), assetID, c.ttl)
}

func (c *Cache) DeleteVariants(ctx context.Context, assetID string) error {
	if err := c.client.Del(ctx, keyFor(assetID)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", assetID, err)
	}
	return nil
}

func keyFor(assetID string) string {
	return keyPrefix + assetID
}
