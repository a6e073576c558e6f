package mock

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// Cache implements port.VariantCache for tests.
type Cache struct {
	// stored values
	VariantsOut model.Variants
	Stored      model.Variants

	// errors
	GetErr error
	DelErr error

	// call flags
	GetCalled bool
	SetCalled bool
	DelCalled bool
	DelID     string
}

func (c *Cache) GetVariants(ctx context.Context, assetID string) (model.Variants, error) {
	c.GetCalled = true
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	return c.VariantsOut, nil
}

func (c *Cache) SetVariants(ctx context.Context, assetID string, variants model.Variants) {
	c.SetCalled = true
	c.Stored = variants
}

func (c *Cache) DeleteVariants(ctx context.Context, assetID string) error {
	c.DelCalled = true
	c.DelID = assetID
	return c.DelErr
}
