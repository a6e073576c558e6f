package cache

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// Noop never hits; every stream lookup goes to the database.
type Noop struct{}

var _ port.VariantCache = Noop{}

func NewNoop() Noop { return Noop{} }

func (Noop) GetVariants(context.Context, string) (model.Variants, error) { return nil, nil }

func (Noop) SetVariants(context.Context, string, model.Variants) {}

func (Noop) DeleteVariants(context.Context, string) error { return nil }
