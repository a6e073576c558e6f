package cdn

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// Noop is used when no distribution is configured, URLs then point at the bucket.
type Noop struct{}

// compile-time check: *Noop must satisfy port.CDN
var _ port.CDN = (*Noop)(nil)

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Invalidate(context.Context, string, []string) error { return nil }
