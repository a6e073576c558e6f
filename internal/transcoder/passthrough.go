// Package transcoder turns one uploaded audio buffer into per-bitrate variants.
package transcoder

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// Passthrough stores the source bytes under every bitrate key unchanged.
type Passthrough struct{}

// compile-time check: *Passthrough must satisfy port.Transcoder
var _ port.Transcoder = (*Passthrough)(nil)

func NewPassthrough() *Passthrough { return &Passthrough{} }

func (p *Passthrough) Transcode(_ context.Context, data []byte, _ string, _ int) ([]byte, error) {
	return data, nil
}
