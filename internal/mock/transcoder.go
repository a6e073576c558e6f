package mock

import (
	"context"
	"fmt"
	"sync"
)

// Transcoder implements port.Transcoder for tests, tagging the output with the bitrate.
type Transcoder struct {
	mu sync.Mutex

	Err  error
	Seen []int
}

func (t *Transcoder) Transcode(ctx context.Context, data []byte, mimeType string, bitrate int) ([]byte, error) {
	t.mu.Lock()
	t.Seen = append(t.Seen, bitrate)
	t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}
	return append([]byte(fmt.Sprintf("%dk:", bitrate)), data...), nil
}
