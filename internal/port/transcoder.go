package port

import "context"

// Transcoder re-encodes an audio buffer to the given bitrate (kbps).
type Transcoder interface {
	Transcode(ctx context.Context, data []byte, mimeType string, bitrate int) ([]byte, error)
}
