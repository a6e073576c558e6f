package transcoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// FFmpeg re-encodes through an ffmpeg binary, keeping the source container.
// Lossless containers (wav, flac) ignore the target bitrate.
type FFmpeg struct {
	binary string
}

// compile-time check: *FFmpeg must satisfy port.Transcoder
var _ port.Transcoder = (*FFmpeg)(nil)

func NewFFmpeg(binary string) *FFmpeg {
	return &FFmpeg{binary: binary}
}

func (f *FFmpeg) Transcode(ctx context.Context, data []byte, mimeType string, bitrate int) ([]byte, error) {
	if bitrate <= 0 {
		return nil, fmt.Errorf("transcode: %w: %d", delivery.ErrInvalidBitrate, bitrate)
	}
	ext, err := delivery.MimeTypeToExtension(mimeType)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "transcode-*")
	if err != nil {
		return nil, fmt.Errorf("transcode: create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warnf(ctx, "could not remove temp dir %q: %v", dir, err)
		}
	}()

	source := filepath.Join(dir, "source."+ext)
	dest := filepath.Join(dir, fmt.Sprintf("out-%d.%s", bitrate, ext))
	if err := os.WriteFile(source, data, 0o600); err != nil {
		return nil, fmt.Errorf("transcode: write source: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.binary, ffmpegArgs(source, dest, bitrate)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode: %w: %s", err, strings.TrimSpace(string(output)))
	}

	out, err := os.ReadFile(dest)
	if err != nil {
		return nil, fmt.Errorf("transcode: read output: %w", err)
	}
	return out, nil
}

func ffmpegArgs(source, dest string, bitrate int) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-map_metadata", "0",
		"-b:a", fmt.Sprintf("%dk", bitrate),
		dest,
	}
}
