package delivery

import (
	"errors"
	"testing"
)

func TestFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		mimeType string
		want     string
		wantErr  error
	}{
		{"song.mp3", "audio/mpeg", "mp3", nil},
		{"Song.FLAC", "audio/mpeg", "flac", nil},
		{"take 2.wav", "", "wav", nil},
		{"no-extension", "audio/x-m4a", "m4a", nil},
		{"", "audio/ogg", "ogg", nil},
		{"weird.m?3", "audio/aac", "aac", nil},
		{"", "application/pdf", "", ErrUnsupportedFormat},
		{"", "", "", ErrUnsupportedFormat},
	}
	for _, tc := range tests {
		t.Run(tc.filename+"|"+tc.mimeType, func(t *testing.T) {
			got, err := FileExtension(tc.filename, tc.mimeType)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v; want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ext = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestIsMimeTypeAllowed(t *testing.T) {
	for _, m := range AllowedMimeTypes {
		if !IsMimeTypeAllowed(m) {
			t.Errorf("%q should be allowed", m)
		}
		if _, err := MimeTypeToExtension(m); err != nil {
			t.Errorf("%q has no extension: %v", m, err)
		}
	}
	for _, m := range []string{"image/png", "application/pdf", "video/mp4", ""} {
		if IsMimeTypeAllowed(m) {
			t.Errorf("%q should not be allowed", m)
		}
	}
}
