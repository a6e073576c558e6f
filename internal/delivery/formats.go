package delivery

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

const MaxFileSize = 50 * 1024 * 1024 // 50 MB

// AllowedMimeTypes lists the audio types accepted by the upload gate.
var AllowedMimeTypes = []string{
	"audio/mpeg",
	"audio/wav",
	"audio/x-wav",
	"audio/flac",
	"audio/x-flac",
	"audio/aac",
	"audio/ogg",
	"audio/mp4",
	"audio/x-m4a",
}

var extensionsByMimeType = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/wav":    "wav",
	"audio/x-wav":  "wav",
	"audio/flac":   "flac",
	"audio/x-flac": "flac",
	"audio/aac":    "aac",
	"audio/ogg":    "ogg",
	"audio/mp4":    "m4a",
	"audio/x-m4a":  "m4a",
}

var mimeTypesByExtension = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"aac":  "audio/aac",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
}

var extensionRe = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

func IsMimeTypeAllowed(mimeType string) bool {
	for _, m := range AllowedMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// MimeTypeToExtension returns the extension (without dot) used for a given audio type.
func MimeTypeToExtension(mimeType string) (string, error) {
	if ext, ok := extensionsByMimeType[strings.ToLower(mimeType)]; ok {
		return ext, nil
	}
	return "", fmt.Errorf("%w: mime type %q", ErrUnsupportedFormat, mimeType)
}

// FileExtension takes the extension from the original filename, falling back to the mime type.
func FileExtension(filename, mimeType string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strings.TrimSpace(filename)), "."))
	if extensionRe.MatchString(ext) {
		return ext, nil
	}
	return MimeTypeToExtension(mimeType)
}

// ExtensionToMimeType is the reverse of MimeTypeToExtension for the extensions objects are stored under.
func ExtensionToMimeType(ext string) (string, error) {
	if m, ok := mimeTypesByExtension[normalizeExtension(ext)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
}

// normalizeExtension lower-cases ext, drops a leading dot and defaults to mp3.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return DefaultExtension
	}
	return ext
}
