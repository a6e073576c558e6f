package testutil

import (
	"bytes"
)

// FakeMP3 returns size bytes that sniff as audio/mpeg: an ID3v2 header
// followed by zero padding.
func FakeMP3(size int) []byte {
	header := []byte("ID3\x03\x00\x00\x00\x00\x00\x0a")
	if size < len(header) {
		size = len(header)
	}
	return append(header, bytes.Repeat([]byte{0}, size-len(header))...)
}
