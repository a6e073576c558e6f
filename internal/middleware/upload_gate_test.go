package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
)

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.WriteField("bitrates", "128,320"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestWithUploadGate(t *testing.T) {
	mp3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x0a"), bytes.Repeat([]byte{0}, 64)...)
	flac := append([]byte("fLaC\x00\x00\x00\x22"), bytes.Repeat([]byte{0}, 64)...)

	tests := []struct {
		name           string
		field          string
		filename       string
		data           []byte
		maxBytes       int64
		rawBody        string
		wantStatus     int
		expectNextCall bool
		wantMime       string
	}{
		{name: "mp3", field: "file", filename: "song.mp3", data: mp3, maxBytes: 1024, wantStatus: http.StatusNoContent, expectNextCall: true, wantMime: "audio/mpeg"},
		{name: "flac", field: "file", filename: "song.flac", data: flac, maxBytes: 1024, wantStatus: http.StatusNoContent, expectNextCall: true, wantMime: "audio/flac"},
		{name: "text file", field: "file", filename: "notes.mp3", data: []byte("hello world, not audio"), maxBytes: 1024, wantStatus: http.StatusUnsupportedMediaType},
		{name: "too large", field: "file", filename: "song.mp3", data: mp3, maxBytes: 16, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "missing file field", maxBytes: 1024, wantStatus: http.StatusBadRequest},
		{name: "empty file", field: "file", filename: "song.mp3", data: []byte{}, maxBytes: 1024, wantStatus: http.StatusBadRequest},
		{name: "not multipart", rawBody: `{"file":"x"}`, maxBytes: 1024, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nextCalled := false
			var gotData []byte
			var gotMime, gotName, gotBitrates string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotData, gotMime, gotName, _ = api_context.UploadFromContext(r.Context())
				gotBitrates = r.FormValue("bitrates")
				w.WriteHeader(http.StatusNoContent)
			})

			var req *http.Request
			if tc.rawBody != "" {
				req = httptest.NewRequest(http.MethodPost, "/tracks/x/audio", strings.NewReader(tc.rawBody))
				req.Header.Set("Content-Type", "application/json")
			} else {
				body, contentType := multipartBody(t, tc.field, tc.filename, tc.data)
				req = httptest.NewRequest(http.MethodPost, "/tracks/x/audio", body)
				req.Header.Set("Content-Type", contentType)
			}
			rec := httptest.NewRecorder()

			WithUploadGate(tc.maxBytes)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body=%q)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if nextCalled != tc.expectNextCall {
				t.Fatalf("nextCalled = %v; want %v", nextCalled, tc.expectNextCall)
			}
			if !tc.expectNextCall {
				return
			}
			if !bytes.Equal(gotData, tc.data) {
				t.Errorf("data len = %d; want %d", len(gotData), len(tc.data))
			}
			if gotMime != tc.wantMime {
				t.Errorf("mime = %q; want %q", gotMime, tc.wantMime)
			}
			if gotName != tc.filename {
				t.Errorf("filename = %q; want %q", gotName, tc.filename)
			}
			if gotBitrates != "128,320" {
				t.Errorf("bitrates field = %q; want %q", gotBitrates, "128,320")
			}
		})
	}
}
