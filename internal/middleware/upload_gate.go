package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	"github.com/gabriel-vasile/mimetype"
)

const (
	uploadFormField = "file"
	// room for the multipart boundaries and the other form fields
	multipartOverhead = 1 << 20
	maxMemory         = 32 << 20
)

// WithUploadGate reads the multipart "file" field, enforces the size limit and
// sniffs the content type before the upload handler runs.
func WithUploadGate(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
			if err := r.ParseMultipartForm(maxMemory); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					api.WriteError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
					return
				}
				api.WriteError(w, http.StatusBadRequest, "Invalid multipart form", err)
				return
			}

			file, header, err := r.FormFile(uploadFormField)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, "file is required", err)
				return
			}
			defer file.Close()

			if header.Size > maxBytes {
				api.WriteError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
				return
			}
			data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, "Could not read file", err)
				return
			}
			if int64(len(data)) > maxBytes {
				api.WriteError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
				return
			}
			if len(data) == 0 {
				api.WriteError(w, http.StatusBadRequest, "file is empty", nil)
				return
			}

			detected := mimetype.Detect(data)
			mimeType, ok := allowedMimeType(detected)
			if !ok {
				api.WriteError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported media type %q", detected.String()), nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.UploadDataKey, data)
			ctx = context.WithValue(ctx, api_context.UploadMimeKey, mimeType)
			ctx = context.WithValue(ctx, api_context.UploadNameKey, header.Filename)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// allowedMimeType walks the detected type and its parents until one of the
// accepted audio types matches.
func allowedMimeType(mt *mimetype.MIME) (string, bool) {
	for m := mt; m != nil; m = m.Parent() {
		for _, allowed := range delivery.AllowedMimeTypes {
			if m.Is(allowed) {
				return allowed, true
			}
		}
	}
	return "", false
}
