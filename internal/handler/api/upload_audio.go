package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type UploadAudioResponse struct {
	ID        string         `json:"id"`
	Extension string         `json:"extension"`
	Variants  model.Variants `json:"variants"`
}

// UploadAudioHandler stores the file accepted by the upload gate under every requested bitrate.
func UploadAudioHandler(svc port.TrackUploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}
		data, mimeType, filename, ok := api_context.UploadFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "file is required", nil)
			return
		}

		bitrates, err := parseBitrates(r.FormValue("bitrates"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid bitrates", err)
			return
		}

		asset, err := svc.UploadTrack(r.Context(), port.UploadTrackInput{
			AssetID:  id,
			Data:     data,
			MimeType: mimeType,
			Filename: filename,
			Bitrates: bitrates,
		})
		if err != nil {
			switch {
			case errors.Is(err, delivery.ErrStorageUnavailable):
				WriteError(w, http.StatusServiceUnavailable, "Storage is not available", nil)
			case errors.Is(err, delivery.ErrInvalidBitrate):
				WriteError(w, http.StatusBadRequest, "Invalid bitrates", err)
			case errors.Is(err, delivery.ErrUnsupportedFormat):
				WriteError(w, http.StatusBadRequest, "Unsupported audio format", err)
			default:
				WriteError(w, http.StatusInternalServerError, "Upload failed", err)
			}
			return
		}

		RespondJSON(w, http.StatusCreated, UploadAudioResponse{
			ID:        asset.ID,
			Extension: asset.Extension,
			Variants:  asset.Variants,
		})
		logger.Infof(r.Context(), "✅  Successfully uploaded %d variants of track #%s", len(asset.Variants), asset.ID)
	}
}

// parseBitrates reads an optional comma separated list of kbps values.
func parseBitrates(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		b, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("bitrate %q is not a positive integer", p)
		}
		out = append(out, b)
	}
	return out, nil
}
