package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
	"github.com/fhuszti/music-delivery-ms-go/internal/validation"
)

type GenerateUploadLinkRequest struct {
	ID       string `json:"id" validate:"omitempty,assetid"`
	Filename string `json:"filename" validate:"required,max=255,filename"`
	Bitrate  int    `json:"bitrate" validate:"required,gt=0"`
}

// ValidationErrorResponse lists each rejected field with the rule it broke.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func GenerateUploadLinkHandler(svc port.UploadLinkGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateUploadLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}

		if fields := validation.FieldErrors(validation.ValidateStruct(req)); fields != nil {
			logger.Warnf(r.Context(), "⚠️  Upload link request rejected: %v", fields)
			RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
			return
		}

		in := port.GenerateUploadLinkInput{AssetID: req.ID, Filename: req.Filename, Bitrate: req.Bitrate}
		out, err := svc.GenerateUploadLink(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, delivery.ErrStorageUnavailable):
				WriteError(w, http.StatusServiceUnavailable, "Storage is not available", nil)
			case errors.Is(err, delivery.ErrInvalidBitrate), errors.Is(err, delivery.ErrUnsupportedFormat):
				WriteError(w, http.StatusBadRequest, "Invalid request", err)
			case errors.Is(err, track.ErrFormatConflict):
				WriteError(w, http.StatusConflict, "Track is stored in another format", err)
			default:
				WriteError(w, http.StatusInternalServerError, "Could not generate upload link", err)
			}
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		logger.Infof(r.Context(), "✅  Successfully generated upload link for track #%s", out.ID)
	}
}
