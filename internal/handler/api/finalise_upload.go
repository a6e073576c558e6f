package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
	"github.com/fhuszti/music-delivery-ms-go/internal/validation"
)

type FinaliseUploadRequest struct {
	Bitrate int `json:"bitrate" validate:"required,gt=0"`
}

// FinaliseUploadHandler adds a variant uploaded through a presigned link to its track.
func FinaliseUploadHandler(svc port.UploadFinaliser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		var req FinaliseUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if fields := validation.FieldErrors(validation.ValidateStruct(req)); fields != nil {
			logger.Warnf(r.Context(), "⚠️  Finalise request rejected: %v", fields)
			RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
			return
		}

		asset, err := svc.FinaliseUpload(r.Context(), port.FinaliseUploadInput{AssetID: id, Bitrate: req.Bitrate})
		if err != nil {
			switch {
			case errors.Is(err, delivery.ErrStorageUnavailable):
				WriteError(w, http.StatusServiceUnavailable, "Storage is not available", nil)
			case errors.Is(err, track.ErrUploadNotFound):
				WriteError(w, http.StatusNotFound, "No upload link was issued for this variant", nil)
			case errors.Is(err, delivery.ErrObjectNotFound):
				WriteError(w, http.StatusConflict, "File has not been uploaded yet", nil)
			case errors.Is(err, track.ErrFormatConflict):
				WriteError(w, http.StatusConflict, "Track is stored in another format", err)
			case errors.Is(err, delivery.ErrUploadRejected):
				WriteError(w, http.StatusUnprocessableEntity, "Uploaded file was rejected", err)
			case errors.Is(err, delivery.ErrInvalidBitrate):
				WriteError(w, http.StatusBadRequest, "Invalid bitrate", err)
			default:
				WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Could not finalise upload of track #%s", id), err)
			}
			return
		}

		RespondJSON(w, http.StatusOK, UploadAudioResponse{
			ID:        asset.ID,
			Extension: asset.Extension,
			Variants:  asset.Variants,
		})
		logger.Infof(r.Context(), "✅  Successfully finalised the %d kbps upload of track #%s", req.Bitrate, id)
	}
}
