package api

import (
	"errors"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
)

// DeleteTrackHandler deletes a track by ID.
func DeleteTrackHandler(svc port.TrackDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		out, err := svc.DeleteTrack(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, track.ErrAssetNotFound):
				WriteError(w, http.StatusNotFound, "Track not found", nil)
			case errors.Is(err, delivery.ErrStorageUnavailable):
				WriteError(w, http.StatusServiceUnavailable, "Storage is not available", nil)
			default:
				WriteError(w, http.StatusInternalServerError, "Failed to delete track", err)
			}
			return
		}

		if len(out.Warnings) > 0 {
			RespondJSON(w, http.StatusOK, out)
			logger.Warnf(r.Context(), "⚠️  Deleted track #%s with %d warnings", id, len(out.Warnings))
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully deleted track #%s", id)
	}
}
