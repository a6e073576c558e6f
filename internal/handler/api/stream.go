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

func StreamHandler(svc port.StreamResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}
		// no tier claim means the lowest tier
		tier, _ := api_context.AuthTierFromContext(r.Context())

		out, err := svc.ResolveStream(r.Context(), port.ResolveStreamInput{AssetID: id, Tier: tier})
		if err != nil {
			if errors.Is(err, track.ErrAssetNotFound) || errors.Is(err, delivery.ErrNoVariantsAvailable) {
				WriteError(w, http.StatusNotFound, "Track not found", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not resolve stream", err)
			return
		}

		w.Header().Set("Cache-Control", "private, max-age=60")
		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Resolved %s stream for track #%s", out.Tier, id)
	}
}
