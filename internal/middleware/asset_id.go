package middleware

import (
	"context"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	"github.com/fhuszti/music-delivery-ms-go/internal/validation"
	"github.com/go-chi/chi/v5"
)

// WithAssetID checks the {id} route segment is usable as an object key
// component and stores it under api_context.IDKey.
func WithAssetID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch id := chi.URLParam(r, "id"); {
			case id == "":
				api.WriteError(w, http.StatusBadRequest, "Track id is required", nil)
			case !validation.IsValidAssetID(id):
				api.WriteError(w, http.StatusBadRequest, "Track id may only contain letters, digits, '-' and '_' (max 128)", nil)
			default:
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), api_context.IDKey, id)))
			}
		})
	}
}
