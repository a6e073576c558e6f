package api

import (
	"net/http"
)

type HealthResponse struct {
	StorageAvailable bool `json:"storage_available"`
}

// HealthHandler reports whether the object store is configured. The service
// keeps serving without it.
func HealthHandler(available func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		RespondJSON(w, http.StatusOK, HealthResponse{StorageAvailable: available()})
	}
}
