package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError answers with {"error": msg}. err is only logged, never sent to the client.
func WriteError(w http.ResponseWriter, status int, msg string, err error) {
	ctx := context.Background()
	switch {
	case status >= http.StatusInternalServerError && err != nil:
		logger.Errorf(ctx, "❌  %s: %v", msg, err)
	case status >= http.StatusInternalServerError:
		logger.Error(ctx, "❌  "+msg)
	case err != nil:
		logger.Warnf(ctx, "⚠️  %s: %v", msg, err)
	default:
		logger.Warn(ctx, "⚠️  "+msg)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, status, ErrorResponse{Error: msg})
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to encode JSON response: %v", err)
	}
}

// NotFoundHandler and MethodNotAllowedHandler keep chi's fallbacks in the
// same JSON shape as every other error.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusNotFound, ErrorResponse{Error: "No route for " + r.URL.Path})
	}
}

func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: r.Method + " is not supported on " + r.URL.Path})
	}
}
