package middleware

import (
	"fmt"
	"net/http"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
)

// WithRoles only lets through callers whose token carries one of roles. It runs
// after WithDSTAuth and, like it, is disabled by an empty key.
func WithRoles(jwtPublicKeyPEM string, roles ...string) func(http.Handler) http.Handler {
	if jwtPublicKeyPEM == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held, _ := api_context.AuthRolesFromContext(r.Context())
			for _, role := range held {
				if _, ok := allowed[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			userID, _ := api_context.AuthUserIDFromContext(r.Context())
			api.WriteError(w, http.StatusForbidden, "Forbidden",
				fmt.Errorf("user %q has roles %v, %s %s needs one of %v", userID, held, r.Method, r.URL.Path, roles))
		})
	}
}
