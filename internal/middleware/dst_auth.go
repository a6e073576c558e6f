package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/api_context"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenIssuer   = "core"
	tokenAudience = "music-delivery"
	// tolerated clock skew on iat
	iatLeeway = 30 * time.Second
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errUnauthorized  = errors.New("unauthorized")
	errBadIssuer     = errors.New("bad issuer")
	errBadAudience   = errors.New("bad audience")
	errExpired       = errors.New("token expired")
	errInvalidIat    = errors.New("invalid iat")
	errMissingSub    = errors.New("missing sub")
)

// identity is what a valid token says about the caller.
type identity struct {
	userID string
	roles  []string
	// empty when the claim is absent; resolved to the lowest tier downstream
	tier string
}

// WithDSTAuth validates a short-lived Bearer JWT (DST only) and stashes the
// caller's id, roles and subscription tier in the request context.
// An empty key disables authentication.
func WithDSTAuth(jwtPublicKeyPEM string) func(http.Handler) http.Handler {
	if jwtPublicKeyPEM == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(jwtPublicKeyPEM))
	if err != nil {
		panic(fmt.Sprintf("invalid Core RSA public key: %v", err))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		// time claims are checked in authenticate, with leeway on iat
		jwt.WithoutClaimsValidation(),
	)
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return pubKey, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticate(parser, keyFunc, r.Header.Get("Authorization"), time.Now())
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, err.Error(), nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.AuthUserIDKey, id.userID)
			ctx = context.WithValue(ctx, api_context.AuthRolesKey, id.roles)
			ctx = context.WithValue(ctx, api_context.AuthTierKey, id.tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(parser *jwt.Parser, keyFunc jwt.Keyfunc, header string, now time.Time) (identity, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return identity{}, errMissingBearer
	}

	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
	if err != nil || !tok.Valid {
		return identity{}, errUnauthorized
	}

	switch {
	case !claims.VerifyIssuer(tokenIssuer, true):
		return identity{}, errBadIssuer
	case !claims.VerifyAudience(tokenAudience, true):
		return identity{}, errBadAudience
	case !claims.VerifyExpiresAt(now.Unix(), true):
		return identity{}, errExpired
	case !claims.VerifyNotBefore(now.Unix(), false):
		return identity{}, errUnauthorized
	}
	if iat, ok := asInt64(claims["iat"]); ok && time.Unix(iat, 0).After(now.Add(iatLeeway)) {
		return identity{}, errInvalidIat
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return identity{}, errMissingSub
	}
	tier, _ := claims["tier"].(string)

	return identity{userID: sub, roles: toStringSlice(claims["roles"]), tier: tier}, nil
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
