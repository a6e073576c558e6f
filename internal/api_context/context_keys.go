package api_context

import (
	"context"
)

type ctxKey string

const (
	IDKey         ctxKey = "id"
	AuthUserIDKey ctxKey = "authUserID"
	AuthRolesKey  ctxKey = "authRoles"
	AuthTierKey   ctxKey = "authTier"
	UploadDataKey ctxKey = "uploadData"
	UploadMimeKey ctxKey = "uploadMime"
	UploadNameKey ctxKey = "uploadName"
)

// IDFromContext returns the track asset id set by the WithAssetID middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(IDKey).(string)
	return id, ok
}

func AuthUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(string)
	return id, ok
}

func AuthRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(AuthRolesKey).([]string)
	return roles, ok
}

// AuthTierFromContext returns the subscription tier claim of the caller.
func AuthTierFromContext(ctx context.Context) (string, bool) {
	tier, ok := ctx.Value(AuthTierKey).(string)
	return tier, ok
}

// UploadFromContext returns the file accepted by the upload gate.
func UploadFromContext(ctx context.Context) (data []byte, mimeType, filename string, ok bool) {
	data, ok = ctx.Value(UploadDataKey).([]byte)
	if !ok {
		return nil, "", "", false
	}
	mimeType, _ = ctx.Value(UploadMimeKey).(string)
	filename, _ = ctx.Value(UploadNameKey).(string)
	return data, mimeType, filename, true
}
