package track

import "errors"

var (
	ErrAssetNotFound  = errors.New("track: asset not found")
	ErrUploadNotFound = errors.New("track: no upload link was issued for that variant")
	ErrFormatConflict = errors.New("track: asset is stored in another format")
)
