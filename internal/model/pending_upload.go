package model

import "time"

// PendingUpload is a variant a client was given a presigned link for.
// It becomes part of the Asset once the upload is finalised.
type PendingUpload struct {
	AssetID          string    `json:"asset_id"`
	Bitrate          int       `json:"bitrate"`
	Extension        string    `json:"extension"`
	OriginalFilename string    `json:"original_filename"`
	CreatedAt        time.Time `json:"created_at"`
}
