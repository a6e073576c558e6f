package port

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// MediaDelivery is the tiered media storage service as seen by the use cases.
type MediaDelivery interface {
	IsAvailable() bool
	Bitrates() []int
	UploadMusicFile(ctx context.Context, data []byte, mimeType, originalFilename, assetID string, bitrates ...int) (model.Variants, error)
	GetStreamingURL(variants model.Variants, tier string) (string, error)
	DeleteMusicFile(ctx context.Context, assetID, extension string, bitrates ...int) error
	InvalidateAsset(ctx context.Context, assetID string, paths []string) error
	GetPresignedUploadURL(ctx context.Context, assetID, filename string, bitrate int) (string, error)
	VerifyUploadedVariant(ctx context.Context, assetID, extension string, bitrate int) (UploadedVariant, error)
}

// UploadedVariant describes an object a client wrote through a presigned link.
type UploadedVariant struct {
	URL         string
	ContentType string
	Size        int64
}

// TrackUploader stores the audio variants of a track and records them.
type TrackUploader interface {
	UploadTrack(ctx context.Context, in UploadTrackInput) (*model.Asset, error)
}
type UploadTrackInput struct {
	AssetID  string
	Data     []byte
	MimeType string
	Filename string
	Bitrates []int
}

// StreamResolver returns the URL a listener should stream a track from.
type StreamResolver interface {
	ResolveStream(ctx context.Context, in ResolveStreamInput) (ResolveStreamOutput, error)
}
type ResolveStreamInput struct {
	AssetID string
	Tier    string
}
type ResolveStreamOutput struct {
	URL  string `json:"url"`
	Tier string `json:"tier"`
}

// TrackDeleter removes every audio variant of a track.
type TrackDeleter interface {
	DeleteTrack(ctx context.Context, assetID string) (DeleteTrackOutput, error)
}
type DeleteTrackOutput struct {
	Warnings []string `json:"warnings,omitempty"`
}

// UploadLinkGenerator returns a presigned link to upload one variant directly.
type UploadLinkGenerator interface {
	GenerateUploadLink(ctx context.Context, in GenerateUploadLinkInput) (GenerateUploadLinkOutput, error)
}
type GenerateUploadLinkInput struct {
	AssetID  string
	Filename string
	Bitrate  int
}
type GenerateUploadLinkOutput struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UploadFinaliser turns a variant uploaded through a presigned link into part of the track.
type UploadFinaliser interface {
	FinaliseUpload(ctx context.Context, in FinaliseUploadInput) (*model.Asset, error)
}
type FinaliseUploadInput struct {
	AssetID string
	Bitrate int
}

// CDNInvalidator re-issues a failed CDN invalidation.
type CDNInvalidator interface {
	InvalidateCDN(ctx context.Context, assetID string, paths []string) error
}
