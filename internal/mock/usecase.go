package mock

import (
	"context"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

// Delivery implements port.MediaDelivery for tests.
type Delivery struct {
	Available bool

	BitratesOut  []int
	VariantsOut  model.Variants
	StreamURLOut string
	PresignOut   string
	VerifyOut    port.UploadedVariant

	UploadErr     error
	StreamErr     error
	DeleteErr     error
	InvalidateErr error
	PresignErr    error
	VerifyErr     error

	UploadCalled     bool
	UploadBitrates   []int
	StreamTier       string
	DeleteCalled     bool
	DeleteExtension  string
	DeleteBitrates   []int
	DeleteCalls      map[string][]int
	InvalidateCalled bool
	InvalidatePaths  []string
	PresignCalled    bool
	PresignFilename  string
	PresignBitrate   int
	VerifyCalled     bool
	VerifyExtension  string
	VerifyBitrate    int
}

func (m *Delivery) IsAvailable() bool { return m.Available }

func (m *Delivery) Bitrates() []int { return m.BitratesOut }

func (m *Delivery) UploadMusicFile(ctx context.Context, data []byte, mimeType, originalFilename, assetID string, bitrates ...int) (model.Variants, error) {
	m.UploadCalled = true
	m.UploadBitrates = bitrates
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	return m.VariantsOut, nil
}

func (m *Delivery) GetStreamingURL(variants model.Variants, tier string) (string, error) {
	m.StreamTier = tier
	return m.StreamURLOut, m.StreamErr
}

func (m *Delivery) DeleteMusicFile(ctx context.Context, assetID, extension string, bitrates ...int) error {
	m.DeleteCalled = true
	m.DeleteExtension = extension
	m.DeleteBitrates = bitrates
	if m.DeleteCalls == nil {
		m.DeleteCalls = map[string][]int{}
	}
	m.DeleteCalls[extension] = bitrates
	return m.DeleteErr
}

func (m *Delivery) InvalidateAsset(ctx context.Context, assetID string, paths []string) error {
	m.InvalidateCalled = true
	m.InvalidatePaths = paths
	return m.InvalidateErr
}

func (m *Delivery) GetPresignedUploadURL(ctx context.Context, assetID, filename string, bitrate int) (string, error) {
	m.PresignCalled = true
	m.PresignFilename = filename
	m.PresignBitrate = bitrate
	return m.PresignOut, m.PresignErr
}

func (m *Delivery) VerifyUploadedVariant(ctx context.Context, assetID, extension string, bitrate int) (port.UploadedVariant, error) {
	m.VerifyCalled = true
	m.VerifyExtension = extension
	m.VerifyBitrate = bitrate
	if m.VerifyErr != nil {
		return port.UploadedVariant{}, m.VerifyErr
	}
	return m.VerifyOut, nil
}

// MockTrackUploader implements port.TrackUploader for tests.
type MockTrackUploader struct {
	Out    *model.Asset
	Err    error
	Called bool
	In     port.UploadTrackInput
}

func (m *MockTrackUploader) UploadTrack(ctx context.Context, in port.UploadTrackInput) (*model.Asset, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockStreamResolver implements port.StreamResolver for tests.
type MockStreamResolver struct {
	Out    port.ResolveStreamOutput
	Err    error
	Called bool
	In     port.ResolveStreamInput
}

func (m *MockStreamResolver) ResolveStream(ctx context.Context, in port.ResolveStreamInput) (port.ResolveStreamOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockTrackDeleter implements port.TrackDeleter for tests.
type MockTrackDeleter struct {
	Out    port.DeleteTrackOutput
	Err    error
	Called bool
	ID     string
}

func (m *MockTrackDeleter) DeleteTrack(ctx context.Context, assetID string) (port.DeleteTrackOutput, error) {
	m.Called = true
	m.ID = assetID
	return m.Out, m.Err
}

// MockUploadLinkGenerator implements port.UploadLinkGenerator for tests.
type MockUploadLinkGenerator struct {
	Out    port.GenerateUploadLinkOutput
	Err    error
	Called bool
	In     port.GenerateUploadLinkInput
}

func (m *MockUploadLinkGenerator) GenerateUploadLink(ctx context.Context, in port.GenerateUploadLinkInput) (port.GenerateUploadLinkOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockUploadFinaliser implements port.UploadFinaliser for tests.
type MockUploadFinaliser struct {
	Out    *model.Asset
	Err    error
	Called bool
	In     port.FinaliseUploadInput
}

func (m *MockUploadFinaliser) FinaliseUpload(ctx context.Context, in port.FinaliseUploadInput) (*model.Asset, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockCDNInvalidator implements port.CDNInvalidator for tests.
type MockCDNInvalidator struct {
	Err    error
	Called bool
	ID     string
	Paths  []string
}

func (m *MockCDNInvalidator) InvalidateCDN(ctx context.Context, assetID string, paths []string) error {
	m.Called = true
	m.ID = assetID
	m.Paths = paths
	return m.Err
}
