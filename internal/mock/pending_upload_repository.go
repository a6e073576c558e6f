package mock

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// PendingUploads implements port.PendingUploadRepository in memory for tests.
type PendingUploads struct {
	mu sync.Mutex

	Rows []model.PendingUpload

	SaveErr   error
	GetErr    error
	ListErr   error
	DeleteErr error

	SaveCalled     bool
	DeleteCalled   bool
	DeletedByAsset string
}

func (m *PendingUploads) Save(ctx context.Context, p *model.PendingUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalled = true
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.remove(p.AssetID, p.Bitrate)
	m.Rows = append(m.Rows, *p)
	return nil
}

func (m *PendingUploads) Get(ctx context.Context, assetID string, bitrate int) (*model.PendingUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, p := range m.Rows {
		if p.AssetID == assetID && p.Bitrate == bitrate {
			cp := p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *PendingUploads) ListByAsset(ctx context.Context, assetID string) ([]model.PendingUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []model.PendingUpload
	for _, p := range m.Rows {
		if p.AssetID == assetID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bitrate < out[j].Bitrate })
	return out, nil
}

func (m *PendingUploads) Delete(ctx context.Context, assetID string, bitrate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalled = true
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.remove(assetID, bitrate)
	return nil
}

func (m *PendingUploads) DeleteByAsset(ctx context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedByAsset = assetID
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	kept := m.Rows[:0]
	for _, p := range m.Rows {
		if p.AssetID != assetID {
			kept = append(kept, p)
		}
	}
	m.Rows = kept
	return nil
}

func (m *PendingUploads) remove(assetID string, bitrate int) {
	kept := m.Rows[:0]
	for _, p := range m.Rows {
		if p.AssetID != assetID || p.Bitrate != bitrate {
			kept = append(kept, p)
		}
	}
	m.Rows = kept
}
