package mock

import (
	"context"
	"database/sql"
	"sync"

	"github.com/fhuszti/music-delivery-ms-go/internal/model"
)

// AssetRepo implements port.AssetRepository for tests.
type AssetRepo struct {
	AssetRecord *model.Asset

	GetErr    error
	SaveErr   error
	DeleteErr error

	GetCalled    bool
	Saved        *model.Asset
	DeleteCalled bool
	DeletedID    string
}

func (m *AssetRepo) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.AssetRecord, nil
}

func (m *AssetRepo) Save(ctx context.Context, asset *model.Asset) error {
	m.Saved = asset
	return m.SaveErr
}

func (m *AssetRepo) Delete(ctx context.Context, id string) error {
	m.DeleteCalled = true
	m.DeletedID = id
	return m.DeleteErr
}

// MemoryAssetRepo is an in-memory port.AssetRepository that keeps what it is given.
type MemoryAssetRepo struct {
	mu     sync.Mutex
	Assets map[string]*model.Asset
}

func (m *MemoryAssetRepo) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Assets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	cp.Variants = make(model.Variants, len(a.Variants))
	for b, u := range a.Variants {
		cp.Variants[b] = u
	}
	return &cp, nil
}

func (m *MemoryAssetRepo) Save(ctx context.Context, asset *model.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Assets == nil {
		m.Assets = map[string]*model.Asset{}
	}
	cp := *asset
	m.Assets[asset.ID] = &cp
	return nil
}

func (m *MemoryAssetRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Assets, id)
	return nil
}
