package mock

import (
	"context"
)

// MockDispatcher implements task dispatching for tests.
type MockDispatcher struct {
	InvalidateCalled bool
	InvalidateIDs    []string
	InvalidatePaths  [][]string
	InvalidateErr    error
}

func (m *MockDispatcher) EnqueueInvalidation(ctx context.Context, assetID string, paths []string) error {
	m.InvalidateCalled = true
	m.InvalidateIDs = append(m.InvalidateIDs, assetID)
	m.InvalidatePaths = append(m.InvalidatePaths, paths)
	return m.InvalidateErr
}
