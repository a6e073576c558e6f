package mock

import (
	"context"
	"sync"
)

// CDN implements port.CDN for tests.
type CDN struct {
	mu sync.Mutex

	Err error

	Calls            int
	CallerReferences []string
	Paths            [][]string
}

func (c *CDN) Invalidate(ctx context.Context, callerReference string, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	c.CallerReferences = append(c.CallerReferences, callerReference)
	c.Paths = append(c.Paths, append([]string(nil), paths...))
	return c.Err
}
