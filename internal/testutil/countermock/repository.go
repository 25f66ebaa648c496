package countermock

import (
	"context"
	"sync"
)

// Repo allocates monotonically increasing id blocks per counter name,
// starting at 1. Set AllocateBlockFn to override.
type Repo struct {
	AllocateBlockFn func(ctx context.Context, name string, n uint64) (uint64, error)

	mu   sync.Mutex
	next map[string]uint64
}

func (m *Repo) AllocateBlock(ctx context.Context, name string, n uint64) (uint64, error) {
	if m.AllocateBlockFn != nil {
		return m.AllocateBlockFn(ctx, name, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == nil {
		m.next = map[string]uint64{}
	}
	if m.next[name] == 0 {
		m.next[name] = 1
	}
	first := m.next[name]
	m.next[name] += n
	return first, nil
}
