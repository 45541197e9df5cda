package repo

import (
	"context"
	"sync"
)

// Memory keeps registrations for the lifetime of the process.
type Memory struct {
	mu   sync.RWMutex
	seen map[string]struct{} // 幂等检查
	list []Registration
}

func NewMemory() *Memory {
	return &Memory{seen: map[string]struct{}{}}
}

func (m *Memory) Save(ctx context.Context, r Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[r.TxHash]; ok {
		return nil
	}
	m.seen[r.TxHash] = struct{}{}
	m.list = append(m.list, r)
	return nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.list)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Registration, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.list[i])
	}
	return out, nil
}
