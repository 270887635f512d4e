package cart

import "sync"

// MemoryPersistence 进程内持久化，用于测试与无状态客户端
type MemoryPersistence struct {
	mu    sync.Mutex
	items []Item
	saves int
}

// NewMemoryPersistence 可选地预置已保存的条目
func NewMemoryPersistence(items ...Item) *MemoryPersistence {
	return &MemoryPersistence{items: items}
}

func (m *MemoryPersistence) Load() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MemoryPersistence) Save(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make([]Item, len(items))
	copy(m.items, items)
	m.saves++
	return nil
}

// Saves 保存次数
func (m *MemoryPersistence) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
