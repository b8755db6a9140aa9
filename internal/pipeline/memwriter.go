package pipeline

import (
	"slices"
	"sync"
)

// MemoryWriter implements Writer for testing without filesystem I/O. A
// non-nil Err fails every write.
type MemoryWriter struct {
	mu    sync.RWMutex
	Files map[string][]byte
	Err   error
}

// WriteFile stores a copy of data in memory.
func (m *MemoryWriter) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[path] = slices.Clone(data)
	return nil
}

// GetFile retrieves a file's content.
func (m *MemoryWriter) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.Files[path]
	return data, ok
}

// Paths returns the written paths in sorted order.
func (m *MemoryWriter) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Clear removes all files.
func (m *MemoryWriter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Files = make(map[string][]byte)
}

var _ Writer = (*MemoryWriter)(nil)
