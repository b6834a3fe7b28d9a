package cache

import (
	"sync"
)

// MemoryBackend is an in-memory cache backend for tests and --cache-backend memory.
type MemoryBackend struct {
	entries map[Key]*CacheEntry
	mu      sync.RWMutex
}

// NewMemoryBackend creates a new in-memory cache backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[Key]*CacheEntry),
	}
}

// Path returns a dummy path for the given key.
func (b *MemoryBackend) Path(key Key) string {
	return "memory://" + key.String()
}

// Read returns the cached entry for key or nil if absent.
func (b *MemoryBackend) Read(key Key) (*CacheEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if entry, ok := b.entries[key]; ok {
		// Return a copy to prevent mutation
		return entry.clone(), nil
	}
	return nil, nil
}

// Write persists the entry.
func (b *MemoryBackend) Write(entry *CacheEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := entry.clone()
	stored.Country = entry.Key().Country
	b.entries[stored.Key()] = stored
	return nil
}

// Keys lists every stored key.
func (b *MemoryBackend) Keys() ([]Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]Key, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys, nil
}

// Clear removes all entries.
func (b *MemoryBackend) Clear() error {
	b.Reset()
	return nil
}

// Reset clears all entries (for testing).
func (b *MemoryBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[Key]*CacheEntry)
}

// Seed adds entries directly (for testing).
func (b *MemoryBackend) Seed(entries ...*CacheEntry) {
	for _, entry := range entries {
		b.Write(entry)
	}
}
