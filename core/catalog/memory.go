package catalog

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory catalog with upsert-by-key semantics. It backs
// tests and the offline CLI path; production deployments use the
// postgres-backed catalog in the db package.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]Entry
}

// NewMemory creates an empty in-memory catalog
func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]Entry)}
}

// Lookup implements Catalog
func (m *Memory) Lookup(ctx context.Context, key Key) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Upsert implements Writer
func (m *Memory) Upsert(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now()
	}
	m.entries[entry.Key] = entry
	return nil
}

// Len returns the number of entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// PricesByRegion returns all entries for a region
func (m *Memory) PricesByRegion(ctx context.Context, region string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []Entry
	for key, entry := range m.entries {
		if key.Region == region {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
