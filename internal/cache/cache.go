// Package cache provides a small TTL cache for raw upstream responses,
// keyed by (source, normalized query). Values are the serialized
// response trees; the lookup layer owns encoding and decoding.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	// Get returns the value for key, or false when the key is absent
	// or its entry has expired. Expired entries are evicted lazily.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for ttl, overwriting any existing
	// entry unconditionally.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds the cache key for a source and an already-normalized
// query.
func Key(sourceKey, query string) string {
	return sourceKey + ":" + query
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache bounded to a fixed number of entries.
// A single mutex guards the map; contention is irrelevant at bot
// scale. When full, the entry closest to expiry is evicted to make
// room.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

const defaultMaxEntries = 512

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

// evictLocked removes expired entries, or failing that the entry
// closest to expiry.
func (m *Memory) evictLocked() {
	now := m.now()
	removed := false
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			removed = true
		}
	}
	if removed {
		return
	}
	var victim string
	var soonest time.Time
	for k, e := range m.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = k
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(m.entries, victim)
	}
}

// Len reports the number of live entries, counting entries that have
// expired but not yet been evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
