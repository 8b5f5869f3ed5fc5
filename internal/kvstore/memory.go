// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package kvstore

import (
	"sort"
	"sync"
)

// DefaultMemoryQuota mirrors the per-origin budget browsers give local storage.
const DefaultMemoryQuota = 5 << 20

// MemoryStore keeps entries in a map with an optional byte quota.
// The size of an entry is len(key)+len(value).
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
	used    int64
	quota   int64
}

// NewMemoryStore creates a store capped at quota bytes (0 = unlimited).
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
		quota:   quota,
	}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + int64(len(key)+len(value))
	if old, ok := m.entries[key]; ok {
		used -= int64(len(key) + len(old))
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	m.entries[key] = value
	m.used = used
	return nil
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.entries[key]; ok {
		m.used -= int64(len(key) + len(old))
		delete(m.entries, key)
	}
}

// Keys returns the keys in lexical order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Used returns the bytes currently accounted against the quota.
func (m *MemoryStore) Used() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

func (m *MemoryStore) Close() error { return nil }
