package keystore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ZaguanLabs/tlrouter"
)

// Memory is a thread-safe in-process key store.
type Memory struct {
	keys map[tlrouter.ProviderID]string
	mu   sync.RWMutex
}

// NewMemory creates a memory store seeded with keys.
func NewMemory(keys map[tlrouter.ProviderID]string) *Memory {
	m := &Memory{keys: make(map[tlrouter.ProviderID]string, len(keys))}
	for id, key := range keys {
		m.Set(id, key)
	}
	return m
}

// APIKey implements tlrouter.KeyStore.
func (m *Memory) APIKey(_ context.Context, provider tlrouter.ProviderID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[provider], nil
}

// Set stores the key for provider. An empty key removes it.
func (m *Memory) Set(provider tlrouter.ProviderID, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key = strings.TrimSpace(key)
	if key == "" {
		delete(m.keys, provider)
		return
	}
	m.keys[provider] = key
}

// Delete removes the key for provider.
func (m *Memory) Delete(provider tlrouter.ProviderID) {
	m.Set(provider, "")
}

// Len returns the number of configured providers.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Providers returns the configured providers, sorted.
func (m *Memory) Providers() []tlrouter.ProviderID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]tlrouter.ProviderID, 0, len(m.keys))
	for id := range m.keys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
