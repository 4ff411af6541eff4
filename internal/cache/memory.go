package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultMemoryCacheSize = 10000

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// MemoryCache is the in-process level. Values are stored JSON encoded so
// callers never share memory with the cache.
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]memoryItem
	maxItems int
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithSize(defaultMemoryCacheSize)
}

func NewMemoryCacheWithSize(maxItems int) *MemoryCache {
	if maxItems <= 0 {
		maxItems = defaultMemoryCacheSize
	}
	return &MemoryCache{
		items:    make(map[string]memoryItem),
		maxItems: maxItems,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if item.expired(time.Now()) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(item.data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

// Set stores value for ttl. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	item := memoryItem{data: data}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxItems {
		m.evictLocked()
	}
	m.items[key] = item
	return nil
}

// evictLocked drops expired items, or the item closest to expiry when
// nothing has expired yet.
func (m *MemoryCache) evictLocked() {
	now := time.Now()
	victim := ""
	var soonest time.Time
	for k, item := range m.items {
		if item.expired(now) {
			delete(m.items, k)
			continue
		}
		if victim == "" || expiresBefore(item.expiresAt, soonest) {
			victim = k
			soonest = item.expiresAt
		}
	}
	if len(m.items) >= m.maxItems && victim != "" {
		delete(m.items, victim)
	}
}

// expiresBefore orders expiry times with the zero value (never) last.
func expiresBefore(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryCache) Health(context.Context) error {
	return nil
}

func (m *MemoryCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"items":     m.Len(),
		"max_items": m.maxItems,
	}
}

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	m.items = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}
