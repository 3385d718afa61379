package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore — хранилище в памяти процесса с той же семантикой, что у RedisStore:
// значения сериализуются в JSON, просроченные ключи не видны.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memEntry
	now   func() time.Time
}

// NewMemory создаёт пустое хранилище. now может быть nil.
func NewMemory(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{items: make(map[string]memEntry), now: now}
}

func (m *MemoryStore) Get(_ context.Context, key string, result any) (bool, error) {
	const op = "statestore.MemoryStore.Get"
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, result); err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrCorrupted, err)
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	const op = "statestore.MemoryStore.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.SetRaw(key, data, expiration)
	return nil
}

// SetRaw записывает байты без сериализации.
func (m *MemoryStore) SetRaw(key string, data []byte, expiration time.Duration) {
	e := memEntry{data: data}
	if expiration > 0 {
		e.expiresAt = m.now().Add(expiration)
	}
	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
}

func (m *MemoryStore) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Has сообщает, лежит ли ключ в хранилище, без учёта срока и формата.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// Ping всегда успешен.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
