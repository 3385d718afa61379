// Package statestore хранит клиентское состояние BFF: записи льготного
// периода и незавершённой регистрации, токены backend.
//
// Бизнес-логика работает только через узкий интерфейс Store, поэтому
// в тестах Redis заменяется на MemoryStore.
package statestore

import (
	"context"
	"errors"
	"time"
)

// ErrCorrupted возвращается, если значение по ключу не удалось разобрать.
var ErrCorrupted = errors.New("corrupted value")

// Store — хранилище JSON-значений по ключу.
type Store interface {
	// Get читает значение в result. Возвращает false, если ключа нет.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set записывает значение. Нулевой expiration — без срока.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет ключ. Отсутствие ключа ошибкой не считается.
	Invalidate(ctx context.Context, key string) error
}

// Namespace ограничивает Store ключами с общим префиксом и
// подставляет срок жизни по умолчанию.
type Namespace struct {
	store  Store
	prefix string
	ttl    time.Duration
}

// NewNamespace создаёт пространство ключей prefix поверх store.
func NewNamespace(store Store, prefix string, ttl time.Duration) *Namespace {
	return &Namespace{store: store, prefix: prefix, ttl: ttl}
}

// SessionNamespace — ключи, живущие не дольше сессии браузера.
func SessionNamespace(store Store, sessionID string, ttl time.Duration) *Namespace {
	return NewNamespace(store, "session:"+sessionID+":", ttl)
}

// DeviceNamespace — долговременные ключи устройства.
func DeviceNamespace(store Store, deviceID string) *Namespace {
	return NewNamespace(store, "device:"+deviceID+":", 0)
}

func (n *Namespace) Get(ctx context.Context, key string, result any) (bool, error) {
	return n.store.Get(ctx, n.prefix+key, result)
}

func (n *Namespace) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if expiration == 0 {
		expiration = n.ttl
	}
	return n.store.Set(ctx, n.prefix+key, value, expiration)
}

func (n *Namespace) Invalidate(ctx context.Context, key string) error {
	return n.store.Invalidate(ctx, n.prefix+key)
}

// Key возвращает полный ключ в нижележащем хранилище.
func (n *Namespace) Key(key string) string {
	return n.prefix + key
}
